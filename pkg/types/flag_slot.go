package types

// FlagSlotCount is the fixed number of flag slots.
const FlagSlotCount = 4

// FlagSlot is a user-nameable sort destination. A non-empty Name doubles as
// the destination folder name; an empty Name makes the slot inert.
type FlagSlot struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"` // opaque display string, e.g. "#e74c3c"
}

// Named reports whether the slot can receive entries
func (s FlagSlot) Named() bool {
	return s.Name != ""
}
