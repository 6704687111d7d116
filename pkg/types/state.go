package types

// State is the snapshot the engine hands to the presentation layer after
// every change, so it can render without touching the filesystem.
type State struct {
	Dir     string `json:"dir"`
	Len     int    `json:"len"`
	Cursor  int    `json:"cursor"`
	Current *Entry `json:"current,omitempty"`
	Viewed  int    `json:"viewed"`

	// Exhausted is the terminal condition cursor == Len.
	Exhausted bool `json:"exhausted"`
	// PreviouslyCompleted is set when the directory holds candidates but
	// every one of them was decided in an earlier session.
	PreviouslyCompleted bool `json:"previously_completed"`
	// Empty is set when the directory has no candidates at all.
	Empty bool `json:"empty"`
}

// Remaining returns how many entries are still ahead of the cursor,
// including the current one.
func (s State) Remaining() int {
	if s.Cursor >= s.Len {
		return 0
	}
	return s.Len - s.Cursor
}
