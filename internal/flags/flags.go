// Package flags persists the four user-nameable flag slots. The slot file is
// shared by every directory winnow is pointed at.
package flags

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"winnow/internal/errors"
	"winnow/internal/log"
	"winnow/pkg/types"
)

// schemaVersion is written on every save. Version 1 files carried the
// placeholder names "Flag 1".."Flag 4" for unnamed slots.
const schemaVersion = 2

// DefaultColors are the preset slot colors in slot order.
var DefaultColors = [types.FlagSlotCount]string{"#e74c3c", "#f1c40f", "#2ecc71", "#3498db"}

// Slots is the ordered, fixed-size set of flag slots.
type Slots [types.FlagSlotCount]types.FlagSlot

type document struct {
	Version int              `yaml:"version"`
	Slots   []types.FlagSlot `yaml:"slots"`
}

// Defaults returns four unnamed slots with the preset colors.
func Defaults() Slots {
	var s Slots
	for i := range s {
		s[i] = types.FlagSlot{Color: DefaultColors[i]}
	}
	return s
}

// Names returns the non-empty slot names.
func (s Slots) Names() []string {
	var names []string
	for _, slot := range s {
		if slot.Named() {
			names = append(names, slot.Name)
		}
	}
	return names
}

// Slot returns slot i or an InvalidSlot error.
func (s Slots) Slot(i int) (types.FlagSlot, error) {
	if i < 0 || i >= len(s) {
		return types.FlagSlot{}, errors.NewConfigError("invalid flag slot", fmt.Sprintf("slot %d", i+1), errors.InvalidSlot, nil)
	}
	return s[i], nil
}

// Load reads the slot file at path. A missing or corrupt file yields
// Defaults; short files are padded and long ones truncated.
func Load(path string) Slots {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.LogWithError(err).Warn("Could not read flag slots, using defaults")
		}
		return Defaults()
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		log.LogWithFields(log.F("path", path), log.F("error", err.Error())).
			Warn("Flag slot file is corrupt, using defaults")
		return Defaults()
	}

	slots := Defaults()
	for i := 0; i < len(doc.Slots) && i < types.FlagSlotCount; i++ {
		stored := doc.Slots[i]
		name := strings.TrimSpace(stored.Name)
		if doc.Version < schemaVersion && isLegacyName(name) {
			name = ""
		}
		if name != "" && !types.ValidName(name) {
			log.LogWithFields(log.F("slot", i+1), log.F("name", name)).Warn("Ignoring invalid flag slot name")
			name = ""
		}
		slots[i].Name = name
		if stored.Color != "" {
			slots[i].Color = stored.Color
		}
	}
	return slots
}

// isLegacyName matches the placeholder names older versions stored for
// slots the user never named.
func isLegacyName(name string) bool {
	for i := 1; i <= types.FlagSlotCount; i++ {
		if name == fmt.Sprintf("Flag %d", i) {
			return true
		}
	}
	return false
}

// Rename returns a copy of slots with slot index renamed. An empty name
// clears the slot. Names listed in reserved belong to winnow itself and are
// refused. Entries already filed under the old name stay where they are.
func Rename(slots Slots, index int, name string, reserved ...string) (Slots, error) {
	if _, err := slots.Slot(index); err != nil {
		return slots, err
	}
	param := fmt.Sprintf("slot %d", index+1)

	name = strings.TrimSpace(name)
	if name != "" {
		if !types.ValidName(name) {
			return slots, errors.NewConfigError("invalid flag name", param, errors.InvalidConfig,
				fmt.Errorf("%q cannot be used as a folder name", name))
		}
		for _, r := range reserved {
			if r == name {
				return slots, errors.NewConfigError("invalid flag name", param, errors.InvalidConfig,
					fmt.Errorf("%q is reserved by winnow", name))
			}
		}
		for i, other := range slots {
			if i != index && other.Name == name {
				return slots, errors.NewConfigError("invalid flag name", param, errors.InvalidConfig,
					fmt.Errorf("%q is already used by slot %d", name, i+1))
			}
		}
	}

	slots[index].Name = name
	return slots, nil
}

// Save writes slots to path through a temporary file and a rename so a
// reader never sees a half-written file.
func Save(path string, slots Slots) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewFileError("cannot create flag slot directory", path, errors.FileAccessDenied, err)
	}

	data, err := yaml.Marshal(document{Version: schemaVersion, Slots: slots[:]})
	if err != nil {
		return errors.Wrap(err, "failed to marshal flag slots")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".flags-*.yaml")
	if err != nil {
		return errors.NewFileError("cannot write flag slots", path, errors.FileAccessDenied, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewFileError("cannot write flag slots", path, errors.FileAccessDenied, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewFileError("cannot write flag slots", path, errors.FileAccessDenied, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.NewFileError("cannot write flag slots", path, errors.FileAccessDenied, err)
	}
	return nil
}

// Store binds the slot operations to one file.
type Store struct {
	path string
}

// NewStore creates a store for the slot file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the slot file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the current slots, falling back to defaults.
func (s *Store) Load() Slots {
	return Load(s.path)
}

// Rename loads, renames and saves in one step. The saved slots are returned.
func (s *Store) Rename(index int, name string, reserved ...string) (Slots, error) {
	slots, err := Rename(s.Load(), index, name, reserved...)
	if err != nil {
		return slots, err
	}
	if err := Save(s.path, slots); err != nil {
		return slots, err
	}
	log.LogWithFields(log.F("slot", index+1), log.F("name", slots[index].Name)).Info("Flag slot renamed")
	return slots, nil
}

// Save persists slots.
func (s *Store) Save(slots Slots) error {
	return Save(s.path, slots)
}
