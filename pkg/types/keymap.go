package types

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the triage screen.
// It lives in pkg/types so the model and its views share one definition.
type KeyMap struct {
	// General
	Help key.Binding
	Quit key.Binding

	// Dispositions
	Keep   key.Binding
	Reject key.Binding
	Sort   key.Binding // 1-4, the pressed digit selects the slot

	// Queue
	Rescan key.Binding
	Reset  key.Binding

	// Confirmation prompts
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns winnow's default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Keep: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "keep"),
		),
		Reject: key.NewBinding(
			key.WithKeys("left", "h", "d"),
			key.WithHelp("←/h/d", "reject"),
		),
		Sort: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "flag"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Keep, k.Reject, k.Sort, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Keep, k.Reject, k.Sort},
		{k.Rescan, k.Reset},
		{k.Help, k.Quit},
	}
}

// SortSlot maps a pressed digit to its flag slot index
func SortSlot(pressed string) (int, bool) {
	if len(pressed) != 1 || pressed[0] < '1' || pressed[0] > '0'+FlagSlotCount {
		return 0, false
	}
	return int(pressed[0] - '1'), true
}
