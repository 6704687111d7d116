package types

import "fmt"

// ActionKind identifies a disposition
type ActionKind int

const (
	// ActionKeep leaves the entry in place and advances the cursor
	ActionKeep ActionKind = iota
	// ActionReject moves the entry into the reject bucket
	ActionReject
	// ActionSort moves the entry into a flag slot's folder
	ActionSort
)

// Action is a single triage decision applied to the current entry.
type Action struct {
	Kind ActionKind
	Slot int // flag slot index, only meaningful for ActionSort
}

// Keep returns the keep action
func Keep() Action { return Action{Kind: ActionKeep} }

// Reject returns the reject action
func Reject() Action { return Action{Kind: ActionReject} }

// SortTo returns the action that files the current entry under flag slot i.
func SortTo(slot int) Action { return Action{Kind: ActionSort, Slot: slot} }

// Moves reports whether the action relocates the entry on disk.
func (a Action) Moves() bool {
	return a.Kind == ActionReject || a.Kind == ActionSort
}

func (a Action) String() string {
	switch a.Kind {
	case ActionKeep:
		return "keep"
	case ActionReject:
		return "reject"
	case ActionSort:
		return fmt.Sprintf("sort:%d", a.Slot+1)
	default:
		return "unknown"
	}
}
