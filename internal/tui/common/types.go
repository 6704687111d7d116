package common

import (
	"winnow/internal/flags"
	"winnow/internal/preload"
	"winnow/pkg/types"
)

// Mode is the input mode of the triage screen
type Mode int

const (
	// Triage is the default mode: every key is a decision
	Triage Mode = iota
	// ConfirmReset waits for y/n before forgetting every decision
	ConfirmReset
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	State() types.State
	Slots() flags.Slots
	Content() *preload.Content
	Mode() Mode
	Busy() bool
	Stale() bool
	ShowHelp() bool
	StatusView() string
	HelpView() string
	Width() int
}
