package messages

import (
	"winnow/internal/preload"
	"winnow/internal/watch"
	"winnow/pkg/types"
)

// DisposedMsg reports the outcome of a disposition run in the background
type DisposedMsg struct {
	Result types.DispositionResult
	Err    error
}

// RebuiltMsg reports a reset or rescan
type RebuiltMsg struct {
	State types.State
	Reset bool
	Err   error
}

// ContentMsg carries preloaded content for the entry it names
type ContentMsg struct {
	Content preload.Content
}

// ChangeMsg reports an external change to the directory
type ChangeMsg struct {
	Change watch.Change
}

// WatchClosedMsg is sent once the watcher's channel is closed
type WatchClosedMsg struct{}
