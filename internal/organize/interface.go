package organize

import (
	"winnow/internal/flags"
	"winnow/internal/queue"
	"winnow/pkg/types"
)

// ViewedRecorder durably records that an entry was decided. The engine
// passes only the name; whether the entry was kept or moved is not recorded.
type ViewedRecorder interface {
	MarkViewed(name string) error
}

// CacheInvalidator drops preloaded content for a queue index.
type CacheInvalidator interface {
	Invalidate(index int)
}

// Disposer defines the disposition operations the session relies on.
// This allows for dependency injection in tests.
type Disposer interface {
	// Dispose applies action to the current entry of nav
	Dispose(nav queue.Navigator, action types.Action) (types.DispositionResult, error)

	// DestinationDir resolves the bucket directory for a moving action
	DestinationDir(action types.Action) (string, error)

	// SetSlots replaces the flag slots used for sort destinations
	SetSlots(slots flags.Slots)

	// SetDryRun sets whether moves should be performed or just reported
	SetDryRun(dryRun bool)
}

// Ensure Engine implements the Disposer interface
var _ Disposer = (*Engine)(nil)
