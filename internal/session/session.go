// Package session drives one triage pass over a directory: it owns the
// queue, serializes dispositions, holds the directory lock and tells
// subscribers about every state change.
package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"winnow/internal/config"
	"winnow/internal/errors"
	"winnow/internal/flags"
	"winnow/internal/log"
	"winnow/internal/media"
	"winnow/internal/organize"
	"winnow/internal/preload"
	"winnow/internal/queue"
	"winnow/internal/viewed"
	"winnow/pkg/types"
)

const defaultSubscriberBuffer = 16

// Options configures a Controller
type Options struct {
	Settings *config.Settings
	Flags    *flags.Store
	// Loader fetches preload content; nil selects the image loader.
	Loader preload.Loader
	// SubscriberBuffer is the capacity of each Subscribe channel.
	SubscriberBuffer int
}

// Controller is a triage session over one directory.
type Controller struct {
	settings *config.Settings
	store    *flags.Store
	loader   preload.Loader
	bufSize  int

	// opMu serializes mutating operations. Dispose, Reset, Rescan and
	// RenameFlag only ever try it so overlapping calls fail fast.
	opMu sync.Mutex
	// mu guards the fields below; readers take it without contending
	// with opMu.
	mu       sync.Mutex
	dir      string
	lock     *flock.Flock
	viewed   *viewed.Log
	slots    flags.Slots
	queue    *queue.Queue
	scanner  *queue.Scanner
	cache    *preload.Cache
	engine   *organize.Engine
	stats    queue.Stats
	empty    bool
	previous bool
	started  bool
	closed   bool

	subMu sync.Mutex
	subs  []chan types.State
}

// New creates a controller. Nothing touches the filesystem until Start.
func New(opts Options) *Controller {
	settings := opts.Settings
	if settings == nil {
		settings = config.Default()
	}
	store := opts.Flags
	if store == nil {
		store = flags.NewStore(settings.FlagsFile)
	}
	bufSize := opts.SubscriberBuffer
	if bufSize <= 0 {
		bufSize = defaultSubscriberBuffer
	}
	return &Controller{
		settings: settings,
		store:    store,
		loader:   opts.Loader,
		bufSize:  bufSize,
	}
}

// Start locks baseDir, loads its viewed log and the flag slots, and builds
// the queue. A directory that cannot be read or is locked by another
// session is an error and leaves nothing held.
func (c *Controller) Start(baseDir string) (types.State, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return types.State{}, errors.NewSessionError("session already started", errors.Unknown)
	}

	dir, err := filepath.Abs(baseDir)
	if err != nil {
		return types.State{}, errors.NewFileError("invalid directory", baseDir, errors.ScanFailed, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return types.State{}, errors.NewFileError("cannot read directory", dir, errors.ScanFailed, err)
	}
	if !info.IsDir() {
		return types.State{}, errors.NewFileError("not a directory", dir, errors.ScanFailed, nil)
	}

	scanner, err := queue.NewScanner(c.settings.Ignore)
	if err != nil {
		return types.State{}, err
	}

	lock := flock.New(filepath.Join(dir, c.settings.LockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return types.State{}, errors.NewFileError("cannot lock directory", dir, errors.FileAccessDenied, err)
	}
	if !locked {
		return types.State{}, errors.NewSessionError("directory is in use by another winnow session", errors.DirectoryLocked)
	}

	c.dir = dir
	c.lock = lock
	c.scanner = scanner
	c.viewed = viewed.Load(dir, c.settings.ViewedLog)
	c.slots = c.store.Load()
	c.queue = queue.New(scanner)
	c.cache = preload.New(dir, c.loader)
	c.engine = organize.New(organize.Options{
		BaseDir:   dir,
		RejectDir: c.settings.RejectDir,
		Slots:     c.slots,
		DryRun:    c.settings.DryRun,
	}, c.viewed, c.cache)

	if err := c.rebuild(); err != nil {
		c.cache.Close()
		if unlockErr := lock.Unlock(); unlockErr != nil {
			log.LogWithError(unlockErr).Warn("Failed to release directory lock")
		}
		c.lock = nil
		return types.State{}, err
	}
	c.started = true

	log.LogWithFields(
		log.F("dir", dir),
		log.F("pending", c.queue.Len()),
		log.F("viewed", c.viewed.Len()),
	).Info("Session started")

	state := c.snapshot()
	c.emit(state)
	c.prefetch(c.queue.Cursor())
	return state, nil
}

func (c *Controller) rebuild() error {
	stats, err := c.queue.Rebuild(c.dir, queue.Set(c.viewed.Set()), c.reservedSet())
	if err != nil {
		return err
	}
	c.stats = stats
	c.empty = stats.Candidates == 0
	c.previous = c.queue.Len() == 0 && stats.Candidates > 0 && c.viewed.Len() > 0
	return nil
}

func (c *Controller) reservedSet() queue.Set {
	return queue.NewSet(append(c.settings.ReservedNames(), c.slots.Names()...)...)
}

// Dispose applies action to the current entry. It fails with a Busy error
// when another disposition is still running.
func (c *Controller) Dispose(action types.Action) (types.DispositionResult, error) {
	if !c.opMu.TryLock() {
		return types.DispositionResult{}, errors.ErrBusy
	}
	defer c.opMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return types.DispositionResult{}, err
	}

	res, err := c.engine.Dispose(c.queue, action)
	if err != nil {
		log.LogWithError(err).Warnf("Disposition %s failed", action)
	}

	c.emit(c.snapshot())
	// after a Keep the new current entry is usually the one already
	// preloaded; Content requests the entry after it once that is taken
	c.prefetch(c.queue.Cursor())
	return res, err
}

// Reset forgets every decision and rebuilds the queue from scratch.
// Failing to remove the viewed log is logged, not returned.
func (c *Controller) Reset() (types.State, error) {
	if !c.opMu.TryLock() {
		return types.State{}, errors.ErrBusy
	}
	defer c.opMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return types.State{}, err
	}

	if err := c.viewed.Clear(); err != nil {
		log.LogWithError(err).Warn("Could not remove viewed log")
	}
	return c.rescan("Session reset")
}

// Rescan rebuilds the queue from the directory while keeping the viewed
// log, picking up entries added or removed behind winnow's back.
func (c *Controller) Rescan() (types.State, error) {
	if !c.opMu.TryLock() {
		return types.State{}, errors.ErrBusy
	}
	defer c.opMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return types.State{}, err
	}
	return c.rescan("Directory rescanned")
}

func (c *Controller) rescan(msg string) (types.State, error) {
	if err := c.rebuild(); err != nil {
		return c.snapshot(), err
	}
	c.cache.Clear()
	log.LogWithFields(log.F("dir", c.dir), log.F("pending", c.queue.Len())).Info(msg)

	state := c.snapshot()
	c.emit(state)
	c.prefetch(c.queue.Cursor())
	return state, nil
}

// RenameFlag renames flag slot index and persists it. The live queue is
// not rescanned; the new name is reserved from the next rebuild on.
func (c *Controller) RenameFlag(index int, name string) (flags.Slots, error) {
	if !c.opMu.TryLock() {
		return c.Slots(), errors.ErrBusy
	}
	defer c.opMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	slots, err := c.store.Rename(index, name, c.settings.ReservedNames()...)
	if err != nil {
		return c.slots, err
	}
	c.slots = slots
	if c.engine != nil {
		c.engine.SetSlots(slots)
	}
	return slots, nil
}

// Slots returns the flag slots in use
func (c *Controller) Slots() flags.Slots {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots
}

// DryRun reports whether dispositions only report what they would do
func (c *Controller) DryRun() bool {
	return c.settings.DryRun
}

// Dir returns the absolute base directory
func (c *Controller) Dir() string {
	return c.dir
}

// Reserved returns the names winnow owns inside the base directory
func (c *Controller) Reserved() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append(c.settings.ReservedNames(), c.slots.Names()...)
}

// State returns the current snapshot
func (c *Controller) State() types.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return types.State{}
	}
	return c.snapshot()
}

// Pending returns the entries still in the queue, in order
func (c *Controller) Pending() []types.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return nil
	}
	return c.queue.Entries()
}

// Stats returns the counts from the last rebuild
func (c *Controller) Stats() queue.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Content returns preloaded content for the current entry. When nothing was
// preloaded but the entry is worth it, the content is loaded on the spot.
// Either way the next entry is then requested.
func (c *Controller) Content() (preload.Content, bool) {
	c.mu.Lock()
	if !c.started || c.closed {
		c.mu.Unlock()
		return preload.Content{}, false
	}
	entry, ok := c.queue.Current()
	index := c.queue.Cursor()
	c.mu.Unlock()
	if !ok || !c.settings.Preload || entry.IsDir || !media.CacheWorthy(entry.Class) {
		return preload.Content{}, false
	}

	content, ok := c.cache.Take(index, entry.Name)
	if !ok {
		loader := c.loader
		if loader == nil {
			loader = preload.NewImageLoader(2048)
		}
		var err error
		content, err = loader.Load(filepath.Join(c.dir, entry.Name))
		if err != nil {
			log.LogWithError(err).Debug("Could not load current entry")
			return preload.Content{}, false
		}
		content.Name = entry.Name
	}

	c.mu.Lock()
	c.prefetch(index + 1)
	c.mu.Unlock()
	return content, true
}

// Subscribe returns a channel receiving every new state. A subscriber that
// falls behind misses states rather than stalling the session.
func (c *Controller) Subscribe() <-chan types.State {
	ch := make(chan types.State, c.bufSize)
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if c.closed {
		close(ch)
		return ch
	}
	c.subs = append(c.subs, ch)
	return ch
}

// Close stops preloading, releases the directory lock and closes every
// subscription. It is safe to call more than once.
func (c *Controller) Close() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if c.cache != nil {
		c.cache.Close()
	}

	var err error
	if c.lock != nil {
		if err = c.lock.Unlock(); err != nil {
			log.LogWithError(err).Warn("Failed to release directory lock")
		}
	}

	c.subMu.Lock()
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
	c.subMu.Unlock()

	if c.started {
		log.LogWithFields(log.F("dir", c.dir)).Info("Session closed")
	}
	return err
}

func (c *Controller) ready() error {
	if c.closed {
		return errors.NewSessionError("session is closed", errors.Unknown)
	}
	if !c.started {
		return errors.NewSessionError("session not started", errors.Unknown)
	}
	return nil
}

func (c *Controller) snapshot() types.State {
	s := types.State{
		Dir:                 c.dir,
		Len:                 c.queue.Len(),
		Cursor:              c.queue.Cursor(),
		Viewed:              c.viewed.Len(),
		Empty:               c.empty,
		PreviouslyCompleted: c.previous,
	}
	if entry, ok := c.queue.Current(); ok {
		s.Current = &entry
	} else {
		s.Exhausted = true
	}
	return s
}

func (c *Controller) emit(state types.State) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- state:
		default:
			log.LogWithFields(log.F("cursor", state.Cursor), log.F("len", state.Len)).
				Warn("Subscriber is not keeping up, dropping state")
		}
	}
}

func (c *Controller) prefetch(index int) {
	if !c.settings.Preload || c.closed {
		return
	}
	c.cache.Request(c.queue, index)
}
