// Package watch reports changes made to a triage directory by anything other
// than winnow itself. It never changes the queue; it only tells the user
// that a rescan would see something new.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"winnow/internal/log"
)

// suppressWindow is how long a name announced through Suppress stays quiet.
const suppressWindow = 2 * time.Second

// Change is an external modification of a direct child of the directory
type Change struct {
	Name      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// Watcher monitors one directory using fsnotify
type Watcher struct {
	dir string

	// Channel to receive changes
	changes chan Change

	// Channel to signal stop, and closed by the loop once it has exited
	stopChan chan struct{}
	done     chan struct{}

	// fsnotify watcher instance
	fsWatcher *fsnotify.Watcher

	// Lock for running state, ignored names and suppressions
	mutex      sync.RWMutex
	running    bool
	ignored    map[string]struct{}
	suppressed map[string]time.Time
}

// New creates a watcher for dir. Hidden names and the names in ignore
// (buckets and winnow's own files) never produce changes.
func New(dir string, ignore []string) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	w := &Watcher{
		dir:        dir,
		changes:    make(chan Change, 10),
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
		fsWatcher:  fsWatcher,
		ignored:    make(map[string]struct{}),
		suppressed: make(map[string]time.Time),
	}
	w.SetIgnored(ignore)
	log.LogWithFields(log.F("directory", dir)).Debug("Watching directory")
	return w, nil
}

// SetIgnored replaces the set of names that never produce changes
func (w *Watcher) SetIgnored(names []string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.ignored = make(map[string]struct{}, len(names))
	for _, n := range names {
		w.ignored[n] = struct{}{}
	}
}

// Suppress silences events for name for a short while. Call it before
// winnow moves an entry so its own move is not reported.
func (w *Watcher) Suppress(name string) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.suppressed[name] = time.Now().Add(suppressWindow)
}

// Changes returns the channel that delivers changes
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins the event loop
func (w *Watcher) Start() error {
	w.mutex.Lock()
	if w.running {
		w.mutex.Unlock()
		return fmt.Errorf("watcher already running")
	}
	if w.stopChan == nil {
		w.mutex.Unlock()
		return fmt.Errorf("watcher was stopped")
	}
	w.running = true
	stop := w.stopChan
	w.mutex.Unlock()

	go w.loop(stop)
	return nil
}

func (w *Watcher) loop(stop <-chan struct{}) {
	defer close(w.done)
	defer close(w.changes)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			change, ok := w.filter(event)
			if !ok {
				continue
			}

			// Send event non-blockingly to avoid goroutine getting stuck if channel full
			select {
			case w.changes <- change:
			default:
				log.LogWithFields(log.F("name", change.Name)).Warn("Change channel is full, dropped event")
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-stop:
			return
		}
	}
}

func (w *Watcher) filter(event fsnotify.Event) (Change, bool) {
	// attribute-only changes do not affect the queue
	if event.Op == fsnotify.Chmod {
		return Change{}, false
	}

	name := filepath.Base(event.Name)
	if filepath.Dir(event.Name) != filepath.Clean(w.dir) || strings.HasPrefix(name, ".") {
		return Change{}, false
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if _, ok := w.ignored[name]; ok {
		return Change{}, false
	}
	if until, ok := w.suppressed[name]; ok {
		if time.Now().Before(until) {
			return Change{}, false
		}
		delete(w.suppressed, name)
	}

	return Change{Name: name, Op: event.Op, Timestamp: time.Now()}, true
}

// Stop halts the watcher and closes the change channel
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if w.stopChan == nil {
		w.mutex.Unlock()
		return
	}
	close(w.stopChan)
	w.stopChan = nil
	wasRunning := w.running
	w.running = false
	w.mutex.Unlock()

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	if wasRunning {
		<-w.done
	} else {
		close(w.changes)
	}
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Dir returns the watched directory
func (w *Watcher) Dir() string {
	return w.dir
}
