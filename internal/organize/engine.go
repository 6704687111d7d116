package organize

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"winnow/internal/errors"
	"winnow/internal/flags"
	"winnow/internal/log"
	"winnow/internal/queue"
	"winnow/pkg/types"
)

// maxCollisionDraws bounds how many random suffixes are tried before a
// move is refused.
const maxCollisionDraws = 8

// Options configures an Engine
type Options struct {
	BaseDir   string
	RejectDir string
	Slots     flags.Slots
	DryRun    bool
}

// Engine applies dispositions to the entry under the cursor
type Engine struct {
	baseDir   string
	rejectDir string
	viewed    ViewedRecorder
	cache     CacheInvalidator
	dryRun    bool

	mu    sync.RWMutex // protects slots
	slots flags.Slots

	// seams for tests
	rename func(src, dst string) error
	remove func(path string) error
	suffix func() string
}

// New creates a disposition engine. A nil cache is allowed.
func New(opts Options, viewed ViewedRecorder, cache CacheInvalidator) *Engine {
	if cache == nil {
		cache = noCache{}
	}
	return &Engine{
		baseDir:   opts.BaseDir,
		rejectDir: opts.RejectDir,
		slots:     opts.Slots,
		dryRun:    opts.DryRun,
		viewed:    viewed,
		cache:     cache,
		rename:    os.Rename,
		remove:    os.RemoveAll,
		suffix:    randomSuffix,
	}
}

// SetSlots replaces the flag slots used to resolve sort destinations
func (e *Engine) SetSlots(slots flags.Slots) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slots = slots
}

// SetDryRun sets whether moves should be performed or just reported
func (e *Engine) SetDryRun(dryRun bool) {
	e.dryRun = dryRun
}

// IsDryRun returns whether the engine is in dry run mode
func (e *Engine) IsDryRun() bool {
	return e.dryRun
}

// DestinationDir resolves the bucket directory for a moving action.
// Unnamed or out-of-range slots are refused before any filesystem access.
func (e *Engine) DestinationDir(action types.Action) (string, error) {
	switch action.Kind {
	case types.ActionReject:
		return filepath.Join(e.baseDir, e.rejectDir), nil
	case types.ActionSort:
		e.mu.RLock()
		slot, err := e.slots.Slot(action.Slot)
		e.mu.RUnlock()
		if err != nil {
			return "", err
		}
		if !slot.Named() {
			return "", errors.NewConfigError("flag slot has no name", action.String(), errors.SlotUnnamed, nil)
		}
		return filepath.Join(e.baseDir, slot.Name), nil
	default:
		return "", errors.Newf("action %s does not move entries", action)
	}
}

// Dispose applies action to nav's current entry. On error nothing observable
// has changed. A failed viewed-log write does not fail the disposition; it
// is returned as the result's Warning.
func (e *Engine) Dispose(nav queue.Navigator, action types.Action) (types.DispositionResult, error) {
	entry, ok := nav.Current()
	if !ok {
		return types.DispositionResult{}, errors.ErrExhausted
	}
	index := nav.Cursor()

	result := types.DispositionResult{
		Entry:      entry,
		Action:     action,
		Index:      index,
		SourcePath: filepath.Join(e.baseDir, entry.Name),
	}

	if !action.Moves() {
		if e.dryRun {
			log.Infof("Would keep %s", entry.Name)
			return result, nil
		}
		result.Warning = e.markViewed(entry.Name)
		e.cache.Invalidate(index)
		nav.Advance()
		log.LogWithFields(log.F("entry", entry.Name), log.F("index", index)).Debug("Kept")
		return result, nil
	}

	destDir, err := e.DestinationDir(action)
	if err != nil {
		return result, err
	}

	if e.dryRun {
		dest, err := e.resolveCollision(destDir, entry.Name)
		if err != nil {
			return result, err
		}
		result.DestinationPath = dest
		log.Infof("Would move %s -> %s", entry.Name, dest)
		return result, nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return result, errors.NewMoveError(entry.Name, destDir, errors.MoveFailed, err)
	}

	dest, err := e.MoveFile(result.SourcePath, destDir)
	if err != nil {
		return result, err
	}
	result.DestinationPath = dest
	result.Moved = true

	result.Warning = e.markViewed(entry.Name)
	// the splice shifts every later index down by one
	e.cache.Invalidate(index)
	e.cache.Invalidate(index + 1)
	nav.RemoveCurrent()

	log.LogWithFields(log.F("entry", entry.Name), log.F("action", action.String()), log.F("dest", dest)).
		Info("Moved")
	return result, nil
}

func (e *Engine) markViewed(name string) error {
	if err := e.viewed.MarkViewed(name); err != nil {
		log.LogWithError(err).Warn("Could not record viewed entry")
		return err
	}
	return nil
}

// MoveFile moves src into destDir, renaming it if the name is taken, and
// returns the final path. destDir must exist.
func (e *Engine) MoveFile(src, destDir string) (string, error) {
	name := filepath.Base(src)

	if _, err := os.Lstat(src); err != nil {
		return "", errors.NewMoveError(name, destDir, errors.MoveFailed, err)
	}

	dest, err := e.resolveCollision(destDir, name)
	if err != nil {
		return "", err
	}

	log.Debugf("Moving %s to %s", src, dest)
	if err := e.move(src, dest); err != nil {
		return "", errors.NewMoveError(name, dest, errors.MoveFailed, err)
	}
	return dest, nil
}

// resolveCollision returns destDir/name, or a suffixed variant of it when
// something already occupies that path.
func (e *Engine) resolveCollision(destDir, name string) (string, error) {
	dest := filepath.Join(destDir, name)
	free, err := vacant(dest)
	if err != nil {
		return "", errors.NewMoveError(name, destDir, errors.MoveFailed, err)
	}
	if free {
		return dest, nil
	}

	log.Warnf("Destination %s already exists, choosing a new name", dest)
	return e.findUniqueDestName(destDir, name)
}

// findUniqueDestName inserts a short random suffix before the extension:
// IMG_0001.jpg becomes IMG_0001_3f9a1c.jpg.
func (e *Engine) findUniqueDestName(destDir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; i < maxCollisionDraws; i++ {
		candidate := filepath.Join(destDir, base+"_"+e.suffix()+ext)
		free, err := vacant(candidate)
		if err != nil {
			return "", errors.NewMoveError(name, destDir, errors.MoveFailed, err)
		}
		if free {
			log.Infof("Renaming destination to %s due to collision", filepath.Base(candidate))
			return candidate, nil
		}
	}

	return "", errors.NewMoveError(name, destDir, errors.CollisionExhausted, nil)
}

func vacant(path string) (bool, error) {
	_, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	return false, err
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

type noCache struct{}

func (noCache) Invalidate(int) {}
