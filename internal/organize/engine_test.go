package organize_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"winnow/internal/errors"
	"winnow/internal/flags"
	"winnow/internal/organize"
	"winnow/internal/queue"
	"winnow/internal/viewed"
	"winnow/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const logName = ".winnow_viewed"

type recordingCache struct {
	invalidated []int
}

func (c *recordingCache) Invalidate(index int) {
	c.invalidated = append(c.invalidated, index)
}

type failingRecorder struct {
	names []string
}

func (r *failingRecorder) MarkViewed(name string) error {
	r.names = append(r.names, name)
	return fmt.Errorf("disk full")
}

type fixture struct {
	dir    string
	queue  *queue.Queue
	log    *viewed.Log
	cache  *recordingCache
	engine *organize.Engine
}

func setup(t *testing.T, slots flags.Slots, files ...string) *fixture {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0644))
	}

	f := &fixture{
		dir:   dir,
		queue: queue.New(nil),
		log:   viewed.Load(dir, logName),
		cache: &recordingCache{},
	}
	_, err := f.queue.Rebuild(dir, f.log.Set(), queue.NewSet("_rejected", logName))
	require.NoError(t, err)

	f.engine = organize.New(organize.Options{BaseDir: dir, RejectDir: "_rejected", Slots: slots}, f.log, f.cache)
	return f
}

func namedSlots(names ...string) flags.Slots {
	s := flags.Defaults()
	for i, n := range names {
		s[i].Name = n
	}
	return s
}

func TestEndToEnd(t *testing.T) {
	f := setup(t, flags.Defaults(), "b.png", "a.txt")
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "_rejected"), 0755))
	_, err := f.queue.Rebuild(f.dir, f.log.Set(), queue.NewSet("_rejected", logName))
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.png"}, f.queue.Names())
	assert.Equal(t, 0, f.queue.Cursor())

	res, err := f.engine.Dispose(f.queue, types.Keep())
	require.NoError(t, err)
	assert.NoError(t, res.Warning)
	assert.Equal(t, 1, f.queue.Cursor())
	assert.Equal(t, 2, f.queue.Len())

	res, err = f.engine.Dispose(f.queue, types.Reject())
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.Equal(t, filepath.Join(f.dir, "_rejected", "b.png"), res.DestinationPath)
	assert.FileExists(t, filepath.Join(f.dir, "_rejected", "b.png"))
	assert.NoFileExists(t, filepath.Join(f.dir, "b.png"))

	assert.Equal(t, []string{"a.txt"}, f.queue.Names())
	assert.Equal(t, 1, f.queue.Cursor())
	assert.True(t, f.queue.Exhausted())

	assert.Equal(t, []string{"a.txt", "b.png"}, viewed.Load(f.dir, logName).Names())
}

func TestKeep(t *testing.T) {
	f := setup(t, flags.Defaults(), "a.txt", "b.txt")

	res, err := f.engine.Dispose(f.queue, types.Keep())
	require.NoError(t, err)

	assert.False(t, res.Moved)
	assert.Equal(t, 0, res.Index)
	assert.Equal(t, "a.txt", res.Entry.Name)
	assert.FileExists(t, filepath.Join(f.dir, "a.txt"))
	assert.True(t, f.log.Has("a.txt"))
	assert.Equal(t, 1, f.queue.Cursor())
	assert.Equal(t, []int{0}, f.cache.invalidated)
}

func TestRejectAndSort(t *testing.T) {
	t.Run("reject creates the bucket lazily", func(t *testing.T) {
		f := setup(t, flags.Defaults(), "a.txt", "b.txt")
		_, err := os.Stat(filepath.Join(f.dir, "_rejected"))
		require.True(t, os.IsNotExist(err))

		_, err = f.engine.Dispose(f.queue, types.Reject())
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(f.dir, "_rejected", "a.txt"))
		assert.Equal(t, []string{"b.txt"}, f.queue.Names())
		assert.Equal(t, 0, f.queue.Cursor())
		assert.Equal(t, []int{0, 1}, f.cache.invalidated, "cursor and cursor+1 are invalidated")
	})

	t.Run("sort into a named slot", func(t *testing.T) {
		f := setup(t, namedSlots("", "birds"), "a.jpg")

		res, err := f.engine.Dispose(f.queue, types.SortTo(1))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(f.dir, "birds", "a.jpg"), res.DestinationPath)
		assert.FileExists(t, res.DestinationPath)
		assert.True(t, f.log.Has("a.jpg"))
		assert.True(t, f.queue.Exhausted())
	})

	t.Run("sort moves directories", func(t *testing.T) {
		f := setup(t, namedSlots("albums"))
		require.NoError(t, os.MkdirAll(filepath.Join(f.dir, "trip", "day1"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(f.dir, "trip", "day1", "x.jpg"), []byte("x"), 0644))
		_, err := f.queue.Rebuild(f.dir, nil, queue.NewSet("albums"))
		require.NoError(t, err)

		_, err = f.engine.Dispose(f.queue, types.SortTo(0))
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(f.dir, "albums", "trip", "day1", "x.jpg"))
		assert.NoDirExists(t, filepath.Join(f.dir, "trip"))
	})

	t.Run("unnamed slot is refused before any I/O", func(t *testing.T) {
		f := setup(t, flags.Defaults(), "a.txt")

		_, err := f.engine.Dispose(f.queue, types.SortTo(2))
		require.Error(t, err)
		assert.True(t, errors.IsSlotUnnamed(err))
		assert.True(t, errors.IsConfigurationError(err))

		assert.Equal(t, []string{"a.txt"}, f.queue.Names())
		assert.False(t, f.log.Has("a.txt"))
		assert.Empty(t, f.cache.invalidated)
		entries, err := os.ReadDir(f.dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no bucket was created")
	})

	t.Run("slot out of range", func(t *testing.T) {
		f := setup(t, flags.Defaults(), "a.txt")
		_, err := f.engine.Dispose(f.queue, types.SortTo(7))
		require.Error(t, err)
		assert.Equal(t, errors.InvalidSlot, errors.KindOf(err))
	})

	t.Run("slot rename takes effect", func(t *testing.T) {
		f := setup(t, flags.Defaults(), "a.txt")
		f.engine.SetSlots(namedSlots("late"))
		res, err := f.engine.Dispose(f.queue, types.SortTo(0))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(f.dir, "late", "a.txt"), res.DestinationPath)
	})
}

func TestCollision(t *testing.T) {
	f := setup(t, flags.Defaults(), "IMG_0001.jpg")
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "_rejected"), 0755))
	occupied := filepath.Join(f.dir, "_rejected", "IMG_0001.jpg")
	require.NoError(t, os.WriteFile(occupied, []byte("older"), 0644))

	res, err := f.engine.Dispose(f.queue, types.Reject())
	require.NoError(t, err)

	assert.NotEqual(t, occupied, res.DestinationPath)
	assert.Regexp(t, `^IMG_0001_[0-9a-f]{6}\.jpg$`, filepath.Base(res.DestinationPath))

	older, err := os.ReadFile(occupied)
	require.NoError(t, err)
	assert.Equal(t, "older", string(older), "existing file is never clobbered")

	newer, err := os.ReadFile(res.DestinationPath)
	require.NoError(t, err)
	assert.Equal(t, "content of IMG_0001.jpg", string(newer))
}

func TestFailedMoveChangesNothing(t *testing.T) {
	f := setup(t, flags.Defaults(), "a.txt", "b.txt")
	require.NoError(t, os.Remove(filepath.Join(f.dir, "a.txt")))

	_, err := f.engine.Dispose(f.queue, types.Reject())
	require.Error(t, err)
	assert.True(t, errors.IsMoveError(err))

	var fe *errors.FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "a.txt", fe.Path())
	assert.NotEmpty(t, fe.Destination())

	assert.Equal(t, []string{"a.txt", "b.txt"}, f.queue.Names())
	assert.Equal(t, 0, f.queue.Cursor())
	assert.False(t, f.log.Has("a.txt"))
	assert.Empty(t, f.cache.invalidated)
}

func TestExhausted(t *testing.T) {
	f := setup(t, flags.Defaults())
	_, err := f.engine.Dispose(f.queue, types.Keep())
	require.Error(t, err)
	assert.True(t, errors.IsExhausted(err))
	assert.ErrorIs(t, err, errors.ErrExhausted)
}

func TestLogWriteFailureIsAWarning(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644))
	q := queue.New(nil)
	_, err := q.Rebuild(dir, nil, nil)
	require.NoError(t, err)

	rec := &failingRecorder{}
	engine := organize.New(organize.Options{BaseDir: dir, RejectDir: "_rejected", Slots: flags.Defaults()}, rec, nil)

	res, err := engine.Dispose(q, types.Reject())
	require.NoError(t, err)
	assert.True(t, res.Moved)
	require.Error(t, res.Warning)
	assert.Equal(t, []string{"a.txt"}, rec.names)
	assert.True(t, q.Exhausted())
}

func TestDryRun(t *testing.T) {
	f := setup(t, flags.Defaults(), "a.txt")
	f.engine.SetDryRun(true)
	assert.True(t, f.engine.IsDryRun())

	res, err := f.engine.Dispose(f.queue, types.Reject())
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Equal(t, filepath.Join(f.dir, "_rejected", "a.txt"), res.DestinationPath)

	assert.FileExists(t, filepath.Join(f.dir, "a.txt"))
	assert.NoDirExists(t, filepath.Join(f.dir, "_rejected"))
	assert.Equal(t, []string{"a.txt"}, f.queue.Names())
	assert.False(t, f.log.Has("a.txt"))

	t.Run("keep records nothing", func(t *testing.T) {
		res, err := f.engine.Dispose(f.queue, types.Keep())
		require.NoError(t, err)
		assert.Equal(t, "a.txt", res.Entry.Name)
		assert.False(t, f.log.Has("a.txt"))
		assert.NoFileExists(t, filepath.Join(f.dir, logName))
		assert.Equal(t, 0, f.queue.Cursor())
		assert.Empty(t, f.cache.invalidated)
	})
}
