package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "change channel closed unexpectedly")
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change")
		return Change{}
	}
}

func TestWatcherReportsExternalChanges(t *testing.T) {
	dir := t.TempDir()

	w, err := New(dir, []string{"_rejected", ".winnow_viewed"})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()
	assert.True(t, w.IsRunning())

	// Allow a brief moment for fsnotify to initialize watches
	time.Sleep(100 * time.Millisecond)

	// ignored and hidden names first, then one that counts
	require.NoError(t, os.Mkdir(filepath.Join(dir, "_rejected"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.jpg"), []byte("x"), 0644))

	c := waitChange(t, w.Changes())
	assert.Equal(t, "new.jpg", c.Name)
	assert.True(t, c.Op.Has(fsnotify.Create) || c.Op.Has(fsnotify.Write))
}

func TestWatcherSuppress(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.jpg"), []byte("x"), 0644))

	w, err := New(dir, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()
	time.Sleep(100 * time.Millisecond)

	w.Suppress("mine.jpg")
	require.NoError(t, os.Remove(filepath.Join(dir, "mine.jpg")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "theirs.jpg"), []byte("x"), 0644))

	c := waitChange(t, w.Changes())
	assert.Equal(t, "theirs.jpg", c.Name, "suppressed name produced no change")
}

func TestWatcherLifecycle(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)

	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	_, err = New(file, nil)
	assert.Error(t, err)

	w, err := New(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, dir, w.Dir())
	require.NoError(t, w.Start())
	assert.Error(t, w.Start(), "already running")

	w.Stop()
	w.Stop()
	assert.False(t, w.IsRunning())
	_, ok := <-w.Changes()
	assert.False(t, ok, "stop closes the channel")
	assert.Error(t, w.Start(), "stopped watchers cannot restart")

	unstarted, err := New(dir, nil)
	require.NoError(t, err)
	unstarted.Stop()
	_, ok = <-unstarted.Changes()
	assert.False(t, ok)
}
