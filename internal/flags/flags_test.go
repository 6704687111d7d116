package flags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winnow/internal/errors"
)

func writeFlags(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flags.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	for i, slot := range d {
		assert.Empty(t, slot.Name)
		assert.Equal(t, DefaultColors[i], slot.Color)
	}
	assert.Empty(t, d.Names())
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		assert.Equal(t, Defaults(), Load(filepath.Join(t.TempDir(), "none.yaml")))
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := writeFlags(t, "slots: [ {name: ")
		assert.Equal(t, Defaults(), Load(path))
	})

	t.Run("pads short and drops extra slots", func(t *testing.T) {
		path := writeFlags(t, `
version: 2
slots:
  - name: keepers
    color: "#000000"
  - name: family
`)
		s := Load(path)
		assert.Equal(t, "keepers", s[0].Name)
		assert.Equal(t, "#000000", s[0].Color)
		assert.Equal(t, "family", s[1].Name)
		assert.Equal(t, DefaultColors[1], s[1].Color, "empty color takes the default")
		assert.Empty(t, s[2].Name)
		assert.Equal(t, DefaultColors[3], s[3].Color)

		path = writeFlags(t, `
version: 2
slots: [{name: a}, {name: b}, {name: c}, {name: d}, {name: e}]
`)
		s = Load(path)
		assert.Equal(t, []string{"a", "b", "c", "d"}, s.Names())
	})

	t.Run("legacy names migrate to empty", func(t *testing.T) {
		path := writeFlags(t, `
version: 1
slots:
  - name: Flag 1
  - name: Flag 2
  - name: birds
  - name: Flag 4
`)
		s := Load(path)
		assert.Equal(t, []string{"birds"}, s.Names())
	})

	t.Run("current schema keeps Flag names", func(t *testing.T) {
		path := writeFlags(t, `
version: 2
slots:
  - name: Flag 1
`)
		assert.Equal(t, "Flag 1", Load(path)[0].Name)
	})

	t.Run("invalid stored name is ignored", func(t *testing.T) {
		path := writeFlags(t, `
version: 2
slots:
  - name: a/b
`)
		assert.Empty(t, Load(path)[0].Name)
	})
}

func TestRename(t *testing.T) {
	t.Run("sets and clears", func(t *testing.T) {
		s, err := Rename(Defaults(), 2, "  birds ")
		require.NoError(t, err)
		assert.Equal(t, "birds", s[2].Name)

		s, err = Rename(s, 2, "")
		require.NoError(t, err)
		assert.Empty(t, s[2].Name)
	})

	t.Run("slot out of range", func(t *testing.T) {
		for _, i := range []int{-1, 4} {
			_, err := Rename(Defaults(), i, "x")
			require.Error(t, err)
			assert.Equal(t, errors.InvalidSlot, errors.KindOf(err))
			assert.True(t, errors.IsConfigurationError(err))
		}
	})

	t.Run("rejects path-like names", func(t *testing.T) {
		for _, name := range []string{"a/b", ".", "..", `a\b`} {
			_, err := Rename(Defaults(), 0, name)
			require.Error(t, err, name)
			assert.True(t, errors.IsInvalidConfig(err))
		}
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		s, err := Rename(Defaults(), 0, "birds")
		require.NoError(t, err)
		_, err = Rename(s, 1, "birds")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already used")

		// renaming a slot to its own name is fine
		_, err = Rename(s, 0, "birds")
		assert.NoError(t, err)
	})

	t.Run("rejects reserved names", func(t *testing.T) {
		reserved := []string{"_rejected", ".winnow_viewed", ".winnow.lock"}
		for _, name := range reserved {
			_, err := Rename(Defaults(), 0, name, reserved...)
			require.Error(t, err, name)
			assert.True(t, errors.IsInvalidConfig(err))
			assert.Contains(t, err.Error(), "reserved")
		}

		_, err := Rename(Defaults(), 0, "rejected", reserved...)
		assert.NoError(t, err)
	})

	t.Run("does not modify the input", func(t *testing.T) {
		orig := Defaults()
		_, err := Rename(orig, 0, "birds")
		require.NoError(t, err)
		assert.Empty(t, orig[0].Name)
	})
}

func TestStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "flags.yaml")
	store := NewStore(path)
	assert.Equal(t, Defaults(), store.Load())

	s, err := store.Rename(1, "family")
	require.NoError(t, err)
	assert.Equal(t, "family", s[1].Name)

	reloaded := NewStore(path).Load()
	assert.Equal(t, s, reloaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 2")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")

	_, err = store.Rename(1, "a/b")
	require.Error(t, err)
	assert.Equal(t, "family", store.Load()[1].Name, "failed rename is not saved")
}
