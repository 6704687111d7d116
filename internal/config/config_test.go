package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"winnow/internal/config"
	"winnow/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary YAML config file
func createTestYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const (
	validYAML = `
reject_dir: trash
viewed_log: .seen
ignore:
  - "*.part"
  - "Thumbs.db"
preload: false
log:
  level: debug
  json: true
`
	invalidSyntaxYAML = `
reject_dir: "unterminated
  preload: [
`
	invalidRejectYAML = `
reject_dir: "photos/rejected"
`
	duplicateNamesYAML = `
reject_dir: same
viewed_log: same
`
	invalidGlobYAML = `
ignore:
  - "[unclosed"
`
)

func TestLoad(t *testing.T) {
	t.Run("load valid config", func(t *testing.T) {
		s, err := config.Load(config.NewViper(), createTestYAML(t, validYAML))
		require.NoError(t, err)

		assert.Equal(t, "trash", s.RejectDir)
		assert.Equal(t, ".seen", s.ViewedLog)
		assert.Equal(t, ".winnow.lock", s.LockFile, "unset keys keep their defaults")
		assert.Equal(t, []string{"*.part", "Thumbs.db"}, s.Ignore)
		assert.False(t, s.Preload)
		assert.Equal(t, "debug", s.Log.Level)
		assert.True(t, s.Log.JSON)
	})

	t.Run("load non-existent file", func(t *testing.T) {
		s, err := config.Load(config.NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err, "a missing file yields defaults")

		defaults := config.Default()
		assert.Equal(t, defaults.RejectDir, s.RejectDir)
		assert.Equal(t, "_rejected", s.RejectDir)
		assert.Equal(t, ".winnow_viewed", s.ViewedLog)
		assert.True(t, s.Preload)
		assert.Equal(t, "info", s.Log.Level)
	})

	t.Run("invalid YAML syntax", func(t *testing.T) {
		_, err := config.Load(config.NewViper(), createTestYAML(t, invalidSyntaxYAML))
		require.Error(t, err)
		assert.True(t, errors.IsInvalidConfig(err))
		assert.Contains(t, err.Error(), "error parsing config file")
	})

	t.Run("reject dir with separator", func(t *testing.T) {
		_, err := config.Load(config.NewViper(), createTestYAML(t, invalidRejectYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reject_dir")
	})

	t.Run("artifact names must differ", func(t *testing.T) {
		_, err := config.Load(config.NewViper(), createTestYAML(t, duplicateNamesYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already used")
	})

	t.Run("bad ignore glob", func(t *testing.T) {
		_, err := config.Load(config.NewViper(), createTestYAML(t, invalidGlobYAML))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ignore")
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("WINNOW_REJECT_DIR", "_nope")
		t.Setenv("WINNOW_LOG_LEVEL", "warn")
		s, err := config.Load(config.NewViper(), createTestYAML(t, validYAML))
		require.NoError(t, err)
		assert.Equal(t, "_nope", s.RejectDir)
		assert.Equal(t, "warn", s.Log.Level)
	})

	t.Run("explicit override wins", func(t *testing.T) {
		v := config.NewViper()
		v.Set("dry_run", true)
		s, err := config.Load(v, createTestYAML(t, validYAML))
		require.NoError(t, err)
		assert.True(t, s.DryRun)
	})
}

func TestSaveSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s := config.Default()
	s.RejectDir = "_bin"
	s.Ignore = []string{"*.tmp"}
	require.NoError(t, config.SaveSettings(s, path))

	loaded, err := config.Load(config.NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, "_bin", loaded.RejectDir)
	assert.Equal(t, []string{"*.tmp"}, loaded.Ignore)
}

func TestReservedNames(t *testing.T) {
	s := config.Default()
	assert.ElementsMatch(t, []string{"_rejected", ".winnow_viewed", ".winnow.lock"}, s.ReservedNames())
}
