package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"winnow/internal/errors"
	"winnow/pkg/types"
)

// Settings is winnow's application configuration. It controls where
// buckets and artifacts live and how the session behaves; flag slot names
// are persisted separately (see internal/flags).
type Settings struct {
	RejectDir string   `mapstructure:"reject_dir" yaml:"reject_dir"` // Reject bucket folder name
	ViewedLog string   `mapstructure:"viewed_log" yaml:"viewed_log"` // Viewed-log file name inside the base directory
	LockFile  string   `mapstructure:"lock_file" yaml:"lock_file"`   // Advisory lock file name inside the base directory
	FlagsFile string   `mapstructure:"flags_file" yaml:"flags_file"` // Flag slot file path
	Ignore    []string `mapstructure:"ignore" yaml:"ignore"`         // Glob patterns never offered for triage
	Preload   bool     `mapstructure:"preload" yaml:"preload"`       // Decode the next image ahead of time
	Watch     bool     `mapstructure:"watch" yaml:"watch"`           // Report external changes to the directory
	DryRun    bool     `mapstructure:"dry_run" yaml:"dry_run"`       // Resolve moves without performing them
	Log       struct {
		Level string `mapstructure:"level" yaml:"level"`
		JSON  bool   `mapstructure:"json" yaml:"json"`
		File  string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"log" yaml:"log"`
}

// Dir returns winnow's configuration directory (~/.config/winnow).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".winnow")
	}
	return filepath.Join(home, ".config", "winnow")
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// NewViper returns a viper instance carrying winnow's defaults and
// WINNOW_* environment bindings. Callers may bind command-line flags onto it
// before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("reject_dir", "_rejected")
	v.SetDefault("viewed_log", ".winnow_viewed")
	v.SetDefault("lock_file", ".winnow.lock")
	v.SetDefault("flags_file", filepath.Join(Dir(), "flags.yaml"))
	v.SetDefault("ignore", []string{})
	v.SetDefault("preload", true)
	v.SetDefault("watch", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", filepath.Join(Dir(), "winnow.log"))

	v.SetEnvPrefix("WINNOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads settings from path (DefaultPath when empty) through v.
// A missing file is not an error: defaults, environment and bound flags
// still apply.
func Load(v *viper.Viper, path string) (*Settings, error) {
	if v == nil {
		v = NewViper()
	}
	if path == "" {
		path = DefaultPath()
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.Is(err, fs.ErrNotExist) && !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
		}
	}

	return decode(v, path)
}

// Default returns the settings used when no file is configured.
func Default() *Settings {
	s, err := decode(NewViper(), "defaults")
	if err != nil {
		return &Settings{RejectDir: "_rejected", ViewedLog: ".winnow_viewed", LockFile: ".winnow.lock", Preload: true}
	}
	return s
}

func decode(v *viper.Viper, source string) (*Settings, error) {
	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, errors.NewConfigError("error decoding config", source, errors.InvalidConfig, err)
	}
	s.FlagsFile = expandHome(s.FlagsFile)
	s.Log.File = expandHome(s.Log.File)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveSettings writes s to path as YAML, creating parent directories.
func SaveSettings(s *Settings, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (s *Settings) Validate() error {
	if s == nil {
		return errors.NewConfigError("invalid configuration", "", errors.InvalidConfig, fmt.Errorf("nil settings"))
	}

	names := map[string]string{
		"reject_dir": s.RejectDir,
		"viewed_log": s.ViewedLog,
		"lock_file":  s.LockFile,
	}
	seen := make(map[string]string, len(names))
	for key, name := range names {
		if !types.ValidName(name) {
			return errors.NewConfigError("invalid configuration", key, errors.InvalidConfig,
				fmt.Errorf("%q is not a plain file name", name))
		}
		if other, dup := seen[name]; dup {
			return errors.NewConfigError("invalid configuration", key, errors.InvalidConfig,
				fmt.Errorf("%q is already used by %s", name, other))
		}
		seen[name] = key
	}

	for _, pattern := range s.Ignore {
		if _, err := glob.Compile(pattern); err != nil {
			return errors.NewConfigError("invalid configuration", "ignore", errors.InvalidConfig,
				fmt.Errorf("bad pattern %q: %w", pattern, err))
		}
	}

	switch s.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewConfigError("invalid configuration", "log.level", errors.InvalidConfig,
			fmt.Errorf("unknown level %q", s.Log.Level))
	}

	return nil
}

// ReservedNames returns the directory children winnow owns in every base
// directory. Flag slot folders are added by the session at runtime.
func (s *Settings) ReservedNames() []string {
	return []string{s.RejectDir, s.ViewedLog, s.LockFile}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
