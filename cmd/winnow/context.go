package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"winnow/internal/config"
	"winnow/internal/flags"
	"winnow/internal/log"
	"winnow/internal/session"
)

type commandContext struct {
	viper      *viper.Viper
	configFlag string
	debug      bool
	jsonLogs   bool
	noPreload  bool

	settingsOnce sync.Once
	settings     *config.Settings
	settingsErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{viper: config.NewViper()}
}

// bindFlags wires the persistent flags that mirror settings keys onto viper
func (c *commandContext) bindFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&c.configFlag, "config", "c", "", "config file (default is $HOME/.config/winnow/config.yaml)")
	pf.BoolVar(&c.debug, "debug", false, "log at debug level")
	pf.BoolVar(&c.jsonLogs, "json-logs", false, "write logs as JSON")
	pf.Bool("dry-run", false, "resolve moves without performing them")
	pf.String("reject-dir", "", "reject bucket folder name")
	pf.Bool("watch", false, "report changes made to the directory by other programs")
	pf.BoolVar(&c.noPreload, "no-preload", false, "do not decode the next image ahead of time")

	_ = c.viper.BindPFlag("dry_run", pf.Lookup("dry-run"))
	_ = c.viper.BindPFlag("reject_dir", pf.Lookup("reject-dir"))
	_ = c.viper.BindPFlag("watch", pf.Lookup("watch"))
}

func (c *commandContext) ensureSettings() (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		s, err := config.Load(c.viper, strings.TrimSpace(c.configFlag))
		if err != nil {
			c.settingsErr = err
			return
		}
		if c.noPreload {
			s.Preload = false
		}
		if c.debug {
			s.Log.Level = "debug"
		}
		if c.jsonLogs {
			s.Log.JSON = true
		}
		c.settings = s
	})
	return c.settings, c.settingsErr
}

// configureLogging sends logs to the log file. With --debug they are also
// written to stderr, except while the triage screen owns the terminal.
func (c *commandContext) configureLogging(s *config.Settings, stderr io.Writer, interactive bool) {
	opts := []log.Option{log.WithLevel(s.Log.Level), log.WithOutput(io.Discard)}
	if c.debug && !interactive {
		opts[1] = log.WithOutput(stderr)
	}
	if s.Log.JSON {
		opts = append(opts, log.WithJSON())
	}
	if s.Log.File != "" {
		opts = append(opts, log.WithFile(s.Log.File))
	}
	log.Configure(opts...)
}

// openSession starts a triage session on the directory named by args
func (c *commandContext) openSession(args []string) (*session.Controller, error) {
	s, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}
	dir, err := targetDir(args)
	if err != nil {
		return nil, err
	}
	ctrl := session.New(session.Options{Settings: s, Flags: flags.NewStore(s.FlagsFile)})
	if _, err := ctrl.Start(dir); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func targetDir(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return filepath.Abs(args[0])
	}
	return os.Getwd()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
