// Package log is winnow's logging facade. It exposes package-level helpers
// backed by a global logger plus structured fields, and is built on logrus.
package log

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"winnow/internal/errors"
)

var (
	mu      sync.RWMutex
	isDebug = false
	logger  = NewLogger()
)

// Field is a single structured key/value pair
type Field struct {
	Key   string
	Value interface{}
}

// F creates a structured field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled, structured log lines
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

type options struct {
	out      io.Writer
	json     bool
	filePath string
	level    logrus.Level
}

// Option configures a Logger
type Option func(*options)

// WithOutput sets the primary writer (stdout by default)
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches to one JSON object per line
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile additionally appends every line to the file at path
func WithFile(path string) Option {
	return func(o *options) { o.filePath = path }
}

// WithLevel sets the minimum level ("debug", "info", "warn", "error")
func WithLevel(level string) Option {
	return func(o *options) {
		if lvl, err := logrus.ParseLevel(level); err == nil {
			o.level = lvl
		}
	}
}

// NewLogger creates a new Logger
func NewLogger(opts ...Option) *Logger {
	o := &options{out: os.Stdout, level: logrus.InfoLevel}
	if isDebug {
		o.level = logrus.DebugLevel
	}
	for _, opt := range opts {
		opt(o)
	}

	base := logrus.New()
	base.SetLevel(o.level)
	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	l := &Logger{}
	out := o.out
	if o.filePath != "" {
		if err := os.MkdirAll(filepath.Dir(o.filePath), 0755); err == nil {
			f, err := os.OpenFile(o.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				l.file = f
				out = io.MultiWriter(o.out, f)
			}
		}
	}
	base.SetOutput(out)
	l.entry = logrus.NewEntry(base)
	return l
}

// Configure replaces the global logger
func Configure(opts ...Option) {
	mu.Lock()
	defer mu.Unlock()
	old := logger
	logger = NewLogger(opts...)
	if old != nil {
		old.Close()
	}
}

// SetDebug toggles debug output on the global logger
func SetDebug(debug bool) {
	mu.Lock()
	defer mu.Unlock()
	isDebug = debug
	if debug {
		logger.entry.Logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.entry.Logger.SetLevel(logrus.InfoLevel)
	}
}

// SetLevel sets the global minimum level
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.NewConfigError("invalid log level", level, errors.InvalidConfig, err)
	}
	mu.Lock()
	defer mu.Unlock()
	logger.entry.Logger.SetLevel(lvl)
	return nil
}

func current() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// With returns a child logger carrying the given fields
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// WithContext is reserved for request-scoped fields; it currently returns l.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	return l
}

func (l *Logger) Debug(msg string)                          { l.entry.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Info(msg string)                           { l.entry.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warn(msg string)                           { l.entry.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Error(msg string)                          { l.entry.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// Info logs at info level on the global logger
func Info(msg string) { current().Info(msg) }

// Infof logs a formatted message at info level
func Infof(format string, args ...interface{}) { current().Infof(format, args...) }

// Debug logs at debug level on the global logger
func Debug(msg string) { current().Debug(msg) }

// Debugf logs a formatted message at debug level
func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }

// Warn logs at warn level on the global logger
func Warn(msg string) { current().Warn(msg) }

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) { current().Warnf(format, args...) }

// Error logs at error level on the global logger
func Error(msg string) { current().Error(msg) }

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }

// LogWithFields returns the global logger with fields attached
func LogWithFields(fields ...Field) *Logger {
	return current().With(fields...)
}

// LogWithError returns the global logger annotated with err and whatever
// context the application error types carry.
func LogWithError(err error) *Logger {
	if err == nil {
		return current().With(F("error", "nil"))
	}
	fields := []Field{F("error", err.Error())}
	if kind := errors.KindOf(err); kind != errors.Unknown {
		fields = append(fields, F("error_kind", kind.String()))
	}
	var fe *errors.FileError
	if errors.As(err, &fe) {
		fields = append(fields, F("path", fe.Path()))
		if fe.Destination() != "" {
			fields = append(fields, F("dest", fe.Destination()))
		}
	}
	var ce *errors.ConfigError
	if errors.As(err, &ce) && ce.Param() != "" {
		fields = append(fields, F("param", ce.Param()))
	}
	return current().With(fields...)
}

// LogError logs err at error level with msg
func LogError(err error, msg string) {
	LogWithError(err).Error(msg)
}
