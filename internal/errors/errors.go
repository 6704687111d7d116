// Package errors provides standardized error handling for winnow.
// It defines the error kinds of the triage engine and helper functions for
// consistent error creation, wrapping, and classification across packages.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	ScanFailed
	MoveFailed
	CollisionExhausted
	LogWriteFailed
	// Config error kinds
	InvalidConfig
	InvalidSlot
	SlotUnnamed
	// Session error kinds
	QueueExhausted
	Busy
	DirectoryLocked
)

func (k ErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "file not found"
	case FileAccessDenied:
		return "access denied"
	case InvalidPath:
		return "invalid path"
	case ScanFailed:
		return "scan failed"
	case MoveFailed:
		return "move failed"
	case CollisionExhausted:
		return "collision exhausted"
	case LogWriteFailed:
		return "log write failed"
	case InvalidConfig:
		return "invalid configuration"
	case InvalidSlot:
		return "invalid flag slot"
	case SlotUnnamed:
		return "flag slot unnamed"
	case QueueExhausted:
		return "queue exhausted"
	case Busy:
		return "busy"
	case DirectoryLocked:
		return "directory locked"
	default:
		return "unknown"
	}
}

// Common error constants for frequently occurring errors
var (
	ErrExhausted = NewSessionError("queue exhausted", QueueExhausted)
	ErrBusy      = NewSessionError("another disposition is in progress", Busy)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations. For moves it
// carries both the entry being moved and the destination it was bound for.
type FileError struct {
	ApplicationError
	path string
	dest string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// NewMoveError creates a file error for a failed move of name into dest.
func NewMoveError(name, dest string, kind ErrorKind, err error) *FileError {
	fe := NewFileError("cannot move", name, kind, err)
	fe.dest = dest
	return fe
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path == "" {
		return e.ApplicationError.Error()
	}
	target := e.path
	if e.dest != "" {
		target = fmt.Sprintf("%s -> %s", e.path, e.dest)
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.msg, target, e.err)
	}
	return fmt.Sprintf("%s: %s", e.msg, target)
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// Destination returns the destination of a failed move, if any
func (e *FileError) Destination() string {
	return e.dest
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// SessionError represents errors from the session state machine
type SessionError struct {
	ApplicationError
}

// NewSessionError creates a new session error
func NewSessionError(msg string, kind ErrorKind) *SessionError {
	return &SessionError{ApplicationError: ApplicationError{msg: msg, kind: kind}}
}

// Is matches session errors by kind so wrapped copies compare equal to
// the exported sentinels.
func (e *SessionError) Is(target error) bool {
	var other *SessionError
	if errors.As(target, &other) {
		return other.kind == e.kind
	}
	return false
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) ErrorKind {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind()
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind()
	}
	var sessionErr *SessionError
	if errors.As(err, &sessionErr) {
		return sessionErr.Kind()
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return Unknown
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	return KindOf(err) == FileNotFound
}

// IsScanError checks if the error came from an unreadable base directory
func IsScanError(err error) bool {
	return KindOf(err) == ScanFailed
}

// IsMoveError checks if a disposition failed while relocating the entry.
// Collision exhaustion counts as a move error.
func IsMoveError(err error) bool {
	k := KindOf(err)
	return k == MoveFailed || k == CollisionExhausted
}

// IsConfigurationError checks if the error is a configuration problem
// rather than an I/O failure
func IsConfigurationError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsSlotUnnamed checks if a sort targeted a flag slot without a name
func IsSlotUnnamed(err error) bool {
	return KindOf(err) == SlotUnnamed
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	return KindOf(err) == InvalidConfig
}

// IsBusy checks if a disposition was rejected because another was running
func IsBusy(err error) bool {
	return KindOf(err) == Busy
}

// IsExhausted checks if the queue had no current entry
func IsExhausted(err error) bool {
	return KindOf(err) == QueueExhausted
}

// IsLocked checks if another engine holds the directory
func IsLocked(err error) bool {
	return KindOf(err) == DirectoryLocked
}
