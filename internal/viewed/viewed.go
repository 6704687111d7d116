// Package viewed keeps the per-directory record of entries that were
// already decided. The record is an append-only, newline-delimited file
// inside the base directory; loading is lax and never fails.
package viewed

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"winnow/internal/errors"
	"winnow/internal/log"
	"winnow/pkg/types"
)

// Log is the in-memory view of a directory's viewed record together with
// the handle needed to extend it.
type Log struct {
	mu    sync.Mutex
	path  string
	names map[string]struct{}
	// partial is set while the file still ends in an unterminated record
	// that could not be cut off; valid is the length of the whole records
	// before it.
	partial bool
	valid   int64
}

// Load reads baseDir/fileName. A missing, unreadable or damaged record
// yields an empty or partial set rather than an error, since showing an
// entry again is always safe.
func Load(baseDir, fileName string) *Log {
	l := &Log{
		path:  filepath.Join(baseDir, fileName),
		names: make(map[string]struct{}),
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.LogWithError(err).Warn("Could not read viewed log, starting empty")
		}
		return l
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		// unclean shutdown: drop the unterminated final record
		l.partial = true
		if i := bytes.LastIndexByte(data, '\n'); i >= 0 {
			data = data[:i+1]
		} else {
			data = nil
		}
		l.valid = int64(len(data))
		if err := l.dropPartial(); err != nil {
			log.LogWithError(err).Warn("Could not cut off unterminated viewed log record")
		}
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	skipped := 0
	for sc.Scan() {
		name, ok := decodeRecord(sc.Text())
		if !ok {
			skipped++
			continue
		}
		l.names[name] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		log.LogWithError(err).Warn("Viewed log truncated while reading")
	}
	if skipped > 0 {
		log.LogWithFields(log.F("path", l.path), log.F("skipped", skipped)).
			Warn("Ignored malformed viewed log records")
	}
	return l
}

// dropPartial truncates the file to its last whole record so a fragment
// left by an unclean shutdown never turns into a record of its own.
func (l *Log) dropPartial() error {
	if err := os.Truncate(l.path, l.valid); err != nil {
		l.partial = true
		return errors.NewFileError("cannot truncate viewed log", l.path, errors.LogWriteFailed, err)
	}
	l.partial = false
	log.LogWithFields(log.F("path", l.path), log.F("size", l.valid)).Warn("Dropped unterminated viewed log record")
	return nil
}

// Path returns the backing file location
func (l *Log) Path() string {
	return l.path
}

// Has reports whether name was already recorded
func (l *Log) Has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.names[name]
	return ok
}

// Len returns the number of recorded names
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.names)
}

// Names returns the recorded names in lexical order
func (l *Log) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.names))
	for n := range l.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Set returns a copy of the recorded names for filtering a scan
func (l *Log) Set() map[string]struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]struct{}, len(l.names))
	for n := range l.names {
		out[n] = struct{}{}
	}
	return out
}

// MarkViewed records name. Recording a name twice writes nothing the second
// time. The record is synced before MarkViewed returns; if the write fails
// the name is still remembered in memory and the error is returned for the
// caller to report.
func (l *Log) MarkViewed(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.names[name]; ok {
		return nil
	}
	l.names[name] = struct{}{}

	if l.partial {
		if err := l.dropPartial(); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	buf.WriteString(encodeRecord(name))
	buf.WriteByte('\n')

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.NewFileError("cannot open viewed log", l.path, errors.LogWriteFailed, err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return errors.NewFileError("cannot append to viewed log", l.path, errors.LogWriteFailed, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return errors.NewFileError("cannot sync viewed log", l.path, errors.LogWriteFailed, err)
	}
	if err := f.Close(); err != nil {
		return errors.NewFileError("cannot close viewed log", l.path, errors.LogWriteFailed, err)
	}
	return nil
}

// Clear forgets every name and removes the backing file. The in-memory set
// is cleared even when the file cannot be removed; that failure is returned
// as a warning.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.names = make(map[string]struct{})
	l.partial = false
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.NewFileError("cannot remove viewed log", l.path, errors.LogWriteFailed, err)
	}
	return nil
}

func encodeRecord(name string) string {
	if strings.ContainsAny(name, "\n\r") || strings.HasPrefix(name, `"`) {
		return strconv.Quote(name)
	}
	return name
}

func decodeRecord(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return "", false
	}
	if strings.HasPrefix(line, `"`) {
		name, err := strconv.Unquote(line)
		if err != nil {
			return "", false
		}
		line = name
	}
	if !types.ValidName(line) {
		return "", false
	}
	return line, true
}
