// Package queue holds the ordered sequence of entries still awaiting a
// decision, plus the cursor into it.
package queue

import (
	"strings"

	"winnow/internal/log"
	"winnow/pkg/types"
)

// Set is a set of entry names.
type Set map[string]struct{}

// NewSet builds a Set from names, skipping empty ones.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Has reports whether name is in the set
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Navigator is the part of the queue a disposition may mutate.
type Navigator interface {
	Current() (types.Entry, bool)
	Advance()
	RemoveCurrent() (types.Entry, bool)
	Cursor() int
}

// Stats describes the outcome of a rebuild.
type Stats struct {
	// Candidates counts eligible entries before the viewed filter.
	Candidates int
	// Viewed counts the candidates the viewed set removed.
	Viewed int
}

// Queue is the triage queue. It is not safe for concurrent use; the
// session serializes access.
type Queue struct {
	scanner *Scanner
	entries []types.Entry
	cursor  int
}

// New creates an empty queue scanning through scanner.
func New(scanner *Scanner) *Queue {
	if scanner == nil {
		scanner = &Scanner{}
	}
	return &Queue{scanner: scanner}
}

// Rebuild replaces the queue with the eligible children of baseDir and moves
// the cursor to the start. On a scan error the queue is left untouched.
func (q *Queue) Rebuild(baseDir string, viewed, reserved Set) (Stats, error) {
	children, err := q.scanner.Scan(baseDir)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	entries := make([]types.Entry, 0, len(children))
	for _, e := range children {
		switch {
		case strings.HasPrefix(e.Name, "."):
			continue
		case reserved.Has(e.Name):
			continue
		case q.scanner.Ignored(e.Name):
			continue
		}
		stats.Candidates++
		if viewed.Has(e.Name) {
			stats.Viewed++
			continue
		}
		entries = append(entries, e)
	}

	q.entries = entries
	q.cursor = 0
	log.LogWithFields(
		log.F("dir", baseDir),
		log.F("pending", len(entries)),
		log.F("candidates", stats.Candidates),
		log.F("viewed", stats.Viewed),
	).Debug("Queue rebuilt")
	return stats, nil
}

// Current returns the entry under the cursor; false means exhausted.
func (q *Queue) Current() (types.Entry, bool) {
	if q.cursor >= len(q.entries) {
		return types.Entry{}, false
	}
	return q.entries[q.cursor], true
}

// Advance moves the cursor forward by one. It does nothing when exhausted.
func (q *Queue) Advance() {
	if q.cursor < len(q.entries) {
		q.cursor++
	}
}

// RemoveCurrent splices out the entry under the cursor. The cursor stays
// put and now names the following entry.
func (q *Queue) RemoveCurrent() (types.Entry, bool) {
	if q.cursor >= len(q.entries) {
		return types.Entry{}, false
	}
	removed := q.entries[q.cursor]
	q.entries = append(q.entries[:q.cursor], q.entries[q.cursor+1:]...)
	return removed, true
}

// Exhausted reports cursor == Len
func (q *Queue) Exhausted() bool {
	return q.cursor >= len(q.entries)
}

// Cursor returns the cursor position
func (q *Queue) Cursor() int {
	return q.cursor
}

// Len returns the number of entries in the queue
func (q *Queue) Len() int {
	return len(q.entries)
}

// At returns the entry at index i
func (q *Queue) At(i int) (types.Entry, bool) {
	if i < 0 || i >= len(q.entries) {
		return types.Entry{}, false
	}
	return q.entries[i], true
}

// Names returns the queued names in order
func (q *Queue) Names() []string {
	names := make([]string, len(q.entries))
	for i, e := range q.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the queued entries
func (q *Queue) Entries() []types.Entry {
	out := make([]types.Entry, len(q.entries))
	copy(out, q.entries)
	return out
}
