package types

import (
	"fmt"
	"strings"
)

// Class is the closed set of classifications an entry can carry.
// It is derived from the entry name and only consulted by presentation
// and preload eligibility.
type Class int

const (
	ClassOther Class = iota
	ClassImage
	ClassVideo
	ClassDocument
	ClassText
	ClassAudio
	ClassDirectory
)

// String returns the lower-case class name
func (c Class) String() string {
	switch c {
	case ClassImage:
		return "image"
	case ClassVideo:
		return "video"
	case ClassDocument:
		return "document"
	case ClassText:
		return "text"
	case ClassAudio:
		return "audio"
	case ClassDirectory:
		return "directory"
	default:
		return "other"
	}
}

// Entry is a direct child of the base directory that is eligible for triage.
// Only the name is authoritative; the rest is informational.
type Entry struct {
	Name  string `json:"name"`
	Class Class  `json:"class"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// String returns a human-readable representation
func (e Entry) String() string {
	var sb strings.Builder
	sb.WriteString(e.Name)
	if e.IsDir {
		sb.WriteString("/")
	}
	sb.WriteString(fmt.Sprintf(" (%s)", e.Class))
	return sb.String()
}

// ValidName reports whether name can identify an entry inside a single
// directory: non-empty, not "." or "..", and free of path separators.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
