package queue

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"

	"winnow/internal/errors"
	"winnow/internal/log"
	"winnow/internal/media"
	"winnow/pkg/types"
)

// Scanner lists the direct children of a directory and knows which names
// the user asked to ignore.
type Scanner struct {
	patterns []string
	ignore   []glob.Glob
}

// NewScanner compiles the ignore patterns. Patterns match whole names.
func NewScanner(ignore []string) (*Scanner, error) {
	s := &Scanner{patterns: ignore}
	for _, pattern := range ignore {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.NewConfigError("invalid ignore pattern", pattern, errors.InvalidConfig, err)
		}
		s.ignore = append(s.ignore, g)
	}
	return s, nil
}

// Ignored reports whether name matches one of the ignore patterns.
func (s *Scanner) Ignored(name string) bool {
	for _, g := range s.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Scan returns the direct children of baseDir in byte order of name.
// Entries that vanish or cannot be stat'ed mid-scan are skipped; an
// unusable baseDir is a ScanFailed error.
func (s *Scanner) Scan(baseDir string) ([]types.Entry, error) {
	root := filepath.Clean(baseDir)

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewFileError("cannot read directory", root, errors.ScanFailed, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("not a directory", root, errors.ScanFailed, nil)
	}

	var (
		mu      sync.Mutex
		entries []types.Entry
		rootErr error
	)

	conf := &fastwalk.Config{Follow: false}
	err = fastwalk.Walk(conf, root, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			if fullPath == root {
				mu.Lock()
				rootErr = err
				mu.Unlock()
				return err
			}
			log.LogWithFields(log.F("path", fullPath), log.F("error", err.Error())).Debug("Skipping unreadable entry")
			return nil
		}
		if fullPath == root {
			return nil
		}

		// only direct children
		rel := strings.TrimPrefix(strings.TrimPrefix(fullPath, root), string(filepath.Separator))
		if strings.ContainsRune(rel, filepath.Separator) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			// broken symlink
			info, err = os.Lstat(fullPath)
			if err != nil {
				log.LogWithFields(log.F("name", d.Name())).Debug("Skipping entry that vanished during scan")
				return nil
			}
		}

		isDir := info.IsDir()
		class := media.ClassifyEntry(d.Name(), isDir)
		if class == types.ClassOther && info.Mode().IsRegular() {
			// the name says nothing, look at the content
			class = media.ClassifyFile(fullPath)
		}
		entry := types.Entry{
			Name:  d.Name(),
			Class: class,
			IsDir: isDir,
			Size:  info.Size(),
		}

		mu.Lock()
		entries = append(entries, entry)
		mu.Unlock()

		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if rootErr != nil {
		return nil, errors.NewFileError("cannot read directory", root, errors.ScanFailed, rootErr)
	}
	if err != nil {
		return nil, errors.NewFileError("cannot read directory", root, errors.ScanFailed, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
