package organize

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"

	"github.com/charlievieth/fastwalk"

	"winnow/internal/errors"
	"winnow/internal/log"
)

// move renames src to dst. Only when the two live on different devices does
// it fall back to copying, verifying and deleting the source. A failed
// fallback removes whatever it copied, unless the source was already partly
// deleted; then the complete copy at dst is kept and named in the error.
func (e *Engine) move(src, dst string) error {
	err := e.rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	log.LogWithFields(log.F("src", src), log.F("dst", dst)).Info("Cross-device move, copying instead")
	if err := copyAcross(src, dst); err != nil {
		if rmErr := os.RemoveAll(dst); rmErr != nil {
			log.LogWithError(rmErr).Warn("Could not remove partial copy")
		}
		return err
	}
	if err := e.remove(src); err != nil {
		return undoCopy(src, dst, err)
	}
	return nil
}

// undoCopy handles a source that could not be deleted after a verified
// copy. An intact source wins and the copy goes; otherwise the copy is the
// only complete version and stays.
func undoCopy(src, dst string, cause error) error {
	have, srcErr := footprint(src)
	want, dstErr := footprint(dst)
	if srcErr == nil && dstErr == nil && have == want {
		if err := os.RemoveAll(dst); err != nil {
			log.LogWithFields(log.F("src", src), log.F("dst", dst)).Error("Entry left in both places")
			return fmt.Errorf("could not remove source, and copy at %s could not be removed either: %w", dst, cause)
		}
		return fmt.Errorf("could not remove source, copy undone: %w", cause)
	}
	log.LogWithFields(log.F("src", src), log.F("dst", dst)).Error("Source partly removed, complete copy kept")
	return fmt.Errorf("source partly removed, complete copy kept at %s: %w", dst, cause)
}

// footprint measures a file, symlink or directory tree
func footprint(path string) (treeStats, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return treeStats{}, err
	}
	if !info.IsDir() {
		return treeStats{files: 1, bytes: info.Size()}, nil
	}
	return measureTree(path)
}

func copyAcross(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case info.IsDir():
		return copyDir(src, dst)
	default:
		n, err := copyFile(src, dst, info.Mode())
		if err != nil {
			return err
		}
		if n != info.Size() {
			return fmt.Errorf("copy of %s is %d bytes, expected %d", src, n, info.Size())
		}
		return nil
	}
}

// copyFile copies one regular file and syncs it. dst must not exist.
func copyFile(src, dst string, mode fs.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, mode.Perm())
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}

type treeStats struct {
	files int
	bytes int64
}

type copyItem struct {
	srcPath string
	dstPath string
	isDir   bool
	mode    fs.FileMode
	size    int64
}

// copyDir copies a directory tree, then checks the copy holds the same
// number of files and bytes as the source.
func copyDir(src, dst string) error {
	var (
		items []copyItem
		mu    sync.Mutex
		want  treeStats
	)

	conf := &fastwalk.Config{Follow: true}
	err := fastwalk.Walk(conf, src, func(fullPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, fullPath)
		if err != nil || rel == "." {
			return err
		}
		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			return err
		}

		item := copyItem{
			srcPath: fullPath,
			dstPath: filepath.Join(dst, rel),
			isDir:   info.IsDir(),
			mode:    info.Mode(),
			size:    info.Size(),
		}
		mu.Lock()
		items = append(items, item)
		if !item.isDir {
			want.files++
			want.bytes += item.size
		}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	// directories first, parents before children
	sort.Slice(items, func(i, j int) bool {
		if items[i].isDir != items[j].isDir {
			return items[i].isDir
		}
		return len(items[i].dstPath) < len(items[j].dstPath)
	})

	for _, item := range items {
		if item.isDir {
			if err := os.MkdirAll(item.dstPath, item.mode.Perm()|0700); err != nil {
				return err
			}
			continue
		}
		if _, err := copyFile(item.srcPath, item.dstPath, item.mode); err != nil {
			return err
		}
	}

	got, err := measureTree(dst)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("copy of %s holds %d files / %d bytes, expected %d / %d",
			src, got.files, got.bytes, want.files, want.bytes)
	}
	return nil
}

func measureTree(root string) (treeStats, error) {
	var (
		stats treeStats
		mu    sync.Mutex
	)
	err := fastwalk.Walk(&fastwalk.Config{}, root, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		mu.Lock()
		stats.files++
		stats.bytes += info.Size()
		mu.Unlock()
		return nil
	})
	return stats, err
}
