// Package testutils holds fixtures shared by winnow's package tests.
package testutils

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TriageDir creates a temporary directory holding one small file per name.
// Each file's content is its own name.
func TriageDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	CreateTestFiles(t, dir, names...)
	return dir
}

// CreateTestFiles writes one file per name into dir
func CreateTestFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644)
		require.NoError(t, err)
	}
}

// WritePNG writes a grey w×h PNG to path
func WritePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, w, h))))
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
