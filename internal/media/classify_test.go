package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"winnow/pkg/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want types.Class
	}{
		{"IMG_0001.JPG", types.ClassImage},
		{"photo.jpeg", types.ClassImage},
		{"scan.tif", types.ClassImage},
		{"clip.mp4", types.ClassVideo},
		{"Movie.MKV", types.ClassVideo},
		{"report.pdf", types.ClassDocument},
		{"notes.md", types.ClassText},
		{"data.yml", types.ClassText},
		{"song.flac", types.ClassAudio},
		{"archive.tar.gz", types.ClassOther},
		{"Makefile", types.ClassOther},
		{"trailing.", types.ClassOther},
		{"", types.ClassOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.name))
		})
	}
}

func TestClassifyEntry(t *testing.T) {
	assert.Equal(t, types.ClassDirectory, ClassifyEntry("photos.jpg", true))
	assert.Equal(t, types.ClassImage, ClassifyEntry("photos.jpg", false))
}

func TestClassifyFile(t *testing.T) {
	dir := t.TempDir()

	pngNoExt := filepath.Join(dir, "image")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	require.NoError(t, os.WriteFile(pngNoExt, png, 0644))
	assert.Equal(t, types.ClassImage, ClassifyFile(pngNoExt))

	textNoExt := filepath.Join(dir, "README")
	require.NoError(t, os.WriteFile(textNoExt, []byte("plain words\n"), 0644))
	assert.Equal(t, types.ClassText, ClassifyFile(textNoExt))

	// extension wins without touching the file
	assert.Equal(t, types.ClassVideo, ClassifyFile(filepath.Join(dir, "missing.mov")))
	assert.Equal(t, types.ClassOther, ClassifyFile(filepath.Join(dir, "missing")))
}

func TestCacheWorthy(t *testing.T) {
	assert.True(t, CacheWorthy(types.ClassImage))
	for _, c := range []types.Class{types.ClassOther, types.ClassVideo, types.ClassDocument, types.ClassText, types.ClassAudio, types.ClassDirectory} {
		assert.False(t, CacheWorthy(c), c.String())
	}
}
