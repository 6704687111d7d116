// Package media classifies entries by name. Classification only drives
// presentation and preload eligibility; the engine never looks at it.
package media

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"winnow/pkg/types"
)

var extensions = map[string]types.Class{
	".jpg":  types.ClassImage,
	".jpeg": types.ClassImage,
	".png":  types.ClassImage,
	".bmp":  types.ClassImage,
	".gif":  types.ClassImage,
	".webp": types.ClassImage,
	".tiff": types.ClassImage,
	".tif":  types.ClassImage,

	".mp4":  types.ClassVideo,
	".mov":  types.ClassVideo,
	".avi":  types.ClassVideo,
	".mkv":  types.ClassVideo,
	".webm": types.ClassVideo,

	".pdf": types.ClassDocument,

	".txt":  types.ClassText,
	".md":   types.ClassText,
	".csv":  types.ClassText,
	".log":  types.ClassText,
	".json": types.ClassText,
	".yaml": types.ClassText,
	".yml":  types.ClassText,

	".mp3":  types.ClassAudio,
	".wav":  types.ClassAudio,
	".flac": types.ClassAudio,
	".ogg":  types.ClassAudio,
	".m4a":  types.ClassAudio,
}

// Classify maps a file name to its class by extension, case-insensitively.
// Unknown and missing extensions are ClassOther.
func Classify(name string) types.Class {
	if class, ok := extensions[strings.ToLower(filepath.Ext(name))]; ok {
		return class
	}
	return types.ClassOther
}

// ClassifyEntry classifies a directory child, taking IsDir into account.
func ClassifyEntry(name string, isDir bool) types.Class {
	if isDir {
		return types.ClassDirectory
	}
	return Classify(name)
}

// ClassifyFile is Classify with a content sniff for files whose name says
// nothing. Read errors fall back to ClassOther.
func ClassifyFile(path string) types.Class {
	if class := Classify(path); class != types.ClassOther {
		return class
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return types.ClassOther
	}
	return classifyMIME(mtype)
}

func classifyMIME(mtype *mimetype.MIME) types.Class {
	for m := mtype; m != nil; m = m.Parent() {
		switch {
		case m.Is("application/pdf"):
			return types.ClassDocument
		case strings.HasPrefix(m.String(), "image/"):
			return types.ClassImage
		case strings.HasPrefix(m.String(), "video/"):
			return types.ClassVideo
		case strings.HasPrefix(m.String(), "audio/"):
			return types.ClassAudio
		case strings.HasPrefix(m.String(), "text/"):
			return types.ClassText
		}
	}
	return types.ClassOther
}

// CacheWorthy reports whether entries of class c benefit from preloading.
// Only raster images qualify.
func CacheWorthy(c types.Class) bool {
	return c == types.ClassImage
}
