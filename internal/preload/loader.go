package preload

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"winnow/internal/errors"
)

// Content is what a Loader produces for one entry.
type Content struct {
	Name   string      // entry name the content was fetched for
	Format string      // decoder name, e.g. "jpeg"
	Size   image.Point // original dimensions
	Image  image.Image // possibly scaled down preview
	Bytes  int64       // file size on disk
}

// Loader fetches the content of the file at path.
type Loader interface {
	Load(path string) (Content, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (Content, error)

// Load calls f(path)
func (f LoaderFunc) Load(path string) (Content, error) {
	return f(path)
}

// ImageLoader decodes raster images and keeps a preview no larger than
// MaxPixels on either side. A zero MaxPixels keeps the full image.
type ImageLoader struct {
	MaxPixels int
}

// NewImageLoader creates a loader that scales previews to maxPixels.
func NewImageLoader(maxPixels int) *ImageLoader {
	return &ImageLoader{MaxPixels: maxPixels}
}

// Load opens and decodes the image at path.
func (l *ImageLoader) Load(path string) (Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return Content{}, errors.NewFileError("cannot open image", path, errors.FileNotFound, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Content{}, errors.NewFileError("cannot stat image", path, errors.FileAccessDenied, err)
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return Content{}, errors.NewFileError("cannot decode image", path, errors.Unknown, err)
	}

	return Content{
		Format: format,
		Size:   img.Bounds().Size(),
		Image:  l.scale(img),
		Bytes:  info.Size(),
	}, nil
}

func (l *ImageLoader) scale(src image.Image) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if l.MaxPixels <= 0 || (width <= l.MaxPixels && height <= l.MaxPixels) {
		return src
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = l.MaxPixels
		newHeight = height * l.MaxPixels / width
	} else {
		newHeight = l.MaxPixels
		newWidth = width * l.MaxPixels / height
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}
