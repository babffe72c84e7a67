package gallery

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// Thumbnailer scales radiographs down for the gallery picker and encodes
// them as JPEG.
type Thumbnailer struct {
	dir     string
	quality int
}

// NewThumbnailer Create a thumbnailer over the image directory
func NewThumbnailer(dir string, quality int) *Thumbnailer {
	if quality <= 0 || quality > 100 {
		quality = 75
	}
	return &Thumbnailer{dir: dir, quality: quality}
}

// ImagePath Resolve a dataset image name inside the image directory. Names
// with path separators or dot segments are refused, so a record key can
// never reach outside the directory
func (t *Thumbnailer) ImagePath(file string) (string, error) {
	if file == "" || file == "." || file == ".." || filepath.Base(file) != file {
		return "", fmt.Errorf("invalid image name %q", file)
	}
	return filepath.Join(t.dir, file), nil
}

// Thumbnail Load an image and scale it to fit in a size x size square
func (t *Thumbnailer) Thumbnail(file string, size int) ([]byte, error) {
	path, err := t.ImagePath(file)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %v", file, err)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, scaleToFit(src, size), &jpeg.Options{Quality: t.quality}); err != nil {
		return nil, errors.New("jpeg encode error")
	}
	return buf.Bytes(), nil
}

// scaleToFit shrinks an image so its longer side is at most size pixels,
// keeping the aspect ratio. Images already small enough pass through at
// their own size.
func scaleToFit(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w <= size && h <= size {
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
		return out
	}

	scale := float64(size) / float64(w)
	if h > w {
		scale = float64(size) / float64(h)
	}
	outW := int(float64(w) * scale)
	outH := int(float64(h) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, outW, outH))
	draw.BiLinear.Scale(out, out.Bounds(), src, b, draw.Over, nil)
	return out
}
