package evidence

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/julianstephens/storeduty/internal/logger"
)

// CompressOptions bounds the stored photo. MaxEdge 0 keeps the original size.
type CompressOptions struct {
	MaxEdge int
	Quality int
}

// Compress re-encodes a JPEG, PNG or WebP photo as JPEG, honoring EXIF
// orientation and fitting the longest edge within MaxEdge. Data that cannot
// be decoded is returned unchanged.
func Compress(data []byte, opts CompressOptions) []byte {
	out, _ := compress(data, opts)
	return out
}

// CompressPhoto is Compress plus the name to store the result under: a
// re-encoded photo always gets a .jpg extension, an untouched one keeps
// filename.
func CompressPhoto(data []byte, filename string, opts CompressOptions) ([]byte, string) {
	out, reencoded := compress(data, opts)
	if reencoded {
		filename = JPEGName(filename)
	}
	return out, filename
}

// JPEGName swaps the extension of filename for .jpg.
func JPEGName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		base = "photo"
	}
	return base + ".jpg"
}

func compress(data []byte, opts CompressOptions) ([]byte, bool) {
	img, err := decode(data)
	if err != nil {
		logger.Warn("Photo could not be decoded, storing original", "error", err)
		return data, false
	}

	if opts.MaxEdge > 0 {
		b := img.Bounds()
		if b.Dx() > opts.MaxEdge || b.Dy() > opts.MaxEdge {
			img = imaging.Fit(img, opts.MaxEdge, opts.MaxEdge, imaging.Lanczos)
		}
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 80
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flatten(img), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		logger.Warn("Photo could not be encoded, storing original", "error", err)
		return data, false
	}
	return buf.Bytes(), true
}

func decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if decoded, webpErr := webp.Decode(bytes.NewReader(data)); webpErr == nil {
		return decoded, nil
	}
	return nil, err
}

// flatten composites img over white, since JPEG has no alpha channel.
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Over)
	return dst
}
