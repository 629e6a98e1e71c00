// Package imagefile loads images as 3-channel RGB and writes them back
// without overwriting existing files.
package imagefile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for file names the batch and save paths do not handle
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrImageTooLarge is returned when an in-memory image would exceed the pixel limit
var ErrImageTooLarge = errors.New("image too large")

const (
	// DefaultJPEGQuality matches the imaging package default
	DefaultJPEGQuality = 95
	// DefaultMaxPixels bounds decoded uploads to roughly 200 MB of RGBA
	DefaultMaxPixels = 50_000_000
	// MaxSVGDimension is the largest width or height read from an <svg> tag
	MaxSVGDimension = 1 << 15
)

// DecodeOptions controls Decode.
// A MaxPixels of zero or less means DefaultMaxPixels.
type DecodeOptions struct {
	SVGFallbackWidth  int
	SVGFallbackHeight int
	MaxPixels         int
}

func (o DecodeOptions) maxPixels() int64 {
	if o.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return int64(o.MaxPixels)
}

// checkPixels rejects w x h canvases above limit before anything is allocated
func checkPixels(w, h int, limit int64) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if int64(w) > limit || int64(h) > limit || int64(w)*int64(h) > limit {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, w, h, limit)
	}
	return nil
}

// Supported file extensions (lowercase, with leading dot).
var supportedExtensions = map[string]imaging.Format{
	".jpg":  imaging.JPEG,
	".jpeg": imaging.JPEG,
	".png":  imaging.PNG,
}

// IsSupported reports whether name ends in .jpg, .jpeg or .png, ignoring case
func IsSupported(name string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// FormatFromPath returns the encoding format implied by path's extension
func FormatFromPath(path string) (imaging.Format, error) {
	f, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	return f, nil
}

// Open decodes the image at path and normalizes it to RGB
func Open(path string) (*image.RGBA, error) {
	if _, err := FormatFromPath(path); err != nil {
		return nil, err
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	rgb := ToRGB(img)
	slog.Debug("imagefile: opened",
		"path", path,
		"width", rgb.Rect.Dx(),
		"height", rgb.Rect.Dy())
	return rgb, nil
}

// Decode reads an in-memory image in any registered raster format or SVG.
// It returns the normalized image and the detected format name. Dimensions
// are checked against opts before any pixel buffer is allocated.
func Decode(data []byte, opts DecodeOptions) (*image.RGBA, string, error) {
	if isSVGData(data) {
		img, err := rasterizeSVG(data, opts)
		if err != nil {
			return nil, "", err
		}
		return img, "svg", nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, opts.maxPixels()); err != nil {
		return nil, "", err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	return ToRGB(img), format, nil
}

// ToRGB copies img into an RGBA buffer anchored at the origin and drops alpha.
// Color values are kept un-premultiplied, so a transparent pixel keeps its RGB.
func ToRGB(img image.Image) *image.RGBA {
	n := imaging.Clone(img)
	for i := 3; i < len(n.Pix); i += 4 {
		n.Pix[i] = 0xff
	}
	return &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, format imaging.Format, jpegQuality int) error {
	if jpegQuality <= 0 {
		jpegQuality = DefaultJPEGQuality
	}
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}
