package filters

import (
	"image"
	"image/color"
	"sort"
)

// MaxChannelSum is the largest possible r+g+b of an 8-bit pixel
const MaxChannelSum = 3 * 255

// Band maps every channel sum up to and including Max onto Color
type Band struct {
	Max   int
	Color color.RGBA
}

// BandTable is an ordered classification of channel sums.
// Bands are sorted by Max, contiguous, and the last one ends at MaxChannelSum.
type BandTable []Band

// Lookup returns the color of the first band whose Max is >= total
func (t BandTable) Lookup(total int) color.RGBA {
	i := sort.Search(len(t), func(i int) bool { return total <= t[i].Max })
	if i == len(t) {
		i = len(t) - 1
	}
	return t[i].Color
}

// Palette returns the distinct output colors in band order
func (t BandTable) Palette() []color.RGBA {
	out := make([]color.RGBA, len(t))
	for i, b := range t {
		out[i] = b.Color
	}
	return out
}

func opaque(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func gray(v uint8) color.RGBA {
	return opaque(v, v, v)
}

var (
	black = opaque(0, 0, 0)
	white = opaque(255, 255, 255)
)

// quantize replaces each pixel of img with classify(channel sum).
// Every output depends only on the same pixel's input, so the scan writes in place.
func quantize(img *image.RGBA, classify func(total int) color.RGBA) {
	b := img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			p := img.Pix[i : i+4 : i+4]
			c := classify(int(p[0]) + int(p[1]) + int(p[2]))
			p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 255
			i += 4
		}
	}
}
