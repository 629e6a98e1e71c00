package imagefile

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// isSVGData performs a lightweight detection of SVG content from raw bytes.
// Only the first 4KB are inspected.
func isSVGData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	n := len(data)
	if n > 4096 {
		n = 4096
	}
	header := bytes.ToLower(bytes.TrimSpace(data[:n]))
	return bytes.Contains(header, []byte("<svg")) ||
		bytes.Contains(header, []byte("xmlns=\"http://www.w3.org/2000/svg\"")) ||
		bytes.Contains(header, []byte("xmlns='http://www.w3.org/2000/svg'"))
}

// rasterizeSVG renders SVG data onto a white canvas.
// Explicit width/height attributes win over the fallback size.
func rasterizeSVG(data []byte, opts DecodeOptions) (*image.RGBA, error) {
	w, h, ok := parseSvgExplicitSize(data)
	if !ok {
		w, h = opts.SVGFallbackWidth, opts.SVGFallbackHeight
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("SVG has no usable size and no fallback size is set")
	}
	if w > MaxSVGDimension || h > MaxSVGDimension {
		return nil, fmt.Errorf("%w: SVG size %dx%d exceeds %d per side", ErrImageTooLarge, w, h, MaxSVGDimension)
	}
	if err := checkPixels(w, h, opts.maxPixels()); err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)

	return ToRGB(dst), nil
}

// parseSvgExplicitSize extracts numeric width and height attributes from the <svg> start tag
func parseSvgExplicitSize(data []byte) (int, int, bool) {
	n := len(data)
	if n > 8192 {
		n = 8192
	}
	s := strings.ToLower(string(data[:n]))
	i := strings.Index(s, "<svg")
	if i < 0 {
		return 0, 0, false
	}
	tag := s[i:]
	if j := strings.Index(tag, ">"); j >= 0 {
		tag = tag[:j]
	}

	w, wOk := parseNumericAttr(tag, "width")
	h, hOk := parseNumericAttr(tag, "height")
	if wOk && hOk {
		return w, h, true
	}
	return 0, 0, false
}

// parseNumericAttr reads the leading integer of a quoted attribute, e.g. width="123px".
// Values saturate at MaxSVGDimension+1 so long digit runs cannot overflow.
func parseNumericAttr(tag, attr string) (int, bool) {
	pos := strings.Index(tag, " "+attr+"=")
	if pos < 0 {
		return 0, false
	}
	rest := tag[pos+len(attr)+2:]
	if len(rest) == 0 || (rest[0] != '"' && rest[0] != '\'') {
		return 0, false
	}
	quote := rest[0]
	rest = rest[1:]
	if end := strings.IndexByte(rest, quote); end >= 0 {
		rest = rest[:end]
	}

	num, found := 0, false
	for i := 0; i < len(rest); i++ {
		ch := rest[i]
		if ch < '0' || ch > '9' {
			break
		}
		found = true
		if num <= MaxSVGDimension {
			num = num*10 + int(ch-'0')
		}
	}
	if num > MaxSVGDimension {
		num = MaxSVGDimension + 1
	}
	if !found || num <= 0 {
		return 0, false
	}
	return num, true
}
