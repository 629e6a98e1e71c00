package filters

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
)

// Tolerance is half the maximum channel sum, rounded up.
// The black/white cut is Tolerance * acceptance / 100.
const Tolerance = 382

// BlackWhiteFilter thresholds an image into pure black and pure white
type BlackWhiteFilter struct {
	acceptance float64
}

// NewBlackWhiteFilter creates a black_white filter.
// A missing acceptance falls back to filterstructure.DefaultAcceptance.
func NewBlackWhiteFilter(args filterstructure.Args) (filterstructure.Filter, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	return &BlackWhiteFilter{acceptance: args.AcceptanceOrDefault()}, nil
}

// Name returns the filter selector
func (f *BlackWhiteFilter) Name() filterstructure.Selector {
	return filterstructure.BlackWhite
}

// Acceptance returns the effective acceptance percentage
func (f *BlackWhiteFilter) Acceptance() float64 {
	return f.acceptance
}

// Threshold returns the largest channel sum that still becomes black
func (f *BlackWhiteFilter) Threshold() float64 {
	return Tolerance * f.acceptance / 100
}

// Classify maps a channel sum to black or white
func (f *BlackWhiteFilter) Classify(total int) color.RGBA {
	if float64(total) <= f.Threshold() {
		return black
	}
	return white
}

// Apply thresholds img in place
func (f *BlackWhiteFilter) Apply(img *image.RGBA) {
	slog.Debug("BlackWhiteFilter: applying",
		"width", img.Rect.Dx(),
		"height", img.Rect.Dy(),
		"acceptance", f.acceptance,
		"threshold", f.Threshold())
	quantize(img, f.Classify)
}

func init() {
	if err := filterstructure.DefaultRegistry.Register(filterstructure.BlackWhite, NewBlackWhiteFilter); err != nil {
		panic(fmt.Sprintf("failed to register BlackWhiteFilter: %v", err))
	}
}
