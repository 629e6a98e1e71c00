package filters

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
)

// GrayBands splits the channel sum into six steps of evenly spaced grays.
// The shade count is fixed.
var GrayBands = BandTable{
	{Max: 100, Color: gray(0)},
	{Max: 200, Color: gray(51)},
	{Max: 300, Color: gray(102)},
	{Max: 400, Color: gray(153)},
	{Max: 500, Color: gray(204)},
	{Max: MaxChannelSum, Color: gray(255)},
}

// GrayScaleFilter reduces an image to six shades of gray
type GrayScaleFilter struct{}

// NewGrayScaleFilter creates a gray_scale filter; it takes no arguments
func NewGrayScaleFilter(args filterstructure.Args) (filterstructure.Filter, error) {
	return &GrayScaleFilter{}, nil
}

// Name returns the filter selector
func (f *GrayScaleFilter) Name() filterstructure.Selector {
	return filterstructure.GrayScale
}

// Apply converts img to six-shade gray in place
func (f *GrayScaleFilter) Apply(img *image.RGBA) {
	slog.Debug("GrayScaleFilter: applying",
		"width", img.Rect.Dx(),
		"height", img.Rect.Dy())
	quantize(img, GrayBands.Lookup)
}

func init() {
	if err := filterstructure.DefaultRegistry.Register(filterstructure.GrayScale, NewGrayScaleFilter); err != nil {
		panic(fmt.Sprintf("failed to register GrayScaleFilter: %v", err))
	}
}
