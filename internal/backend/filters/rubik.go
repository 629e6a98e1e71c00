package filters

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
)

// RubikBands posterizes to the six colors of a Rubik's cube:
// blue, red, orange, green, yellow, white.
var RubikBands = BandTable{
	{Max: 127, Color: opaque(0, 0, 200)},
	{Max: 254, Color: opaque(200, 0, 0)},
	{Max: 381, Color: opaque(255, 128, 0)},
	{Max: 428, Color: opaque(0, 255, 0)},
	{Max: 555, Color: opaque(255, 255, 0)},
	{Max: MaxChannelSum, Color: white},
}

// RubikFilter renders an image that could be rebuilt from Rubik's cube faces
type RubikFilter struct{}

// NewRubikFilter creates a rubik filter; it takes no arguments
func NewRubikFilter(args filterstructure.Args) (filterstructure.Filter, error) {
	return &RubikFilter{}, nil
}

// Name returns the filter selector
func (f *RubikFilter) Name() filterstructure.Selector {
	return filterstructure.Rubik
}

// Apply posterizes img in place
func (f *RubikFilter) Apply(img *image.RGBA) {
	slog.Debug("RubikFilter: applying",
		"width", img.Rect.Dx(),
		"height", img.Rect.Dy())
	quantize(img, RubikBands.Lookup)
}

func init() {
	if err := filterstructure.DefaultRegistry.Register(filterstructure.Rubik, NewRubikFilter); err != nil {
		panic(fmt.Sprintf("failed to register RubikFilter: %v", err))
	}
}
