package filterstructure

import (
	"errors"
	"fmt"
	"image"
	"strings"
)

// ErrUnknownFilter is returned when a filter name does not match any selector
var ErrUnknownFilter = errors.New("unknown filter")

// Selector names one of the built-in quantization filters
type Selector string

const (
	Rubik      Selector = "rubik"
	BlackWhite Selector = "black_white"
	GrayScale  Selector = "gray_scale"
)

// Selectors lists every built-in selector in a stable order
var Selectors = []Selector{Rubik, BlackWhite, GrayScale}

// ParseSelector maps a case-insensitive filter name to its Selector
func ParseSelector(name string) (Selector, error) {
	s := Selector(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Selectors {
		if s == known {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, name)
}

func (s Selector) String() string {
	return string(s)
}

// Filter rewrites every pixel of an RGB image in place.
// Implementations must only read the pixel they are about to replace.
type Filter interface {
	Name() Selector
	Apply(img *image.RGBA)
}

// FilterFactory creates a filter from its transform arguments
type FilterFactory func(args Args) (Filter, error)
