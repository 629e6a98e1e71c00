package filters

import (
	"image"

	"github.com/jo-hoe/goquantize/internal/backend/filterstructure"
)

// New creates the filter named by selector from the default registry
func New(selector filterstructure.Selector, args filterstructure.Args) (filterstructure.Filter, error) {
	return filterstructure.DefaultRegistry.Create(selector, args)
}

// Apply creates the filter named by selector and runs it on img
func Apply(img *image.RGBA, selector filterstructure.Selector, args filterstructure.Args) error {
	filter, err := New(selector, args)
	if err != nil {
		return err
	}
	filter.Apply(img)
	return nil
}
