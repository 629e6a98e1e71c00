package filterstructure

import (
	"fmt"
	"sort"
)

// FilterRegistry manages the registration and creation of quantization filters
type FilterRegistry struct {
	factories map[Selector]FilterFactory
}

// NewFilterRegistry creates a new, empty filter registry
func NewFilterRegistry() *FilterRegistry {
	return &FilterRegistry{
		factories: make(map[Selector]FilterFactory),
	}
}

// Register adds a filter factory to the registry
func (r *FilterRegistry) Register(selector Selector, factory FilterFactory) error {
	if selector == "" {
		return fmt.Errorf("filter name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("filter factory cannot be nil")
	}
	if _, exists := r.factories[selector]; exists {
		return fmt.Errorf("filter %s is already registered", selector)
	}
	r.factories[selector] = factory
	return nil
}

// Create instantiates a filter by selector with the given arguments
func (r *FilterRegistry) Create(selector Selector, args Args) (Filter, error) {
	factory, exists := r.factories[selector]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, selector)
	}

	filter, err := factory(args)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter %s: %w", selector, err)
	}

	return filter, nil
}

// IsRegistered checks if a filter with the given selector is registered
func (r *FilterRegistry) IsRegistered(selector Selector) bool {
	_, exists := r.factories[selector]
	return exists
}

// GetRegisteredNames returns the registered selectors sorted by name
func (r *FilterRegistry) GetRegisteredNames() []Selector {
	names := make([]Selector, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// DefaultRegistry is the global registry the filters package registers into
var DefaultRegistry = NewFilterRegistry()
