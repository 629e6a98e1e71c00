package filterstructure

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultAcceptance is used by black_white when no acceptance is given
	DefaultAcceptance = 75.0
	MinAcceptance     = 0.0
	MaxAcceptance     = 200.0
)

// ErrInvalidAcceptance is returned for acceptance values outside [0, 200]
var ErrInvalidAcceptance = errors.New("acceptance must be between 0 and 200")

// Args holds the optional transform arguments shared by all filters.
// A nil field means "use the default".
type Args struct {
	Acceptance *float64 // black_white threshold in percent of the tolerance
}

// AcceptanceOrDefault returns the configured acceptance or DefaultAcceptance
func (a Args) AcceptanceOrDefault() float64 {
	if a.Acceptance == nil {
		return DefaultAcceptance
	}
	return *a.Acceptance
}

// WithAcceptance returns a copy of a with the acceptance set
func (a Args) WithAcceptance(acceptance float64) Args {
	a.Acceptance = &acceptance
	return a
}

// Validate checks every set argument against its allowed range
func (a Args) Validate() error {
	if a.Acceptance != nil {
		v := *a.Acceptance
		if math.IsNaN(v) || v < MinAcceptance || v > MaxAcceptance {
			return fmt.Errorf("%w, got %g", ErrInvalidAcceptance, v)
		}
	}
	return nil
}

// ParseArgs builds Args from an ordered list of positional values.
// Position 0 is the acceptance; an empty string leaves it unset.
func ParseArgs(values []string) (Args, error) {
	var args Args
	if len(values) > 0 {
		raw := strings.TrimSpace(values[0])
		if raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Args{}, fmt.Errorf("invalid acceptance %q: %w", raw, err)
			}
			args = args.WithAcceptance(v)
		}
	}
	if err := args.Validate(); err != nil {
		return Args{}, err
	}
	return args, nil
}

// NewArgsFromMap builds Args from a generic map, as produced by YAML or JSON decoding
func NewArgsFromMap(params map[string]any) (Args, error) {
	var args Args
	if raw, ok := params["acceptance"]; ok && raw != nil && GetStringParam(params, "acceptance", "-") != "" {
		v, ok := GetFloatParam(params, "acceptance")
		if !ok {
			return Args{}, fmt.Errorf("acceptance must be a number")
		}
		args = args.WithAcceptance(v)
	}
	if err := args.Validate(); err != nil {
		return Args{}, err
	}
	return args, nil
}
