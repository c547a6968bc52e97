package series

import (
	"fmt"
	"math"
)

// Range is an immutable closed interval with Min <= Max.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DefaultRange is returned by CommonRange when there is nothing to measure.
var DefaultRange = Range{Min: 0, Max: 1}

// NewRange validates min <= max.
func NewRange(min, max float64) (Range, error) {
	if min > max {
		return Range{}, fmt.Errorf("%w: min (%g) must be <= max (%g)", ErrInvalidRange, min, max)
	}
	return Range{Min: min, Max: max}, nil
}

// MustRange is NewRange for constants known to be valid. It panics otherwise.
func MustRange(min, max float64) Range {
	r, err := NewRange(min, max)
	if err != nil {
		panic(err)
	}
	return r
}

// Span returns Max - Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Contains reports whether v lies inside the closed interval.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}

// RangeOf returns the min/max of the non-NaN values. The boolean is false
// when no values remain.
func RangeOf(values []float64) (Range, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	found := false
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		found = true
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if !found {
		return Range{}, false
	}
	return Range{Min: lo, Max: hi}, true
}

// CommonRange returns the union of the ranges of every series. Series with
// no values are ignored; if none has values the result is DefaultRange.
//
//	prices := [][]float64{apple, nvidia, amd}
//	r := series.CommonRange(prices)
func CommonRange(seriesList [][]float64) Range {
	var (
		out   Range
		found bool
	)
	for _, values := range seriesList {
		r, ok := RangeOf(values)
		if !ok {
			continue
		}
		if !found {
			out, found = r, true
			continue
		}
		out.Min = min(out.Min, r.Min)
		out.Max = max(out.Max, r.Max)
	}
	if !found {
		return DefaultRange
	}
	return out
}

// ParameterizedPosition returns the point at proportion t in [0,1] along r.
func ParameterizedPosition(t float64, r Range) (float64, error) {
	if !(t >= 0 && t <= 1) {
		return 0, fmt.Errorf("%w: got %g", ErrInvalidProportion, t)
	}
	return r.Min + t*(r.Max-r.Min), nil
}
