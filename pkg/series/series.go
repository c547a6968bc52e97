// Package series holds the point and range types shared by every other
// package, plus the small numeric helpers used to build and compress
// full-resolution series.
package series

import (
	"math"

	"github.com/go-json-experiment/json"
)

// Datapoint is a single (x, y) sample. A NaN Y marks a gap.
type Datapoint struct {
	X float64
	Y float64
}

// Point returns a datapoint with a value.
func Point(x, y float64) Datapoint {
	return Datapoint{X: x, Y: y}
}

// Gap returns a datapoint with no value at x.
func Gap(x float64) Datapoint {
	return Datapoint{X: x, Y: math.NaN()}
}

// IsGap reports whether the point carries no value.
func (p Datapoint) IsGap() bool {
	return math.IsNaN(p.Y)
}

// SameY reports whether two points have the same Y, treating two gaps as equal.
func (p Datapoint) SameY(o Datapoint) bool {
	if p.IsGap() || o.IsGap() {
		return p.IsGap() && o.IsGap()
	}
	return p.Y == o.Y
}

type jsonPoint struct {
	X float64  `json:"x"`
	Y *float64 `json:"y"`
}

// MarshalJSON encodes the point as {"x":..,"y":..} with a null y for gaps.
func (p Datapoint) MarshalJSON() ([]byte, error) {
	jp := jsonPoint{X: p.X}
	if !p.IsGap() {
		y := p.Y
		jp.Y = &y
	}
	return json.Marshal(jp)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (p *Datapoint) UnmarshalJSON(data []byte) error {
	var jp jsonPoint
	if err := json.Unmarshal(data, &jp); err != nil {
		return err
	}
	p.X = jp.X
	if jp.Y == nil {
		p.Y = math.NaN()
	} else {
		p.Y = *jp.Y
	}
	return nil
}

// Zip pairs xs with ys. NaN values in ys become gaps.
func Zip(xs, ys []float64) ([]Datapoint, error) {
	if len(xs) != len(ys) {
		return nil, lengthMismatch(len(xs), len(ys))
	}
	out := make([]Datapoint, len(xs))
	for i := range xs {
		out[i] = Datapoint{X: xs[i], Y: ys[i]}
	}
	return out, nil
}

// SkipRepeats drops interior points whose Y equals both neighbours' Y.
// The first and last points are always kept and the input is not modified.
func SkipRepeats(points []Datapoint) []Datapoint {
	if len(points) < 3 {
		return points
	}
	out := make([]Datapoint, 0, len(points))
	out = append(out, points[0])
	for i := 1; i < len(points)-1; i++ {
		if points[i].SameY(points[i-1]) && points[i].SameY(points[i+1]) {
			continue
		}
		out = append(out, points[i])
	}
	return append(out, points[len(points)-1])
}

// Clone returns a copy of points that can be modified freely.
func Clone(points []Datapoint) []Datapoint {
	out := make([]Datapoint, len(points))
	copy(out, points)
	return out
}

// Values returns the Y values of points, gaps included as NaN.
func Values(points []Datapoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Y
	}
	return out
}
