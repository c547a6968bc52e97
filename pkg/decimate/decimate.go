// Package decimate reduces full-resolution series to a bounded number of
// representative points.
//
// Every function derives its working constants (stride, bin width) from the
// slice it is given, never from the series it was cut from. Calling it again
// on a narrower visible window therefore adapts the resolution to the zoom
// level.
package decimate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/BYTE-6D65/bigchart/pkg/series"
)

// DefaultLength is the number of points rendered before decimation engages.
const DefaultLength = 2000

// Options enumerates the tunables recognised by the decimation functions.
// Zero values select the documented defaults.
type Options struct {
	// Stride is the number of consecutive points merged into one output
	// point. 0 means ceil(len/DefaultLength).
	Stride int

	// MaxPoints is the length at or below which the input is returned
	// unchanged. 0 means DefaultLength (DefaultLength/2 for alerts).
	MaxPoints int

	// ChunkWidth is the alert bin width in X units. 0 means
	// (last.X-first.X)/(DefaultLength/2).
	ChunkWidth float64

	// Rand drives RandomDrop. nil uses the math/rand/v2 global source.
	Rand *rand.Rand
}

// Kind names a decimation algorithm.
type Kind int

const (
	KindAverage Kind = iota + 1
	KindRandomDrop
	KindAlerts
)

var kindNames = [...]string{
	KindAverage:    "average",
	KindRandomDrop: "random-drop",
	KindAlerts:     "alerts",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a name produced by Kind.String back to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if k > 0 && name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("decimate: unknown kind %q", s)
}

// AutoStride returns ceil(n/maxPoints), the stride that brings n points
// down to at most maxPoints.
func AutoStride(n, maxPoints int) int {
	if maxPoints <= 0 {
		maxPoints = DefaultLength
	}
	return int(math.Ceil(float64(n) / float64(maxPoints)))
}

func (o Options) stride(n int) int {
	if o.Stride != 0 {
		return o.Stride
	}
	return AutoStride(n, DefaultLength)
}

func (o Options) maxPoints(def int) int {
	if o.MaxPoints > 0 {
		return o.MaxPoints
	}
	return def
}

// Average replaces each chunk of stride points by a single point at the
// mean X and the mean of the chunk's non-gap Y values (a gap when the chunk
// has none). The output has ceil(len/stride) points.
func Average(points []series.Datapoint, opts Options) []series.Datapoint {
	stride := opts.stride(len(points))
	if stride <= 1 || len(points) <= opts.maxPoints(DefaultLength) {
		return points
	}

	out := make([]series.Datapoint, 0, AutoStride(len(points), stride))
	for i := 0; i < len(points); i += stride {
		chunk := points[i:min(i+stride, len(points))]

		var sumX, sumY float64
		valid := 0
		for _, p := range chunk {
			sumX += p.X
			if !p.IsGap() {
				sumY += p.Y
				valid++
			}
		}

		x := sumX / float64(len(chunk))
		if valid == 0 {
			out = append(out, series.Gap(x))
			continue
		}
		out = append(out, series.Point(x, sumY/float64(valid)))
	}
	return out
}

// RandomDrop keeps one point per chunk of stride points. The kept point is
// drawn uniformly from the chunk's non-gap points, or from the whole chunk
// when every point is a gap. Values are preserved exactly.
//
// Output is non-deterministic unless opts.Rand is seeded.
func RandomDrop(points []series.Datapoint, opts Options) []series.Datapoint {
	stride := opts.stride(len(points))
	if stride <= 1 || len(points) <= opts.maxPoints(DefaultLength) {
		return points
	}

	intN := rand.IntN
	if opts.Rand != nil {
		intN = opts.Rand.IntN
	}

	out := make([]series.Datapoint, 0, AutoStride(len(points), stride))
	valid := make([]series.Datapoint, 0, stride)
	for i := 0; i < len(points); i += stride {
		chunk := points[i:min(i+stride, len(points))]

		valid = valid[:0]
		for _, p := range chunk {
			if !p.IsGap() {
				valid = append(valid, p)
			}
		}

		if len(valid) == 0 {
			out = append(out, chunk[intN(len(chunk))])
			continue
		}
		out = append(out, valid[intN(len(valid))])
	}
	return out
}
