// Package viewport extracts the part of a full series that a chart's
// horizontal viewport currently shows.
package viewport

import (
	"sort"

	"github.com/BYTE-6D65/bigchart/pkg/series"
)

// VisibleSlice returns the smallest contiguous run of full covering
// [min, max], widened by one point on each side when such a point exists:
// the last point with X < min and the first point with X > max. Lines drawn
// from the slice therefore run to the viewport edges instead of stopping at
// the last sample inside it.
//
// full must be ordered by non-decreasing X. The result aliases full and must
// not be modified. It is never empty for non-empty input.
func VisibleSlice(full []series.Datapoint, min, max float64) []series.Datapoint {
	n := len(full)
	if n == 0 {
		return full
	}

	// last index with X < min, or 0
	start := sort.Search(n, func(i int) bool { return full[i].X >= min }) - 1
	if start < 0 {
		start = 0
	}

	// first index with X > max, inclusive; runs to the end when there is none
	end := sort.Search(n, func(i int) bool { return full[i].X > max })
	if end < n {
		end++
	}

	if end <= start {
		// inverted window: keep the boundary point
		return full[start : start+1]
	}
	return full[start:end]
}

// Bounds returns the X extent of full. The boolean is false for an empty series.
func Bounds(full []series.Datapoint) (series.Range, bool) {
	if len(full) == 0 {
		return series.Range{}, false
	}
	return series.Range{Min: full[0].X, Max: full[len(full)-1].X}, true
}
