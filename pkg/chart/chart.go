// Package chart defines the drawing-engine surface that bindings and the
// sync manager talk to, plus an in-memory implementation of it.
package chart

import "github.com/BYTE-6D65/bigchart/pkg/series"

// Handle is the part of a chart the decimation and sync layers use. The
// drawing engine behind it is free to do anything else.
type Handle interface {
	// ViewportX returns the current horizontal data range.
	ViewportX() series.Range

	// ViewportY returns the current vertical data range.
	ViewportY() series.Range

	// SetViewportX replaces the horizontal range without firing gesture
	// callbacks.
	SetViewportX(min, max float64)

	// SetDatasetBuffer replaces the points rendered for a dataset.
	SetDatasetBuffer(id string, points []series.Datapoint)

	// Redraw requests a repaint.
	Redraw()

	// OnPanComplete registers cb to run after a user pan finishes.
	OnPanComplete(cb func())

	// OnZoomComplete registers cb to run after a user zoom finishes.
	OnZoomComplete(cb func())

	// Destroy releases the chart.
	Destroy()
}

// Indexed is implemented by charts that can carry a back-reference to their
// entry in a sync group.
type Indexed interface {
	// LinkIndex returns the stored index. ok is false when none was set.
	LinkIndex() (idx int, ok bool)

	// SetLinkIndex stores idx on the chart.
	SetLinkIndex(idx int)
}

// Interactive is implemented by charts that may or may not support pan and
// zoom. Charts that do not implement it are assumed to.
type Interactive interface {
	Interactive() bool
}

// FillSetter is implemented by charts that can fill the area between a
// dataset's line and a horizontal boundary.
type FillSetter interface {
	SetFillTarget(id string, y float64)
}

// Named is implemented by charts with a display name.
type Named interface {
	Name() string
}

// SupportsGestures reports whether h can deliver pan and zoom callbacks.
func SupportsGestures(h Handle) bool {
	if i, ok := h.(Interactive); ok {
		return i.Interactive()
	}
	return true
}
