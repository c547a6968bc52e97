package chart

import (
	"slices"
	"sync"

	"github.com/BYTE-6D65/bigchart/pkg/series"
)

// Memory is a Handle that keeps everything in memory. Tests use it directly
// and the terminal and PNG charts embed it for their state.
type Memory struct {
	mu sync.RWMutex

	name        string
	x, y        series.Range
	buffers     map[string][]series.Datapoint
	order       []string
	fills       map[string]float64
	onPan       []func()
	onZoom      []func()
	redraws     int
	index       int
	hasIndex    bool
	untracked   bool
	interactive bool
	destroyed   bool
}

// MemoryOption configures a Memory chart.
type MemoryOption func(*Memory)

// Static marks the chart as not supporting pan and zoom.
func Static() MemoryOption {
	return func(m *Memory) {
		m.interactive = false
	}
}

// Untracked makes the chart drop sync-group back-references, as charts
// without per-chart option storage do.
func Untracked() MemoryOption {
	return func(m *Memory) {
		m.untracked = true
	}
}

// NewMemory creates a chart showing x horizontally and y vertically.
func NewMemory(name string, x, y series.Range, opts ...MemoryOption) *Memory {
	m := &Memory{
		name:        name,
		x:           x,
		y:           y,
		buffers:     make(map[string][]series.Datapoint),
		fills:       make(map[string]float64),
		interactive: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the chart's display name.
func (m *Memory) Name() string {
	return m.name
}

func (m *Memory) ViewportX() series.Range {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.x
}

func (m *Memory) ViewportY() series.Range {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.y
}

func (m *Memory) SetViewportX(min, max float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.x = series.Range{Min: min, Max: max}
}

// SetViewportY replaces the vertical range.
func (m *Memory) SetViewportY(min, max float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.y = series.Range{Min: min, Max: max}
}

func (m *Memory) SetDatasetBuffer(id string, points []series.Datapoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buffers[id]; !ok {
		m.order = append(m.order, id)
	}
	m.buffers[id] = points
}

func (m *Memory) SetFillTarget(id string, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fills[id] = y
}

func (m *Memory) Redraw() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redraws++
}

func (m *Memory) OnPanComplete(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPan = append(m.onPan, cb)
}

func (m *Memory) OnZoomComplete(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onZoom = append(m.onZoom, cb)
}

func (m *Memory) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyed = true
	m.onPan = nil
	m.onZoom = nil
}

func (m *Memory) Interactive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.interactive
}

func (m *Memory) LinkIndex() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.index, m.hasIndex
}

func (m *Memory) SetLinkIndex(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.untracked {
		return
	}
	m.index, m.hasIndex = idx, true
}

// Pan shifts the horizontal viewport by dx and fires the pan callbacks.
func (m *Memory) Pan(dx float64) {
	m.mu.Lock()
	m.x = series.Range{Min: m.x.Min + dx, Max: m.x.Max + dx}
	m.mu.Unlock()
	m.fire(false)
}

// PanTo moves the horizontal viewport to [min, max] and fires the pan
// callbacks.
func (m *Memory) PanTo(min, max float64) {
	m.SetViewportX(min, max)
	m.fire(false)
}

// Zoom scales the horizontal span by 1/factor around center and fires the
// zoom callbacks. Factors above 1 zoom in. Non-positive factors are ignored.
func (m *Memory) Zoom(factor, center float64) {
	if !(factor > 0) {
		return
	}
	m.mu.Lock()
	lo := center - (center-m.x.Min)/factor
	hi := center + (m.x.Max-center)/factor
	m.x = series.Range{Min: lo, Max: hi}
	m.mu.Unlock()
	m.fire(true)
}

// ZoomTo sets the horizontal viewport to [min, max] and fires the zoom
// callbacks.
func (m *Memory) ZoomTo(min, max float64) {
	m.SetViewportX(min, max)
	m.fire(true)
}

// PanY shifts the vertical viewport by dy and fires the pan callbacks.
func (m *Memory) PanY(dy float64) {
	m.mu.Lock()
	m.y = series.Range{Min: m.y.Min + dy, Max: m.y.Max + dy}
	m.mu.Unlock()
	m.fire(false)
}

// ZoomY scales the vertical span by 1/factor around center and fires the
// zoom callbacks. Non-positive factors are ignored.
func (m *Memory) ZoomY(factor, center float64) {
	if !(factor > 0) {
		return
	}
	m.mu.Lock()
	lo := center - (center-m.y.Min)/factor
	hi := center + (m.y.Max-center)/factor
	m.y = series.Range{Min: lo, Max: hi}
	m.mu.Unlock()
	m.fire(true)
}

func (m *Memory) fire(zoom bool) {
	m.mu.RLock()
	cbs := m.onPan
	if zoom {
		cbs = m.onZoom
	}
	cbs = slices.Clone(cbs)
	m.mu.RUnlock()

	for _, cb := range cbs {
		cb()
	}
}

// Buffer returns the points last set for id.
func (m *Memory) Buffer(id string) []series.Datapoint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buffers[id]
}

// Datasets returns dataset IDs in the order they were first set.
func (m *Memory) Datasets() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}

// Fill returns the fill boundary set for id.
func (m *Memory) Fill(id string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	y, ok := m.fills[id]
	return y, ok
}

// Redraws returns how many times Redraw was called.
func (m *Memory) Redraws() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.redraws
}

// Destroyed reports whether Destroy was called.
func (m *Memory) Destroyed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.destroyed
}

var (
	_ Handle      = (*Memory)(nil)
	_ Indexed     = (*Memory)(nil)
	_ Interactive = (*Memory)(nil)
	_ FillSetter  = (*Memory)(nil)
	_ Named       = (*Memory)(nil)
)
