// Package linked keeps a group of charts looking at the same horizontal
// range.
//
// When the user finishes a pan or zoom on one chart, that chart's datasets
// are recomputed straight away. On the next frame the new range is written
// into every other chart of the group, which then recompute theirs. Peers
// are updated directly, never by replaying a gesture, so a propagation
// cannot trigger another one.
package linked

import (
	"log/slog"
	"sync"

	"github.com/BYTE-6D65/bigchart/pkg/chart"
	"github.com/BYTE-6D65/bigchart/pkg/clock"
	"github.com/BYTE-6D65/bigchart/pkg/event"
	"github.com/BYTE-6D65/bigchart/pkg/frame"
	"github.com/BYTE-6D65/bigchart/pkg/registry"
	"github.com/BYTE-6D65/bigchart/pkg/telemetry"
)

// UpdateFunc recomputes every dataset a chart shows for its current
// viewport.
type UpdateFunc func(c chart.Handle) error

// Entry is one registered chart.
type Entry struct {
	Chart  chart.Handle
	Update UpdateFunc
}

// Manager is a sync group.
type Manager struct {
	loop    *frame.Loop
	clock   clock.Clock
	entries *registry.Ordered[Entry]
	journal *event.Journal
	metrics *telemetry.Metrics
	logger  *slog.Logger

	mu        sync.Mutex
	installed map[chart.Handle]bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithJournal records gestures and propagations in j.
func WithJournal(j *event.Journal) Option {
	return func(m *Manager) {
		m.journal = j
	}
}

// WithMetrics counts gestures and propagations.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithClock sets the clock used to timestamp journal entries.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) {
		m.clock = c
	}
}

// New creates an empty group that defers propagation through loop.
func New(loop *frame.Loop, opts ...Option) *Manager {
	m := &Manager{
		loop:      loop,
		entries:   registry.NewOrdered[Entry](),
		logger:    slog.Default(),
		installed: make(map[chart.Handle]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = clock.NewSystemClock()
	}
	return m
}

// Register adds c to the group and returns its index. Charts that can hold
// a back-reference and do not have one yet are given this index.
func (m *Manager) Register(c chart.Handle, update UpdateFunc) int {
	idx := m.entries.Add(Entry{Chart: c, Update: update})
	if ix, ok := c.(chart.Indexed); ok {
		if _, set := ix.LinkIndex(); !set {
			ix.SetLinkIndex(idx)
		}
	}
	m.logger.Debug("chart registered", slog.Int("index", idx))
	return idx
}

// Entries returns the registered charts in index order.
func (m *Manager) Entries() []Entry {
	list := m.entries.List()
	out := make([]Entry, len(list))
	for i, e := range list {
		out[i] = e.Value
	}
	return out
}

// Len returns the number of registered charts.
func (m *Manager) Len() int {
	return m.entries.Len()
}

// Destroy destroys every registered chart once and empties the group.
func (m *Manager) Destroy() {
	seen := make(map[chart.Handle]bool)
	for _, e := range m.entries.List() {
		if seen[e.Value.Chart] {
			continue
		}
		seen[e.Value.Chart] = true
		e.Value.Chart.Destroy()
	}
	m.entries.Clear()

	m.mu.Lock()
	m.installed = make(map[chart.Handle]bool)
	m.mu.Unlock()
}

// AttachSync installs gesture handlers on the registered charts, in index
// order, once per chart. Installation stops at the first chart that cannot
// pan and zoom; charts after it stay unsynchronized. Calling it again only
// installs handlers on charts registered since.
func (m *Manager) AttachSync() {
	for _, e := range m.entries.List() {
		c := e.Value.Chart
		if !chart.SupportsGestures(c) {
			m.logger.Debug("chart without pan and zoom, stopping sync installation", slog.Int("index", e.Index))
			return
		}

		m.mu.Lock()
		done := m.installed[c]
		m.installed[c] = true
		m.mu.Unlock()
		if done {
			continue
		}

		c.OnPanComplete(func() { m.gesture(c, "pan") })
		c.OnZoomComplete(func() { m.gesture(c, "zoom") })
	}
}

func (m *Manager) gesture(src chart.Handle, kind string) {
	vx := src.ViewportX()
	evt := event.New(event.Gesture, m.indexOf(src), m.clock.Now(), vx)
	evt.Kind = kind
	evt.Source = nameOf(src)
	m.journal.Append(evt)
	m.metrics.RecordGesture(kind)
	m.logger.Debug("gesture completed",
		slog.String("kind", kind),
		slog.Int("chart", evt.Chart),
		slog.Float64("min", vx.Min),
		slog.Float64("max", vx.Max))

	m.updateOwn(src)
	m.synchronize(src, evt.ID)
}

// updateOwn runs the source chart's own entry, found by back-reference or,
// failing that, by identity.
func (m *Manager) updateOwn(src chart.Handle) {
	if ix, ok := src.(chart.Indexed); ok {
		if idx, ok := ix.LinkIndex(); ok {
			if e, ok := m.entries.Get(idx); ok {
				m.run(idx, e)
			}
			return
		}
	}
	for _, e := range m.entries.Find(func(e Entry) bool { return e.Chart == src }) {
		m.run(e.Index, e.Value)
	}
}

// synchronize mirrors the source's horizontal range to every other entry on
// the next frame. The range is read when the frame runs, after the source
// chart has finished its own update.
func (m *Manager) synchronize(src chart.Handle, cause string) {
	err := m.loop.RequestFrame(func(now clock.MonoTime) {
		vx := src.ViewportX()
		for _, e := range m.entries.List() {
			target := e.Value.Chart
			if target == src {
				continue
			}
			target.SetViewportX(vx.Min, vx.Max)
			target.Redraw()
			m.run(e.Index, e.Value)

			m.metrics.RecordPropagation()
			evt := event.New(event.Propagate, e.Index, now, vx).WithCausationID(cause)
			evt.Source = nameOf(target)
			m.journal.Append(evt)
		}
	})
	if err != nil {
		m.logger.Warn("propagation not scheduled", slog.Any("error", err))
	}
}

func (m *Manager) run(idx int, e Entry) {
	if e.Update == nil {
		return
	}
	if err := e.Update(e.Chart); err != nil {
		m.logger.Warn("chart update failed", slog.Int("chart", idx), slog.Any("error", err))
	}
}

func (m *Manager) indexOf(c chart.Handle) int {
	if ix, ok := c.(chart.Indexed); ok {
		if idx, ok := ix.LinkIndex(); ok {
			return idx
		}
	}
	if found := m.entries.Find(func(e Entry) bool { return e.Chart == c }); len(found) > 0 {
		return found[0].Index
	}
	return -1
}

func nameOf(c chart.Handle) string {
	if n, ok := c.(chart.Named); ok {
		return n.Name()
	}
	return ""
}
