// Package adjust keeps a chart's rendered points in step with its viewport.
//
// A Binding owns one dataset's full-resolution series and the Strategy used
// to reduce it. Every Update windows the series to the chart's current
// horizontal viewport and decimates that window, so zooming in reveals
// detail that the overview had averaged away.
package adjust

import (
	"log/slog"
	"strconv"
	"sync"

	"github.com/BYTE-6D65/bigchart/pkg/chart"
	"github.com/BYTE-6D65/bigchart/pkg/clock"
	"github.com/BYTE-6D65/bigchart/pkg/event"
	"github.com/BYTE-6D65/bigchart/pkg/series"
	"github.com/BYTE-6D65/bigchart/pkg/statemachine"
	"github.com/BYTE-6D65/bigchart/pkg/telemetry"
	"github.com/BYTE-6D65/bigchart/pkg/viewport"
)

// Binding lifecycle states and the event that moves between them.
const (
	StateInitial  statemachine.State = "initial"
	StateAdjusted statemachine.State = "adjusted"

	EventGesture statemachine.Event = "gesture"
)

// lifecycle has no terminal state: a pair lives until its chart is destroyed.
var lifecycle = statemachine.MustDefinition(StateInitial,
	statemachine.Transition{From: StateInitial, To: StateAdjusted, Event: EventGesture},
	statemachine.Transition{From: StateAdjusted, To: StateAdjusted, Event: EventGesture},
)

type pairKey struct {
	chart chart.Handle
	id    string
}

// Binding ties a full series to a decimation strategy.
type Binding struct {
	full     []series.Datapoint
	strategy Strategy
	name     string
	metrics  *telemetry.Metrics
	logger   *slog.Logger
	journal  *event.Journal
	clock    clock.Clock

	mu     sync.Mutex
	work   []series.Datapoint // positioned copy, Positioner strategies only
	states map[pairKey]*statemachine.Machine
}

// Option configures a Binding.
type Option func(*Binding)

// WithMetrics records decimation sizes, durations and update counts.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(b *Binding) {
		b.metrics = m
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Binding) {
		b.logger = l
	}
}

// WithJournal records an Update event for every successful update.
func WithJournal(j *event.Journal) Option {
	return func(b *Binding) {
		b.journal = j
	}
}

// WithClock stamps journal events. The default is the system clock.
func WithClock(c clock.Clock) Option {
	return func(b *Binding) {
		b.clock = c
	}
}

// WithName labels the binding in logs and errors.
func WithName(name string) Option {
	return func(b *Binding) {
		b.name = name
	}
}

// Bind creates a Binding over full, which must be ordered by X. full is
// retained and must not be modified afterwards.
func Bind(full []series.Datapoint, strategy Strategy, opts ...Option) *Binding {
	b := &Binding{
		full:     full,
		strategy: strategy,
		logger:   slog.Default(),
		clock:    clock.NewSystemClock(),
		states:   make(map[pairKey]*statemachine.Machine),
	}
	for _, opt := range opts {
		opt(b)
	}
	if _, ok := strategy.(Positioner); ok {
		b.work = series.Clone(full)
	}
	return b
}

// Strategy returns the strategy the binding decimates with.
func (b *Binding) Strategy() Strategy {
	return b.strategy
}

// Full returns the full-resolution series. It must not be modified.
func (b *Binding) Full() []series.Datapoint {
	return b.full
}

// Initial returns the decimation shown before the chart has a viewport.
func (b *Binding) Initial() ([]series.Datapoint, error) {
	out, err := b.strategy.Initial(b.full)
	if err != nil {
		return nil, NewUpdateError(b.displayName("initial"), b.strategy.Name(), err)
	}
	return out, nil
}

// Update replaces the buffer of dataset id on c with the decimated window
// under c's horizontal viewport, and marks the (c, id) pair Adjusted.
// Handles must be comparable, which pointer receivers are.
func (b *Binding) Update(c chart.Handle, id string) error {
	timer := telemetry.NewTimer()
	machine := b.machine(c, id)
	prior := machine.Current()

	points, in, fill, err := b.compute(c)
	if err != nil {
		err = NewUpdateError(b.displayName(id), b.strategy.Name(), err)
		b.metrics.RecordUpdate(b.strategy.Name(), string(prior), err)
		b.logger.Warn("dataset update failed",
			slog.String("dataset", b.displayName(id)),
			slog.String("strategy", b.strategy.Name()),
			slog.Any("error", err))
		return err
	}

	c.SetDatasetBuffer(id, points)
	if fill != nil {
		if fs, ok := c.(chart.FillSetter); ok {
			fs.SetFillTarget(id, *fill)
		}
	}
	machine.Trigger(EventGesture)

	b.metrics.ObserveDecimation(b.strategy.Name(), in, len(points), timer.Elapsed())
	b.metrics.RecordUpdate(b.strategy.Name(), string(prior), nil)
	b.record(c, id, len(points))
	b.logger.Debug("dataset updated",
		slog.String("dataset", b.displayName(id)),
		slog.String("strategy", b.strategy.Name()),
		slog.Int("visible", in),
		slog.Int("rendered", len(points)))
	return nil
}

func (b *Binding) record(c chart.Handle, id string, rendered int) {
	if b.journal == nil {
		return
	}
	idx := -1
	if ix, ok := c.(chart.Indexed); ok {
		if i, ok := ix.LinkIndex(); ok {
			idx = i
		}
	}
	evt := event.New(event.Update, idx, b.clock.Now(), c.ViewportX()).
		WithMetadata("dataset", id).
		WithMetadata("strategy", b.strategy.Name()).
		WithMetadata("points", strconv.Itoa(rendered))
	if named, ok := c.(chart.Named); ok {
		evt.Source = named.Name()
	}
	b.journal.Append(evt)
}

// compute decimates the visible window. fill is the new fill boundary for
// Positioner strategies and nil otherwise.
func (b *Binding) compute(c chart.Handle) (points []series.Datapoint, in int, fill *float64, err error) {
	vx := c.ViewportX()

	p, ok := b.strategy.(Positioner)
	if !ok {
		points, in, err = b.reduce(viewport.VisibleSlice(b.full, vx.Min, vx.Max), vx)
		return points, in, nil, err
	}

	y, f, err := p.Position(c.ViewportY())
	if err != nil {
		return nil, 0, nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.work {
		if !b.work[i].IsGap() {
			b.work[i].Y = y
		}
	}
	points, in, err = b.reduce(viewport.VisibleSlice(b.work, vx.Min, vx.Max), vx)
	if err != nil {
		return nil, 0, nil, err
	}
	if in == len(points) {
		// passed through: detach from work, which the next update rewrites
		points = series.Clone(points)
	}
	return points, in, &f, nil
}

func (b *Binding) reduce(window []series.Datapoint, vx series.Range) ([]series.Datapoint, int, error) {
	if len(window) <= b.strategy.MaxPoints() {
		return window, len(window), nil
	}
	out, err := b.strategy.Decimate(window, vx)
	return out, len(window), err
}

// State returns the lifecycle state of dataset id on c. Pairs never updated
// are StateInitial.
func (b *Binding) State(c chart.Handle, id string) statemachine.State {
	b.mu.Lock()
	m, ok := b.states[pairKey{c, id}]
	b.mu.Unlock()
	if !ok {
		return lifecycle.Initial()
	}
	return m.Current()
}

// Forget drops the lifecycle state kept for c, as when it is destroyed.
func (b *Binding) Forget(c chart.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k := range b.states {
		if k.chart == c {
			delete(b.states, k)
		}
	}
}

func (b *Binding) machine(c chart.Handle, id string) *statemachine.Machine {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := pairKey{c, id}
	m, ok := b.states[k]
	if !ok {
		m = lifecycle.New()
		m.OnTransition(func(from, to statemachine.State, _ statemachine.Event) {
			if from != to {
				b.logger.Debug("dataset adjusted",
					slog.String("dataset", b.displayName(id)),
					slog.String("from", string(from)),
					slog.String("to", string(to)))
			}
		})
		b.states[k] = m
	}
	return m
}

func (b *Binding) displayName(id string) string {
	if b.name != "" {
		return b.name
	}
	return id
}
