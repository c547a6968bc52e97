// Package engine wires the frame loop, sync group, journal and metrics of a
// set of linked charts, configured from a config.Config.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BYTE-6D65/bigchart/pkg/chart"
	"github.com/BYTE-6D65/bigchart/pkg/clock"
	"github.com/BYTE-6D65/bigchart/pkg/config"
	"github.com/BYTE-6D65/bigchart/pkg/dataset"
	"github.com/BYTE-6D65/bigchart/pkg/event"
	"github.com/BYTE-6D65/bigchart/pkg/frame"
	"github.com/BYTE-6D65/bigchart/pkg/linked"
	"github.com/BYTE-6D65/bigchart/pkg/series"
	"github.com/BYTE-6D65/bigchart/pkg/telemetry"
)

// Engine owns the infrastructure shared by the charts of one view.
type Engine struct {
	cfg      config.Config
	clock    clock.Clock
	logger   *slog.Logger
	registry prometheus.Registerer
	metrics  *telemetry.Metrics
	journal  *event.Journal
	rand     *rand.Rand

	loop    *frame.Loop
	manager *linked.Manager
	groups  map[chart.Handle]dataset.Group
}

// EngineOption configures an Engine instance.
type EngineOption func(*Engine)

// WithConfig replaces config.DefaultConfig.
func WithConfig(cfg config.Config) EngineOption {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithClock sets the clock that stamps frames and journal entries.
func WithClock(clk clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clk
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRegistry registers the engine's metrics with reg instead of the
// Prometheus default registerer.
func WithRegistry(reg prometheus.Registerer) EngineOption {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithJournal sets the journal gestures and propagations are recorded in.
func WithJournal(j *event.Journal) EngineOption {
	return func(e *Engine) {
		e.journal = j
	}
}

// New creates an Engine. Defaults:
//   - Config: config.DefaultConfig
//   - Clock: SystemClock
//   - Logger: slog.Default
//   - Metrics: registered with the default registerer
//   - Journal: sized by Config.JournalCapacity
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		cfg:    config.DefaultConfig(),
		groups: make(map[chart.Handle]dataset.Group),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.clock == nil {
		e.clock = clock.NewSystemClock()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.registry == nil {
		e.metrics = telemetry.Default()
	} else {
		e.metrics = telemetry.InitMetrics(e.registry)
	}
	if e.journal == nil {
		e.journal = event.NewJournal(e.cfg.JournalCapacity)
	}
	if e.cfg.RandomSeed != 0 {
		e.rand = rand.New(rand.NewPCG(e.cfg.RandomSeed, e.cfg.RandomSeed))
	}

	e.loop = frame.New(
		frame.WithClock(e.clock),
		frame.WithPendingGauge(e.metrics.PendingGauge()),
	)
	e.manager = linked.New(e.loop,
		linked.WithClock(e.clock),
		linked.WithJournal(e.journal),
		linked.WithMetrics(e.metrics),
		linked.WithLogger(e.logger),
	)
	return e
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Clock returns the clock implementation.
func (e *Engine) Clock() clock.Clock {
	return e.clock
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Metrics returns the engine metrics.
func (e *Engine) Metrics() *telemetry.Metrics {
	return e.metrics
}

// Journal returns the gesture and propagation journal.
func (e *Engine) Journal() *event.Journal {
	return e.journal
}

// Loop returns the frame loop driving propagation.
func (e *Engine) Loop() *frame.Loop {
	return e.loop
}

// Manager returns the sync group.
func (e *Engine) Manager() *linked.Manager {
	return e.manager
}

func (e *Engine) plotOpts(limit int) []dataset.Option {
	return []dataset.Option{
		dataset.WithMaxPoints(limit),
		dataset.WithMetrics(e.metrics),
		dataset.WithLogger(e.logger),
		dataset.WithJournal(e.journal, e.clock),
	}
}

// Line builds an averaged line plot using the configured threshold.
func (e *Engine) Line(time, values []float64, label string, opts ...dataset.Option) (dataset.Plot, error) {
	return dataset.Line(time, values, label, append(e.plotOpts(e.cfg.AverageMaxPoints), opts...)...)
}

// Scatter builds a random-drop scatter plot, seeded when Config.RandomSeed
// is set.
func (e *Engine) Scatter(time, values []float64, label string, opts ...dataset.Option) (dataset.Plot, error) {
	return dataset.Scatter(time, values, label, e.rand, append(e.plotOpts(e.cfg.RandomMaxPoints), opts...)...)
}

// AlertBands builds one stacked band per alert code.
func (e *Engine) AlertBands(time, alerts, skip []float64, labels map[float64]string, opts ...dataset.Option) ([]dataset.Plot, error) {
	return dataset.AlertBands(time, alerts, skip, labels, append(e.plotOpts(e.cfg.AlertMaxPoints), opts...)...)
}

// FixedYAlertBands builds alert bands pinned to a proportion of the
// vertical viewport.
func (e *Engine) FixedYAlertBands(time, alerts, skip []float64, labels map[float64]string, initY, target series.Range, opts ...dataset.Option) ([]dataset.Plot, error) {
	return dataset.FixedYAlertBands(time, alerts, skip, labels, initY, target, append(e.plotOpts(e.cfg.AlertMaxPoints), opts...)...)
}

// Link shows group on c and adds c to the sync group. It returns the
// chart's index in the group.
func (e *Engine) Link(c chart.Handle, group dataset.Group) int {
	group.Attach(c)
	e.groups[c] = group
	idx := e.manager.Register(c, group.Update)
	e.logger.Info("chart linked",
		slog.Int("index", idx),
		slog.Int("datasets", len(group)),
	)
	return idx
}

// Group returns the plots linked to c.
func (e *Engine) Group(c chart.Handle) (dataset.Group, bool) {
	g, ok := e.groups[c]
	return g, ok
}

// Sync installs gesture handlers on every linked chart.
func (e *Engine) Sync() {
	e.manager.AttachSync()
}

// Post schedules fn on the frame loop, for gestures driven from outside
// the loop.
func (e *Engine) Post(fn func()) error {
	return e.loop.Post(fn)
}

// Settle runs the loop until nothing is queued.
func (e *Engine) Settle(ctx context.Context) error {
	return e.loop.RunUntilIdle(ctx)
}

// Run drives the loop at Config.FrameInterval until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	return e.loop.Run(ctx, e.cfg.FrameInterval)
}

// Shutdown runs what is still queued, then closes the loop and destroys
// every linked chart. The charts are destroyed even when ctx ends first.
func (e *Engine) Shutdown(ctx context.Context) error {
	err := e.loop.RunUntilIdle(ctx)
	e.loop.Close()
	e.manager.Destroy()
	for c, g := range e.groups {
		for _, p := range g {
			p.Binding.Forget(c)
		}
	}
	clear(e.groups)

	if err != nil {
		return fmt.Errorf("shutdown cancelled: %w", err)
	}
	e.logger.Debug("engine shut down")
	return nil
}
