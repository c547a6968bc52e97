// Package dataset builds renderable datasets paired with the binding that
// keeps them decimated for the chart's viewport.
package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/BYTE-6D65/bigchart/pkg/adjust"
	"github.com/BYTE-6D65/bigchart/pkg/chart"
	"github.com/BYTE-6D65/bigchart/pkg/clock"
	"github.com/BYTE-6D65/bigchart/pkg/event"
	"github.com/BYTE-6D65/bigchart/pkg/series"
	"github.com/BYTE-6D65/bigchart/pkg/telemetry"
)

// Kind tells renderers how to draw a dataset.
type Kind int

const (
	KindLine Kind = iota + 1
	KindScatter
	KindAlertBand
	KindFixedYAlertBand
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindScatter:
		return "scatter"
	case KindAlertBand:
		return "alert-band"
	case KindFixedYAlertBand:
		return "fixed-y-alert-band"
	default:
		return "unknown"
	}
}

// Palette colors datasets that were not given one.
var Palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f"}

// Dataset is what a chart draws before its first gesture.
type Dataset struct {
	Label  string
	Kind   Kind
	Color  string
	Points []series.Datapoint

	// Fill is the Y boundary the area under the line is filled to.
	Fill    float64
	HasFill bool
}

// Plot pairs a dataset with the binding that recomputes it.
type Plot struct {
	Dataset Dataset
	Binding *adjust.Binding
}

// Update recomputes the plot's buffer on c.
func (p Plot) Update(c chart.Handle, id string) error {
	return p.Binding.Update(c, id)
}

type config struct {
	color   string
	metrics *telemetry.Metrics
	logger  *slog.Logger
	journal *event.Journal
	clock   clock.Clock
	max     int
}

// Option configures the plots built by a factory.
type Option func(*config)

// WithColor sets the line color. Alert factories use it for every band.
func WithColor(color string) Option {
	return func(c *config) {
		c.color = color
	}
}

// WithMaxPoints overrides the display threshold of the strategy.
func WithMaxPoints(n int) Option {
	return func(c *config) {
		c.max = n
	}
}

// WithMetrics is passed through to the bindings.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithLogger is passed through to the bindings.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithJournal records every buffer update in j, stamped by clk.
func WithJournal(j *event.Journal, clk clock.Clock) Option {
	return func(c *config) {
		c.journal = j
		c.clock = clk
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) bindOpts(name string) []adjust.Option {
	opts := []adjust.Option{adjust.WithName(name), adjust.WithMetrics(c.metrics)}
	if c.logger != nil {
		opts = append(opts, adjust.WithLogger(c.logger))
	}
	if c.journal != nil {
		opts = append(opts, adjust.WithJournal(c.journal))
	}
	if c.clock != nil {
		opts = append(opts, adjust.WithClock(c.clock))
	}
	return opts
}

func (c *config) colorAt(i int) string {
	if c.color != "" {
		return c.color
	}
	return Palette[i%len(Palette)]
}

func newPlot(full []series.Datapoint, strategy adjust.Strategy, ds Dataset, cfg *config) (Plot, error) {
	b := adjust.Bind(full, strategy, cfg.bindOpts(ds.Label)...)
	initial, err := b.Initial()
	if err != nil {
		return Plot{}, err
	}
	ds.Points = initial
	return Plot{Dataset: ds, Binding: b}, nil
}

// Line plots a continuous signal, decimated by averaging. NaN values are
// gaps.
func Line(time, values []float64, label string, opts ...Option) (Plot, error) {
	cfg := newConfig(opts)
	full, err := series.Zip(time, values)
	if err != nil {
		return Plot{}, fmt.Errorf("line %q: %w", label, err)
	}
	return newPlot(full, adjust.Averaging{Max: cfg.max},
		Dataset{Label: label, Kind: KindLine, Color: cfg.colorAt(0)}, cfg)
}

// Scatter plots samples, decimated by keeping random points. rnd may be nil.
func Scatter(time, values []float64, label string, rnd *rand.Rand, opts ...Option) (Plot, error) {
	cfg := newConfig(opts)
	full, err := series.Zip(time, values)
	if err != nil {
		return Plot{}, fmt.Errorf("scatter %q: %w", label, err)
	}
	return newPlot(full, adjust.RandomDrop{Max: cfg.max, Rand: rnd},
		Dataset{Label: label, Kind: KindScatter, Color: cfg.colorAt(0)}, cfg)
}

// UniquePlottableAlerts returns the distinct alert codes in alerts, without
// NaN and without the codes in skip, in ascending order.
func UniquePlottableAlerts(alerts, skip []float64) []float64 {
	var out []float64
	for _, a := range alerts {
		if math.IsNaN(a) || slices.Contains(skip, a) || slices.Contains(out, a) {
			continue
		}
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// AlertBands plots each alert code in its own horizontal band: the i-th
// code is drawn at Y=i and filled up to Y=i+1 wherever it is active.
// labels names the codes; unnamed codes are labelled with their value.
func AlertBands(time, alerts, skip []float64, labels map[float64]string, opts ...Option) ([]Plot, error) {
	cfg := newConfig(opts)
	if len(time) != len(alerts) {
		return nil, fmt.Errorf("alert bands: %w: %d != %d", series.ErrLengthMismatch, len(time), len(alerts))
	}

	codes := UniquePlottableAlerts(alerts, skip)
	plots := make([]Plot, 0, len(codes))
	for i, code := range codes {
		full := series.SkipRepeats(band(time, alerts, code, float64(i)))
		p, err := newPlot(full, adjust.Alerts{Max: cfg.max}, Dataset{
			Label:   alertLabel(labels, code),
			Kind:    KindAlertBand,
			Color:   cfg.colorAt(i),
			Fill:    float64(i + 1),
			HasFill: true,
		}, cfg)
		if err != nil {
			return nil, fmt.Errorf("alert band %g: %w", code, err)
		}
		plots = append(plots, p)
	}
	return plots, nil
}

// FixedYAlertBands plots every alert code in the same screen-fixed band.
// target gives the band's lower and upper edge as proportions of the
// vertical viewport, which starts out as initY.
func FixedYAlertBands(time, alerts, skip []float64, labels map[float64]string, initY, target series.Range, opts ...Option) ([]Plot, error) {
	cfg := newConfig(opts)
	if len(time) != len(alerts) {
		return nil, fmt.Errorf("fixed-y alert bands: %w: %d != %d", series.ErrLengthMismatch, len(time), len(alerts))
	}

	strategy := adjust.FixedYAlerts{Alerts: adjust.Alerts{Max: cfg.max}, Target: target}
	y, fill, err := strategy.Position(initY)
	if err != nil {
		return nil, fmt.Errorf("fixed-y alert bands: %w", err)
	}

	codes := UniquePlottableAlerts(alerts, skip)
	plots := make([]Plot, 0, len(codes))
	for i, code := range codes {
		full := series.SkipRepeats(band(time, alerts, code, y))
		p, err := newPlot(full, strategy, Dataset{
			Label:   alertLabel(labels, code),
			Kind:    KindFixedYAlertBand,
			Color:   cfg.colorAt(i),
			Fill:    fill,
			HasFill: true,
		}, cfg)
		if err != nil {
			return nil, fmt.Errorf("fixed-y alert band %g: %w", code, err)
		}
		plots = append(plots, p)
	}
	return plots, nil
}

// band places y wherever alerts equals code and a gap elsewhere.
func band(time, alerts []float64, code, y float64) []series.Datapoint {
	pts := make([]series.Datapoint, len(time))
	for i, t := range time {
		if alerts[i] == code {
			pts[i] = series.Point(t, y)
		} else {
			pts[i] = series.Gap(t)
		}
	}
	return pts
}

func alertLabel(labels map[float64]string, code float64) string {
	if l, ok := labels[code]; ok {
		return l
	}
	return strconv.FormatFloat(code, 'g', -1, 64)
}

// ID returns the dataset ID used for the i-th plot of a Group.
func ID(i int) string {
	return strconv.Itoa(i)
}

// Group is the ordered set of plots shown on one chart.
type Group []Plot

// Attach pushes every plot's initial points and fill boundary to c.
func (g Group) Attach(c chart.Handle) {
	fs, canFill := c.(chart.FillSetter)
	for i, p := range g {
		c.SetDatasetBuffer(ID(i), p.Dataset.Points)
		if canFill && p.Dataset.HasFill {
			fs.SetFillTarget(ID(i), p.Dataset.Fill)
		}
	}
	c.Redraw()
}

// Update recomputes every plot on c, then redraws it. A failing plot keeps
// its previous buffer and does not stop the others.
func (g Group) Update(c chart.Handle) error {
	var errs []error
	for i, p := range g {
		if err := p.Update(c, ID(i)); err != nil {
			errs = append(errs, err)
		}
	}
	c.Redraw()
	return errors.Join(errs...)
}

// Labels returns the dataset labels in order.
func (g Group) Labels() []string {
	out := make([]string, len(g))
	for i, p := range g {
		out[i] = p.Dataset.Label
	}
	return out
}
