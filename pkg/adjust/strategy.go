package adjust

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/BYTE-6D65/bigchart/pkg/decimate"
	"github.com/BYTE-6D65/bigchart/pkg/series"
)

// Strategy decides how a visible window is reduced.
type Strategy interface {
	// Name labels the strategy in logs, metrics and errors.
	Name() string

	// MaxPoints is the window length above which Decimate runs.
	MaxPoints() int

	// Initial reduces the whole series for the first render, before any
	// viewport exists.
	Initial(full []series.Datapoint) ([]series.Datapoint, error)

	// Decimate reduces a visible window. viewport is the chart's horizontal
	// range at the time of the call.
	Decimate(window []series.Datapoint, viewport series.Range) ([]series.Datapoint, error)
}

// Positioner is implemented by strategies whose points sit at a position
// relative to the vertical viewport rather than at fixed data values.
type Positioner interface {
	// Position returns the Y to draw every non-gap point at, and the Y of
	// the fill boundary, for the given vertical viewport.
	Position(viewportY series.Range) (y, fill float64, err error)
}

// alertMaxPoints is round(DefaultLength/2).
var alertMaxPoints = int(math.Round(decimate.DefaultLength / 2))

// Averaging averages consecutive points. Use it for continuous signals.
type Averaging struct {
	// Max is the display threshold. 0 means decimate.DefaultLength.
	Max int
}

func (Averaging) Name() string { return decimate.KindAverage.String() }

func (s Averaging) MaxPoints() int {
	if s.Max > 0 {
		return s.Max
	}
	return decimate.DefaultLength
}

func (Averaging) Initial(full []series.Datapoint) ([]series.Datapoint, error) {
	return decimate.Average(full, decimate.Options{}), nil
}

func (s Averaging) Decimate(window []series.Datapoint, _ series.Range) ([]series.Datapoint, error) {
	limit := s.MaxPoints()
	return decimate.Average(window, decimate.Options{
		Stride:    decimate.AutoStride(len(window), limit),
		MaxPoints: limit,
	}), nil
}

// RandomDrop keeps one random point per chunk. Use it for scatter plots.
type RandomDrop struct {
	// Max is the display threshold. 0 means decimate.DefaultLength.
	Max int

	// Rand selects the kept points. nil uses the math/rand/v2 global source.
	Rand *rand.Rand
}

func (RandomDrop) Name() string { return decimate.KindRandomDrop.String() }

func (s RandomDrop) MaxPoints() int {
	if s.Max > 0 {
		return s.Max
	}
	return decimate.DefaultLength
}

func (s RandomDrop) Initial(full []series.Datapoint) ([]series.Datapoint, error) {
	return decimate.RandomDrop(full, decimate.Options{Rand: s.Rand}), nil
}

func (s RandomDrop) Decimate(window []series.Datapoint, _ series.Range) ([]series.Datapoint, error) {
	limit := s.MaxPoints()
	return decimate.RandomDrop(window, decimate.Options{
		Stride:    decimate.AutoStride(len(window), limit),
		MaxPoints: limit,
		Rand:      s.Rand,
	}), nil
}

// Alerts bins a sparse single-label series. The bin width follows the
// viewport: its span divided by the display threshold.
type Alerts struct {
	// Max is the display threshold. 0 means decimate.DefaultLength/2.
	Max int
}

func (Alerts) Name() string { return decimate.KindAlerts.String() }

func (s Alerts) MaxPoints() int {
	if s.Max > 0 {
		return s.Max
	}
	return alertMaxPoints
}

func (Alerts) Initial(full []series.Datapoint) ([]series.Datapoint, error) {
	return decimate.Alerts(full, decimate.Options{})
}

func (s Alerts) Decimate(window []series.Datapoint, viewport series.Range) ([]series.Datapoint, error) {
	limit := s.MaxPoints()
	width := viewport.Span() / float64(limit)
	if !(width > 0) {
		// a zero width would select the automatic default
		return nil, fmt.Errorf("%w: viewport %v gives %g", series.ErrInvalidBinWidth, viewport, width)
	}
	return decimate.Alerts(window, decimate.Options{ChunkWidth: width, MaxPoints: limit})
}

// FixedYAlerts is Alerts drawn as a band that stays at the same place on
// screen whatever the vertical pan or zoom. Target holds the band's lower
// and upper edge as proportions of the vertical viewport.
type FixedYAlerts struct {
	Alerts
	Target series.Range
}

func (FixedYAlerts) Name() string { return "fixed-y-alerts" }

func (s FixedYAlerts) Position(viewportY series.Range) (y, fill float64, err error) {
	if y, err = series.ParameterizedPosition(s.Target.Min, viewportY); err != nil {
		return 0, 0, err
	}
	if fill, err = series.ParameterizedPosition(s.Target.Max, viewportY); err != nil {
		return 0, 0, err
	}
	return y, fill, nil
}

var (
	_ Strategy   = Averaging{}
	_ Strategy   = RandomDrop{}
	_ Strategy   = Alerts{}
	_ Strategy   = FixedYAlerts{}
	_ Positioner = FixedYAlerts{}
)
