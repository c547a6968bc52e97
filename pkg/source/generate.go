// Package source produces the long series bigchart plots: synthetic
// scenarios for demos and benchmarks, and columns loaded from spreadsheets.
package source

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

var (
	// ErrInvalidCount is returned when fewer than one sample is requested.
	ErrInvalidCount = errors.New("source: sample count must be positive")

	// ErrUnknownScenario is returned by ParseScenario.
	ErrUnknownScenario = errors.New("source: unknown scenario")
)

// Scenario names a synthetic data shape.
type Scenario string

const (
	// ScenarioWave is a clean sine wave.
	ScenarioWave Scenario = "wave"
	// ScenarioNoisy is a sine wave with gaussian noise.
	ScenarioNoisy Scenario = "noisy"
	// ScenarioGappy is ScenarioNoisy with regular runs of missing samples.
	ScenarioGappy Scenario = "gappy"
	// ScenarioAlerts is ScenarioNoisy plus an alert channel of sparse,
	// run-length alert codes.
	ScenarioAlerts Scenario = "alerts"
)

// Scenarios lists every scenario.
func Scenarios() []Scenario {
	return []Scenario{ScenarioWave, ScenarioNoisy, ScenarioGappy, ScenarioAlerts}
}

// ParseScenario maps a name to a Scenario.
func ParseScenario(name string) (Scenario, error) {
	s := Scenario(name)
	if !slices.Contains(Scenarios(), s) {
		return "", fmt.Errorf("%w: %q", ErrUnknownScenario, name)
	}
	return s, nil
}

// AlertCodes are the codes ScenarioAlerts emits.
var AlertCodes = []float64{1, 2, 3}

const (
	gapEvery  = 997
	gapLength = 50
)

// Series is a sampled signal. Values and Alerts use NaN for missing
// samples; Alerts is nil when the source has no alert channel.
type Series struct {
	Name   string
	Time   []float64
	Values []float64
	Alerts []float64
}

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s.Time)
}

// Generate produces n samples of scenario at one sample per time unit.
// rnd drives noise and alerts; nil uses the math/rand/v2 global source.
func Generate(scenario Scenario, n int, rnd *rand.Rand) (Series, error) {
	if n < 1 {
		return Series{}, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}

	s := Series{
		Name:   string(scenario),
		Time:   make([]float64, n),
		Values: make([]float64, n),
	}
	period := max(float64(n)/5, 1)
	for i := range n {
		s.Time[i] = float64(i)
		s.Values[i] = 50 + 40*math.Sin(2*math.Pi*float64(i)/period)
	}

	switch scenario {
	case ScenarioWave:
	case ScenarioNoisy, ScenarioAlerts:
		addNoise(s.Values, rnd)
	case ScenarioGappy:
		addNoise(s.Values, rnd)
		punchGaps(s.Values)
	default:
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
	}

	if scenario == ScenarioAlerts {
		s.Alerts = alertRuns(n, rnd)
	}
	return s, nil
}

func addNoise(values []float64, rnd *rand.Rand) {
	for i := range values {
		values[i] += 5 * normFloat64(rnd)
	}
}

func punchGaps(values []float64) {
	for start := gapEvery; start < len(values); start += gapEvery {
		end := min(start+gapLength, len(values))
		for i := start; i < end; i++ {
			values[i] = math.NaN()
		}
	}
}

// alertRuns alternates quiet stretches with runs of a single alert code.
func alertRuns(n int, rnd *rand.Rand) []float64 {
	alerts := make([]float64, n)
	i := 0
	for i < n {
		quiet := 200 + intN(rnd, 800)
		for end := min(i+quiet, n); i < end; i++ {
			alerts[i] = math.NaN()
		}
		code := AlertCodes[intN(rnd, len(AlertCodes))]
		active := 20 + intN(rnd, 180)
		for end := min(i+active, n); i < end; i++ {
			alerts[i] = code
		}
	}
	return alerts
}

func normFloat64(rnd *rand.Rand) float64 {
	if rnd == nil {
		return rand.NormFloat64()
	}
	return rnd.NormFloat64()
}

func intN(rnd *rand.Rand, n int) int {
	if rnd == nil {
		return rand.IntN(n)
	}
	return rnd.IntN(n)
}
