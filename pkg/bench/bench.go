// Package bench measures how fast strategies decimate a series as the
// viewport zooms through it.
package bench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/BYTE-6D65/bigchart/pkg/adjust"
	"github.com/BYTE-6D65/bigchart/pkg/series"
	"github.com/BYTE-6D65/bigchart/pkg/telemetry"
	"github.com/BYTE-6D65/bigchart/pkg/viewport"
)

// ErrEmptySeries is returned when there is nothing to decimate.
var ErrEmptySeries = errors.New("bench: empty series")

// zoomLevels is how many viewports a run cycles through, from the whole
// series down to a twelfth of it.
const zoomLevels = 12

// Result contains the timings of one strategy over one series.
type Result struct {
	Label    string
	Strategy string
	Runs     int
	Duration time.Duration

	// Points
	PointsIn  int
	PointsOut int

	// Latency per run
	LatencyMin    time.Duration
	LatencyMax    time.Duration
	LatencyMean   time.Duration
	LatencyMedian time.Duration
	LatencyP90    time.Duration
	LatencyP95    time.Duration
	LatencyP99    time.Duration
	LatencyStdDev time.Duration
	Jitter        time.Duration

	// Throughput
	PointsPerSec float64

	// Memory
	AllocatedMB float64
	GCCount     uint32
}

// Ratio returns output points per input point.
func (r *Result) Ratio() float64 {
	if r.PointsIn == 0 {
		return 0
	}
	return float64(r.PointsOut) / float64(r.PointsIn)
}

// ProgressCallback is called after every run.
type ProgressCallback func(run, totalRuns int, elapsed time.Duration)

// Options tunes Run.
type Options struct {
	Runs     int // default 100
	Metrics  *telemetry.Metrics
	Progress ProgressCallback
}

// Run decimates full with strategy Runs times. Run i shows the window
// centered on the series whose width is 1/(1 + i mod 12) of the whole, the
// way a chart would after repeated zooms.
func Run(ctx context.Context, label string, full []series.Datapoint, strategy adjust.Strategy, opts Options) (*Result, error) {
	bounds, ok := viewport.Bounds(full)
	if !ok {
		return nil, ErrEmptySeries
	}
	runs := opts.Runs
	if runs <= 0 {
		runs = 100
	}

	runtime.GC()
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	latencies := make([]time.Duration, 0, runs)
	res := &Result{Label: label, Strategy: strategy.Name(), Runs: runs}
	start := time.Now()

	for i := range runs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vx := zoom(bounds, i)
		runStart := time.Now()
		window := viewport.VisibleSlice(full, vx.Min, vx.Max)
		out := window
		if len(window) > strategy.MaxPoints() {
			var err error
			if out, err = strategy.Decimate(window, vx); err != nil {
				return nil, fmt.Errorf("run %d %s: %w", i, vx, err)
			}
		}
		elapsed := time.Since(runStart)

		latencies = append(latencies, elapsed)
		res.PointsIn += len(window)
		res.PointsOut += len(out)
		opts.Metrics.ObserveDecimation(strategy.Name(), len(window), len(out), elapsed)

		if opts.Progress != nil {
			opts.Progress(i+1, runs, time.Since(start))
		}
	}

	res.Duration = time.Since(start)
	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	summarize(res, latencies, &before, &after)
	return res, nil
}

// zoom returns the viewport of run i.
func zoom(bounds series.Range, i int) series.Range {
	level := float64(1 + i%zoomLevels)
	half := bounds.Span() / level / 2
	center := bounds.Min + bounds.Span()/2
	return series.Range{Min: center - half, Max: center + half}
}

func summarize(res *Result, latencies []time.Duration, before, after *runtime.MemStats) {
	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	n := len(sorted)
	res.LatencyMin = sorted[0]
	res.LatencyMax = sorted[n-1]
	res.LatencyMedian = sorted[n*50/100]
	res.LatencyP90 = sorted[n*90/100]
	res.LatencyP95 = sorted[n*95/100]
	res.LatencyP99 = sorted[n*99/100]

	var total time.Duration
	for _, lat := range sorted {
		total += lat
	}
	res.LatencyMean = total / time.Duration(n)

	var sumSquaredDiff float64
	for _, lat := range sorted {
		diff := float64(lat - res.LatencyMean)
		sumSquaredDiff += diff * diff
	}
	res.LatencyStdDev = time.Duration(math.Sqrt(sumSquaredDiff / float64(n)))

	// Jitter, in run order
	if n > 1 {
		var totalJitter time.Duration
		for i := 1; i < n; i++ {
			diff := latencies[i] - latencies[i-1]
			if diff < 0 {
				diff = -diff
			}
			totalJitter += diff
		}
		res.Jitter = totalJitter / time.Duration(n-1)
	}

	if secs := res.Duration.Seconds(); secs > 0 {
		res.PointsPerSec = float64(res.PointsIn) / secs
	}
	res.AllocatedMB = float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024)
	res.GCCount = after.NumGC - before.NumGC
}
