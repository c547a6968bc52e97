package bench

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Report writes results as a table, one row per result.
func Report(w io.Writer, title string, results []*Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"series", "strategy", "runs", "in", "out", "ratio", "mean", "p50", "p99", "max", "points/s", "alloc MB"})

	for _, r := range results {
		t.AppendRow(table.Row{
			r.Label,
			r.Strategy,
			r.Runs,
			r.PointsIn,
			r.PointsOut,
			fmt.Sprintf("%.3f", r.Ratio()),
			round(r.LatencyMean),
			round(r.LatencyMedian),
			round(r.LatencyP99),
			round(r.LatencyMax),
			fmt.Sprintf("%.0f", r.PointsPerSec),
			fmt.Sprintf("%.2f", r.AllocatedMB),
		})
	}
	t.Render()
}

// Detail writes the full latency breakdown of one result.
func Detail(w io.Writer, r *Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s / %s", r.Label, r.Strategy))
	t.AppendHeader(table.Row{"metric", "value"})
	t.AppendRows([]table.Row{
		{"runs", r.Runs},
		{"duration", r.Duration.Round(time.Millisecond)},
		{"min", round(r.LatencyMin)},
		{"mean", round(r.LatencyMean)},
		{"median", round(r.LatencyMedian)},
		{"p90", round(r.LatencyP90)},
		{"p95", round(r.LatencyP95)},
		{"p99", round(r.LatencyP99)},
		{"max", round(r.LatencyMax)},
		{"stddev", round(r.LatencyStdDev)},
		{"jitter", round(r.Jitter)},
		{"gc", r.GCCount},
	})
	t.Render()
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Microsecond)
}
