package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/BYTE-6D65/bigchart/pkg/chart"
	"github.com/BYTE-6D65/bigchart/pkg/config"
	"github.com/BYTE-6D65/bigchart/pkg/dataset"
	"github.com/BYTE-6D65/bigchart/pkg/engine"
	"github.com/BYTE-6D65/bigchart/pkg/series"
	"github.com/BYTE-6D65/bigchart/pkg/source"
)

// alertBand is where fixed-Y alert bands sit on the signal chart, as
// proportions of its vertical viewport.
var alertBand = series.Range{Min: 0.92, Max: 1}

type sourceFlags struct {
	scenario string
	points   int
	xlsx     string
	sheet    string
	timeCol  string
	valueCol string
	alertCol string
}

func addSourceFlags(cmd *cobra.Command, f *sourceFlags) {
	cmd.Flags().StringVar(&f.scenario, "scenario", string(source.ScenarioAlerts), "synthetic scenario: wave, noisy, gappy, alerts")
	cmd.Flags().IntVarP(&f.points, "points", "n", 200_000, "synthetic sample count")
	cmd.Flags().StringVar(&f.xlsx, "xlsx", "", "load the series from a spreadsheet instead")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "spreadsheet sheet (default first)")
	cmd.Flags().StringVar(&f.timeCol, "time-col", "A", "spreadsheet time column")
	cmd.Flags().StringVar(&f.valueCol, "value-col", "B", "spreadsheet value column")
	cmd.Flags().StringVar(&f.alertCol, "alert-col", "", "spreadsheet alert column")
}

// load produces the series selected by the flags. Synthetic data is seeded
// from cfg.RandomSeed when it is set.
func (f *sourceFlags) load(cfg config.Config) (source.Series, error) {
	if f.xlsx != "" {
		s, err := source.LoadXLSX(f.xlsx, source.Columns{
			Sheet: f.sheet,
			Time:  f.timeCol,
			Value: f.valueCol,
			Alert: f.alertCol,
		})
		if err != nil {
			return s, err
		}
		if s.Name == "" {
			s.Name = "signal"
		}
		return s, nil
	}

	scenario, err := source.ParseScenario(f.scenario)
	if err != nil {
		return source.Series{}, err
	}
	var rnd *rand.Rand
	if cfg.RandomSeed != 0 {
		rnd = rand.New(rand.NewPCG(cfg.RandomSeed, cfg.RandomSeed^0x9e3779b97f4a7c15))
	}
	return source.Generate(scenario, f.points, rnd)
}

// colorHandle is a chart that can be told dataset colors.
type colorHandle interface {
	chart.Handle
	SetColor(id, color string)
}

// panel is one linked chart with its plots.
type panel struct {
	name   string
	handle colorHandle
	group  dataset.Group
}

type handleFactory func(name string, x, y series.Range) colorHandle

// buildPanels creates the linked charts for s: the signal with fixed-Y
// alert bands, the raw samples, and one stacked band per alert code when s
// has alerts. Every chart is linked and synchronized.
func buildPanels(eng *engine.Engine, s source.Series, newHandle handleFactory) ([]panel, error) {
	xr, ok := series.RangeOf(s.Time)
	if !ok || xr.Span() <= 0 {
		return nil, fmt.Errorf("series %q: %w: time extent %s", s.Name, series.ErrInvalidRange, xr)
	}
	yr := padded(series.CommonRange([][]float64{s.Values}))

	line, err := eng.Line(s.Time, s.Values, s.Name)
	if err != nil {
		return nil, err
	}
	signal := dataset.Group{line}

	var bands []dataset.Plot
	if s.Alerts != nil {
		if bands, err = eng.FixedYAlertBands(s.Time, s.Alerts, nil, nil, yr, alertBand); err != nil {
			return nil, err
		}
		signal = append(signal, bands...)
	}

	scatter, err := eng.Scatter(s.Time, s.Values, s.Name+" samples")
	if err != nil {
		return nil, err
	}

	panels := []panel{
		{name: s.Name, group: signal},
		{name: "samples", group: dataset.Group{scatter}},
	}

	if s.Alerts != nil {
		stacked, err := eng.AlertBands(s.Time, s.Alerts, nil, nil)
		if err != nil {
			return nil, err
		}
		if len(stacked) > 0 {
			panels = append(panels, panel{name: "alerts", group: stacked})
		}
	}

	for i := range panels {
		p := &panels[i]
		y := yr
		if p.name == "alerts" {
			y = series.Range{Min: 0, Max: float64(len(p.group))}
		}
		p.handle = newHandle(p.name, xr, y)
		for j, plot := range p.group {
			p.handle.SetColor(dataset.ID(j), plot.Dataset.Color)
		}
		eng.Link(p.handle, p.group)
	}
	eng.Sync()
	return panels, nil
}

// padded widens r by 5% on each side, or to a unit span when r is flat.
func padded(r series.Range) series.Range {
	pad := r.Span() * 0.05
	if pad == 0 {
		pad = 0.5
	}
	return series.Range{Min: r.Min - pad, Max: r.Max + pad}
}
