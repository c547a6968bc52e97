package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/BYTE-6D65/bigchart/pkg/bench"
	"github.com/BYTE-6D65/bigchart/pkg/dataset"
	"github.com/BYTE-6D65/bigchart/pkg/engine"
)

func newStatsCmd(flags *rootFlags) *cobra.Command {
	var (
		src    sourceFlags
		runs   int
		detail bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Measure decimation over a zooming viewport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			s, err := src.load(cfg)
			if err != nil {
				return err
			}
			eng := engine.New(engine.WithConfig(cfg), engine.WithLogger(logger))

			line, err := eng.Line(s.Time, s.Values, s.Name)
			if err != nil {
				return err
			}
			scatter, err := eng.Scatter(s.Time, s.Values, s.Name)
			if err != nil {
				return err
			}
			plots := []dataset.Plot{line, scatter}
			if s.Alerts != nil {
				bands, err := eng.AlertBands(s.Time, s.Alerts, nil, nil)
				if err != nil {
					return err
				}
				plots = append(plots, bands...)
			}

			opts := bench.Options{
				Runs:    runs,
				Metrics: eng.Metrics(),
				Progress: func(run, total int, _ time.Duration) {
					if run == total {
						logger.Debug("benchmark finished", slog.Int("runs", total))
					}
				},
			}
			results := make([]*bench.Result, 0, len(plots))
			for _, p := range plots {
				res, err := bench.Run(cmd.Context(), p.Dataset.Label, p.Binding.Full(), p.Binding.Strategy(), opts)
				if err != nil {
					return fmt.Errorf("%s: %w", p.Dataset.Label, err)
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			bench.Report(out, fmt.Sprintf("%d points, %d runs each", s.Len(), results[0].Runs), results)
			if detail {
				for _, r := range results {
					fmt.Fprintln(out)
					bench.Detail(out, r)
				}
			}
			return nil
		},
	}

	addSourceFlags(cmd, &src)
	cmd.Flags().IntVar(&runs, "runs", 100, "decimations per strategy")
	cmd.Flags().BoolVar(&detail, "detail", false, "print the latency breakdown of every strategy")
	return cmd
}
