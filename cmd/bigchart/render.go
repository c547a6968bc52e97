package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pngchart "github.com/BYTE-6D65/bigchart/pkg/chart/png"
	"github.com/BYTE-6D65/bigchart/pkg/engine"
	"github.com/BYTE-6D65/bigchart/pkg/series"
)

func newRenderCmd(flags *rootFlags) *cobra.Command {
	var (
		src      sourceFlags
		outDir   string
		width    int
		height   int
		gestures []string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render linked charts to PNG after scripted gestures",
		Long: `Render builds the linked charts for a series, plays the given gestures
through the frame loop, and writes one PNG per chart.

Gestures are written [chart@]pan:min:max or [chart@]zoom:min:max and run in
order. The other charts follow each gesture.`,
		Args: cobra.NoArgs,
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
			panels, err := buildPanels(eng, s, func(name string, x, y series.Range) colorHandle {
				return pngchart.New(name, x, y, width, height)
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := playGestures(ctx, eng, panels, gestures); err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for i, p := range panels {
				frame, err := p.handle.(*pngchart.Chart).Frame()
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, fmt.Sprintf("%d-%s.png", i, fileName(p.name)))
				if err := os.WriteFile(path, frame, 0o644); err != nil {
					return err
				}
				logger.Info("chart written",
					slog.String("path", path),
					slog.String("viewport", p.handle.ViewportX().String()),
				)
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return eng.Shutdown(ctx)
		},
	}

	addSourceFlags(cmd, &src)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().IntVar(&width, "width", 1200, "image width in pixels")
	cmd.Flags().IntVar(&height, "height", 400, "image height in pixels")
	cmd.Flags().StringArrayVarP(&gestures, "gesture", "g", nil, "gesture to play, repeatable")
	return cmd
}

// playGestures posts every gesture to the frame loop and runs it until the
// linked charts have caught up.
func playGestures(ctx context.Context, eng *engine.Engine, panels []panel, gestures []string) error {
	gs, err := parseGestures(gestures, len(panels))
	if err != nil {
		return err
	}
	for _, g := range gs {
		target, ok := panels[g.chart].handle.(gesturer)
		if !ok {
			return fmt.Errorf("chart %d does not take gestures", g.chart)
		}
		if err := eng.Post(func() { g.apply(target) }); err != nil {
			return err
		}
	}
	return eng.Settle(ctx)
}

func fileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
