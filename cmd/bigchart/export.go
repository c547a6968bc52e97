package main

import (
	"io"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/BYTE-6D65/bigchart/pkg/chart"
	"github.com/BYTE-6D65/bigchart/pkg/dataset"
	"github.com/BYTE-6D65/bigchart/pkg/engine"
	"github.com/BYTE-6D65/bigchart/pkg/event"
	"github.com/BYTE-6D65/bigchart/pkg/series"
)

type exportDataset struct {
	ID     string             `json:"id"`
	Label  string             `json:"label"`
	Kind   string             `json:"kind"`
	Fill   *float64           `json:"fill,omitempty"`
	Points []series.Datapoint `json:"points"`
}

type exportChart struct {
	Name      string          `json:"name"`
	ViewportX series.Range    `json:"viewport_x"`
	ViewportY series.Range    `json:"viewport_y"`
	Datasets  []exportDataset `json:"datasets"`
}

type exportDoc struct {
	Series  string        `json:"series"`
	Samples int           `json:"samples"`
	Charts  []exportChart `json:"charts"`
	Journal []event.Event `json:"journal"`
}

// memoryHandle lets headless charts stand in where colors are set.
type memoryHandle struct {
	*chart.Memory
}

func (memoryHandle) SetColor(string, string) {}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		src      sourceFlags
		outPath  string
		gestures []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the decimated buffers and gesture journal as JSON",
		Long: `Export builds the linked charts for a series without drawing them,
plays the given gestures, and writes what every chart would show together
with the journal of gestures and propagations.`,
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
				return memoryHandle{chart.NewMemory(name, x, y)}
			})
			if err != nil {
				return err
			}
			if err := playGestures(cmd.Context(), eng, panels, gestures); err != nil {
				return err
			}

			doc := exportDoc{
				Series:  s.Name,
				Samples: s.Len(),
				Journal: eng.Journal().All(),
			}
			for _, p := range panels {
				doc.Charts = append(doc.Charts, snapshot(p))
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := json.MarshalWrite(w, doc, jsontext.WithIndent("  ")); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
			return eng.Shutdown(cmd.Context())
		},
	}

	addSourceFlags(cmd, &src)
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringArrayVarP(&gestures, "gesture", "g", nil, "gesture to play, repeatable")
	return cmd
}

func snapshot(p panel) exportChart {
	mem := p.handle.(memoryHandle)
	out := exportChart{
		Name:      p.name,
		ViewportX: mem.ViewportX(),
		ViewportY: mem.ViewportY(),
	}
	for i, plot := range p.group {
		id := dataset.ID(i)
		ds := exportDataset{
			ID:     id,
			Label:  plot.Dataset.Label,
			Kind:   plot.Dataset.Kind.String(),
			Points: mem.Buffer(id),
		}
		if fill, ok := mem.Fill(id); ok {
			ds.Fill = &fill
		}
		out.Datasets = append(out.Datasets, ds)
	}
	return out
}
