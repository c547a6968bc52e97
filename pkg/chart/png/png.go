// Package png renders charts to PNG images.
package png

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/BYTE-6D65/bigchart/pkg/chart"
	"github.com/BYTE-6D65/bigchart/pkg/series"
)

// Chart is a chart.Handle that renders a PNG frame on every Redraw.
// Viewport, buffers and gesture callbacks live in the embedded chart.Memory.
type Chart struct {
	*chart.Memory

	mu     sync.Mutex
	width  int
	height int
	colors map[string]string
	frame  []byte
	err    error
}

var (
	_ chart.Handle     = (*Chart)(nil)
	_ chart.FillSetter = (*Chart)(nil)
)

// New creates a width x height pixel chart showing x and y.
func New(name string, x, y series.Range, width, height int, opts ...chart.MemoryOption) *Chart {
	return &Chart{
		Memory: chart.NewMemory(name, x, y, opts...),
		width:  width,
		height: height,
		colors: make(map[string]string),
	}
}

// SetColor sets the hex color ("#rrggbb") dataset id is drawn in.
func (c *Chart) SetColor(id, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colors[id] = color
}

// Redraw renders a new frame for the current viewport. Render errors are
// kept and reported by Frame.
func (c *Chart) Redraw() {
	c.Memory.Redraw()

	var buf bytes.Buffer
	err := c.Render(&buf)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame, c.err = buf.Bytes(), err
}

// Frame returns the PNG produced by the last Redraw.
func (c *Chart) Frame() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame == nil && c.err == nil {
		return nil, fmt.Errorf("chart %q: not drawn yet", c.Name())
	}
	return c.frame, c.err
}

// Render writes the current state as a PNG to w.
func (c *Chart) Render(w io.Writer) error {
	vx, vy := c.ViewportX(), c.ViewportY()
	if vx.Span() <= 0 || vy.Span() <= 0 {
		return fmt.Errorf("chart %q: %w: %s x %s", c.Name(), series.ErrInvalidRange, vx, vy)
	}

	var all []gochart.Series
	for i, id := range c.Datasets() {
		style := gochart.Style{
			StrokeColor: c.color(id, i),
			StrokeWidth: 1.5,
		}
		pts := c.Buffer(id)
		all = append(all, runs(id, pts, style)...)
		if fill, ok := c.Fill(id); ok {
			edge := make([]series.Datapoint, len(pts))
			for j, p := range pts {
				if p.IsGap() {
					edge[j] = p
				} else {
					edge[j] = series.Point(p.X, fill)
				}
			}
			style.StrokeDashArray = []float64{4, 2}
			all = append(all, runs(id+" fill", edge, style)...)
		}
	}
	// Axes need a visible series to draw against, even when every buffer
	// is empty or all gaps.
	all = append(all, gochart.ContinuousSeries{
		Style:   gochart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 1},
		XValues: []float64{vx.Min, vx.Max},
		YValues: []float64{vy.Min, vy.Max},
	})

	graph := gochart.Chart{
		Title:  c.Name(),
		Width:  c.width,
		Height: c.height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: gochart.XAxis{
			Range:          &gochart.ContinuousRange{Min: vx.Min, Max: vx.Max},
			ValueFormatter: formatValue,
		},
		YAxis: gochart.YAxis{
			Range:          &gochart.ContinuousRange{Min: vy.Min, Max: vy.Max},
			ValueFormatter: formatValue,
		},
		Series: all,
	}
	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("chart %q: render: %w", c.Name(), err)
	}
	return nil
}

func (c *Chart) color(id string, i int) drawing.Color {
	c.mu.Lock()
	hex, ok := c.colors[id]
	c.mu.Unlock()
	if !ok {
		hex = palette[i%len(palette)]
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

var palette = []string{"1f77b4", "ff7f0e", "2ca02c", "d62728", "9467bd", "8c564b", "e377c2", "7f7f7f"}

// runs splits pts at gaps into continuous series of at least two points.
func runs(name string, pts []series.Datapoint, style gochart.Style) []gochart.Series {
	var out []gochart.Series
	var xs, ys []float64
	flush := func() {
		if len(xs) >= 2 {
			out = append(out, gochart.ContinuousSeries{Name: name, Style: style, XValues: xs, YValues: ys})
		}
		xs, ys = nil, nil
	}
	for _, p := range pts {
		if p.IsGap() {
			flush()
			continue
		}
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	flush()
	return out
}

func formatValue(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'g', 6, 64)
	}
	return ""
}
