// Package term draws charts in the terminal with braille line runes.
package term

import (
	"math"
	"strings"
	"sync"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/BYTE-6D65/bigchart/pkg/chart"
	"github.com/BYTE-6D65/bigchart/pkg/series"
)

var (
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// Chart is a chart.Handle rendered to a string by Redraw. Viewport,
// buffers and gesture callbacks live in the embedded chart.Memory.
type Chart struct {
	*chart.Memory

	mu     sync.Mutex
	model  linechart.Model
	colors map[string]string
	view   string
}

var (
	_ chart.Handle     = (*Chart)(nil)
	_ chart.Indexed    = (*Chart)(nil)
	_ chart.FillSetter = (*Chart)(nil)
)

// New creates a width x height terminal chart showing x and y.
func New(name string, x, y series.Range, width, height int, opts ...chart.MemoryOption) *Chart {
	model := linechart.New(max(width, 1), max(height, 1), x.Min, x.Max, y.Min, y.Max,
		linechart.WithXYSteps(4, 3),
	)
	model.AxisStyle = axisStyle
	model.LabelStyle = labelStyle

	c := &Chart{
		Memory: chart.NewMemory(name, x, y, opts...),
		model:  model,
		colors: make(map[string]string),
	}
	c.render()
	return c
}

// SetColor sets the color dataset id is drawn in.
func (c *Chart) SetColor(id, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colors[id] = color
}

// Resize changes the drawing area and redraws.
func (c *Chart) Resize(width, height int) {
	c.mu.Lock()
	c.model.Resize(max(width, 1), max(height, 1))
	c.mu.Unlock()
	c.Redraw()
}

// Redraw renders the current buffers for the current viewport.
func (c *Chart) Redraw() {
	c.Memory.Redraw()
	c.render()
}

// View returns the output of the last Redraw, titled with the chart name.
func (c *Chart) View() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Chart) render() {
	vx, vy := c.ViewportX(), c.ViewportY()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.model.SetXYRange(vx.Min, vx.Max, vy.Min, vy.Max)
	c.model.SetViewXYRange(vx.Min, vx.Max, vy.Min, vy.Max)
	c.model.Clear()
	c.model.DrawXYAxisAndLabel()

	for i, id := range c.Datasets() {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(c.colorFor(id, i)))
		pts := c.Buffer(id)
		c.drawPolyline(pts, vx, vy, style)
		if fill, ok := c.Fill(id); ok {
			c.drawFillEdge(pts, fill, vx, vy, style)
		}
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Name()))
	b.WriteByte('\n')
	b.WriteString(c.model.View())
	c.view = b.String()
}

// colorFor must be called with mu held.
func (c *Chart) colorFor(id string, i int) string {
	if col, ok := c.colors[id]; ok {
		return col
	}
	return palette[i%len(palette)]
}

var palette = []string{"39", "208", "42", "196", "141", "180", "213", "250"}

// drawPolyline joins consecutive non-gap points, clipped to the viewport.
func (c *Chart) drawPolyline(pts []series.Datapoint, vx, vy series.Range, style lipgloss.Style) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if a.IsGap() || b.IsGap() {
			continue
		}
		c.segment(a, b, vx, vy, style)
	}
	if len(pts) == 1 && !pts[0].IsGap() {
		c.segment(pts[0], pts[0], vx, vy, style)
	}
}

// drawFillEdge draws the band boundary at fill under every non-gap run.
func (c *Chart) drawFillEdge(pts []series.Datapoint, fill float64, vx, vy series.Range, style lipgloss.Style) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if a.IsGap() || b.IsGap() {
			continue
		}
		c.segment(series.Point(a.X, fill), series.Point(b.X, fill), vx, vy, style)
	}
}

func (c *Chart) segment(a, b series.Datapoint, vx, vy series.Range, style lipgloss.Style) {
	a, b, ok := clip(a, b, vx)
	if !ok {
		return
	}
	c.model.DrawBrailleLineWithStyle(
		canvas.Float64Point{X: a.X, Y: clamp(a.Y, vy)},
		canvas.Float64Point{X: b.X, Y: clamp(b.Y, vy)},
		style,
	)
}

// clip cuts the segment a-b to the horizontal extent of vx, interpolating Y
// at the cut. ok is false when the segment lies outside vx.
func clip(a, b series.Datapoint, vx series.Range) (series.Datapoint, series.Datapoint, bool) {
	if a.X > b.X {
		a, b = b, a
	}
	if b.X < vx.Min || a.X > vx.Max {
		return a, b, false
	}
	at := func(x float64) float64 {
		if b.X == a.X {
			return a.Y
		}
		return a.Y + (b.Y-a.Y)*(x-a.X)/(b.X-a.X)
	}
	if a.X < vx.Min {
		a = series.Point(vx.Min, at(vx.Min))
	}
	if b.X > vx.Max {
		b = series.Point(vx.Max, at(vx.Max))
	}
	return a, b, true
}

func clamp(y float64, vy series.Range) float64 {
	return math.Min(math.Max(y, vy.Min), vy.Max)
}
