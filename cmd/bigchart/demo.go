package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/BYTE-6D65/bigchart/pkg/chart/term"
	"github.com/BYTE-6D65/bigchart/pkg/engine"
	"github.com/BYTE-6D65/bigchart/pkg/series"
)

const (
	panStep  = 0.1
	zoomStep = 1.25
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			PaddingLeft(2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262"))

	focusedPanelStyle = panelStyle.
				BorderForeground(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00A9E0")).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			PaddingLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			PaddingLeft(2)
)

// frameMsg asks the model to run one frame of the engine loop.
type frameMsg struct{}

type demoModel struct {
	eng      *engine.Engine
	panels   []panel
	charts   []*term.Chart
	full     series.Range
	interval time.Duration

	focus  int
	width  int
	height int
	frames int
	err    error
}

func newDemoModel(eng *engine.Engine, panels []panel, full series.Range) demoModel {
	charts := make([]*term.Chart, len(panels))
	for i, p := range panels {
		charts[i] = p.handle.(*term.Chart)
	}
	return demoModel{
		eng:      eng,
		panels:   panels,
		charts:   charts,
		full:     full,
		interval: eng.Config().FrameInterval,
	}
}

func (m demoModel) Init() tea.Cmd {
	return m.frame()
}

func (m demoModel) frame() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func (m demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case frameMsg:
		loop := m.eng.Loop()
		loop.Drain()
		loop.Tick()
		m.frames++
		return m, m.frame()
	}
	return m, nil
}

func (m demoModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.charts) == 0 {
		return m, tea.Quit
	}
	c := m.charts[m.focus]
	x, y := c.ViewportX(), c.ViewportY()
	span := x.Span()
	center := x.Min + span/2
	ySpan := y.Span()
	yCenter := y.Min + ySpan/2

	var g func()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "tab":
		m.focus = (m.focus + 1) % len(m.charts)
	case "shift+tab":
		m.focus = (m.focus + len(m.charts) - 1) % len(m.charts)
	case "left", "h":
		g = func() { c.Pan(-span * panStep) }
	case "right", "l":
		g = func() { c.Pan(span * panStep) }
	case "up", "+", "=":
		g = func() { c.Zoom(zoomStep, center) }
	case "down", "-":
		g = func() { c.Zoom(1/zoomStep, center) }
	case "shift+up", "K":
		g = func() { c.ZoomY(zoomStep, yCenter) }
	case "shift+down", "J":
		g = func() { c.ZoomY(1/zoomStep, yCenter) }
	case "pgup":
		g = func() { c.PanY(ySpan * panStep) }
	case "pgdown":
		g = func() { c.PanY(-ySpan * panStep) }
	case "r":
		g = func() { c.ZoomTo(m.full.Min, m.full.Max) }
	}
	if g != nil {
		m.err = m.eng.Post(g)
	}
	return m, nil
}

// resize splits the window between the charts, leaving room for the title,
// status and help lines.
func (m *demoModel) resize() {
	if len(m.charts) == 0 || m.width == 0 {
		return
	}
	w := max(m.width-2, 10)
	h := max((m.height-4)/len(m.charts)-2, 4)
	for _, c := range m.charts {
		c.Resize(w, h)
	}
}

func (m demoModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("bigchart"))
	b.WriteString("\n")
	for i, c := range m.charts {
		style := panelStyle
		if i == m.focus {
			style = focusedPanelStyle
		}
		b.WriteString(style.Render(c.View()))
		b.WriteString("\n")
	}

	if len(m.charts) > 0 {
		focused := m.charts[m.focus]
		b.WriteString(statusStyle.Render(fmt.Sprintf("%s  x %s  journal %d  frames %d",
			focused.Name(), focused.ViewportX(), m.eng.Journal().Len(), m.frames)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("←/→ pan • ↑/↓ zoom • pgup/pgdn pan y • shift+↑/↓ zoom y • r reset • tab focus • q quit"))
	return b.String()
}

func newDemoCmd(flags *rootFlags) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Explore linked charts in the terminal",
		Long: `Demo opens the linked charts for a series in the terminal. Panning or
zooming the focused chart moves every other chart with it.`,
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
				return term.New(name, x, y, cfg.ChartWidth, cfg.ChartHeight)
			})
			if err != nil {
				return err
			}
			full, _ := series.RangeOf(s.Time)

			p := tea.NewProgram(newDemoModel(eng, panels, full),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil {
				return err
			}
			return eng.Shutdown(cmd.Context())
		},
	}

	addSourceFlags(cmd, &src)
	return cmd
}
