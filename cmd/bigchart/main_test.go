package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BYTE-6D65/bigchart/pkg/chart/term"
	"github.com/BYTE-6D65/bigchart/pkg/config"
	"github.com/BYTE-6D65/bigchart/pkg/engine"
	"github.com/BYTE-6D65/bigchart/pkg/series"
	"github.com/BYTE-6D65/bigchart/pkg/source"
)

// isolate keeps the user's config file and environment out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("BIGCHART_RANDOM_SEED", "7")
}

func runCLI(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestVersion(t *testing.T) {
	out, _, code := runCLI(t, "version")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "bigchart dev")
	assert.Contains(t, out, "Platform:")
}

func TestConfigCommand(t *testing.T) {
	isolate(t)
	t.Setenv("BIGCHART_AVERAGE_MAX_POINTS", "321")

	out, _, code := runCLI(t, "config")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "bigchart configuration:")
	assert.Contains(t, out, "321")
}

func TestConfigCommandMissingFile(t *testing.T) {
	isolate(t)

	_, errOut, code := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "config")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "does not exist")
}

func TestConfigCommandFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bigchart.toml")
	require.NoError(t, os.WriteFile(path, []byte("[decimation]\nrandom_max_points = 4321\n"), 0o644))

	out, _, code := runCLI(t, "--config", path, "config")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "4321")
}

func TestUnknownCommand(t *testing.T) {
	_, errOut, code := runCLI(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "bigchart:")
}

func TestRender(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	out, errOut, code := runCLI(t, "render", "-n", "5000", "-o", dir,
		"--width", "320", "--height", "160",
		"-g", "pan:1000:2000", "-g", "1@zoom:1200:1500")
	require.Equal(t, 0, code, errOut)

	paths := strings.Fields(out)
	require.Len(t, paths, 3)
	for _, p := range paths {
		assert.True(t, strings.HasSuffix(p, ".png"), p)
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Equal(t, filepath.Join(dir, "0-alerts.png"), paths[0])
}

func TestRenderBadGesture(t *testing.T) {
	isolate(t)

	_, errOut, code := runCLI(t, "render", "-n", "1000", "-o", t.TempDir(), "-g", "9@pan:1:2")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "only 3 charts")
}

func TestStats(t *testing.T) {
	isolate(t)

	out, errOut, code := runCLI(t, "stats", "-n", "20000", "--runs", "5", "--detail")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "20000 points, 5 runs each")
	assert.Contains(t, out, "alerts")
}

type exportedChart struct {
	Name      string       `json:"name"`
	ViewportX series.Range `json:"viewport_x"`
	Datasets  []struct {
		ID     string           `json:"id"`
		Kind   string           `json:"kind"`
		Fill   *float64         `json:"fill"`
		Points []map[string]any `json:"points"`
	} `json:"datasets"`
}

type exported struct {
	Series  string           `json:"series"`
	Samples int              `json:"samples"`
	Charts  []exportedChart  `json:"charts"`
	Journal []map[string]any `json:"journal"`
}

func TestExport(t *testing.T) {
	isolate(t)

	out, errOut, code := runCLI(t, "export", "-n", "3000", "-g", "zoom:100:600")
	require.Equal(t, 0, code, errOut)

	var doc exported
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "alerts", doc.Series)
	assert.Equal(t, 3000, doc.Samples)
	require.Len(t, doc.Charts, 3)

	for _, c := range doc.Charts {
		assert.Equal(t, series.Range{Min: 100, Max: 600}, c.ViewportX, c.Name)
		require.NotEmpty(t, c.Datasets, c.Name)
	}
	signal := doc.Charts[0]
	assert.Equal(t, "line", signal.Datasets[0].Kind)
	assert.NotEmpty(t, signal.Datasets[0].Points)
	for _, ds := range signal.Datasets[1:] {
		assert.NotNil(t, ds.Fill, ds.ID)
	}
	assert.NotEmpty(t, doc.Journal)
}

func TestExportToFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "out.json")

	out, errOut, code := runCLI(t, "export", "-n", "500", "--scenario", "wave", "-o", path)
	require.Equal(t, 0, code, errOut)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc exported
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Charts, 2)
}

func TestParseGesture(t *testing.T) {
	tests := []struct {
		in      string
		want    gesture
		wantErr bool
	}{
		{in: "pan:1:2", want: gesture{kind: "pan", min: 1, max: 2}},
		{in: "2@zoom:-5:5.5", want: gesture{chart: 2, kind: "zoom", min: -5, max: 5.5}},
		{in: "pan:2:1", wantErr: true},
		{in: "pan:1", wantErr: true},
		{in: "spin:1:2", wantErr: true},
		{in: "x@pan:1:2", wantErr: true},
		{in: "-1@pan:1:2", wantErr: true},
		{in: "pan:a:2", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseGesture(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "alerts_samples", fileName("alerts samples"))
	assert.Equal(t, "a_b-c", fileName("a/b-c"))
}

func newTestDemo(t *testing.T) demoModel {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RandomSeed = 3
	s, err := source.Generate(source.ScenarioWave, 2000, nil)
	require.NoError(t, err)

	eng := engine.New(engine.WithConfig(cfg))
	panels, err := buildPanels(eng, s, func(name string, x, y series.Range) colorHandle {
		return term.New(name, x, y, 40, 8)
	})
	require.NoError(t, err)
	full, _ := series.RangeOf(s.Time)
	return newDemoModel(eng, panels, full)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func step(t *testing.T, m demoModel, msg tea.Msg) demoModel {
	t.Helper()
	next, _ := m.Update(msg)
	dm, ok := next.(demoModel)
	require.True(t, ok)
	return dm
}

func TestDemoPanFollows(t *testing.T) {
	m := newTestDemo(t)
	before := m.charts[0].ViewportX()

	m = step(t, m, key("right"))
	m = step(t, m, frameMsg{})

	after := m.charts[0].ViewportX()
	assert.InDelta(t, before.Min+before.Span()*panStep, after.Min, 1e-9)
	assert.Equal(t, after, m.charts[1].ViewportX())
	assert.Equal(t, 1, m.frames)
	assert.NoError(t, m.err)
}

func TestDemoZoomFocusAndReset(t *testing.T) {
	m := newTestDemo(t)
	full := m.charts[1].ViewportX()

	m = step(t, m, key("tab"))
	assert.Equal(t, 1, m.focus)

	m = step(t, m, key("+"))
	m = step(t, m, frameMsg{})
	zoomed := m.charts[1].ViewportX()
	assert.InDelta(t, full.Span()/zoomStep, zoomed.Span(), 1e-9)
	assert.Equal(t, zoomed, m.charts[0].ViewportX())

	m = step(t, m, key("r"))
	m = step(t, m, frameMsg{})
	assert.Equal(t, m.full, m.charts[0].ViewportX())
}

func TestDemoVerticalZoomStaysLocal(t *testing.T) {
	m := newTestDemo(t)
	y0, y1 := m.charts[0].ViewportY(), m.charts[1].ViewportY()

	m = step(t, m, tea.KeyMsg{Type: tea.KeyShiftUp})
	m = step(t, m, frameMsg{})

	assert.InDelta(t, y0.Span()/zoomStep, m.charts[0].ViewportY().Span(), 1e-9)
	assert.Equal(t, y1, m.charts[1].ViewportY())
	assert.Equal(t, m.charts[0].ViewportX(), m.charts[1].ViewportX())
}

func TestDemoResizeAndView(t *testing.T) {
	m := newTestDemo(t)
	m = step(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, m.width)

	view := m.View()
	assert.Contains(t, view, "bigchart")
	assert.Contains(t, view, "journal")
	assert.Contains(t, view, "q quit")
}

func TestDemoQuit(t *testing.T) {
	m := newTestDemo(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
