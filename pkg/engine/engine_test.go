package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BYTE-6D65/bigchart/pkg/chart"
	"github.com/BYTE-6D65/bigchart/pkg/clock"
	"github.com/BYTE-6D65/bigchart/pkg/config"
	"github.com/BYTE-6D65/bigchart/pkg/dataset"
	"github.com/BYTE-6D65/bigchart/pkg/event"
	"github.com/BYTE-6D65/bigchart/pkg/series"
)

func newTestEngine(t *testing.T, opts ...EngineOption) *Engine {
	t.Helper()
	base := []EngineOption{
		WithRegistry(prometheus.NewRegistry()),
		WithClock(clock.NewStepClock(time.Millisecond)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return New(append(base, opts...)...)
}

func ramp(n int) (xs, ys []float64) {
	xs = make([]float64, n)
	ys = make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
		ys[i] = float64(i % 100)
	}
	return xs, ys
}

func TestNew(t *testing.T) {
	eng := New(WithRegistry(prometheus.NewRegistry()))
	if eng == nil {
		t.Fatal("New returned nil")
	}

	if _, ok := eng.Clock().(*clock.SystemClock); !ok {
		t.Error("Expected default clock to be *SystemClock")
	}
	if eng.Config() != config.DefaultConfig() {
		t.Error("Expected default config")
	}
	if eng.Journal() == nil || eng.Loop() == nil || eng.Manager() == nil || eng.Metrics() == nil {
		t.Error("Expected every component to be created")
	}
	if eng.Logger() == nil {
		t.Error("Logger should not be nil")
	}
}

func TestEngine_WithJournal(t *testing.T) {
	j := event.NewJournal(8)
	eng := newTestEngine(t, WithJournal(j))
	if eng.Journal() != j {
		t.Error("Expected the supplied journal")
	}
}

func TestEngine_ConfiguredThresholds(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AverageMaxPoints = 100
	eng := newTestEngine(t, WithConfig(cfg))

	xs, ys := ramp(10000)
	p, err := eng.Line(xs, ys, "signal")
	if err != nil {
		t.Fatalf("Line failed: %v", err)
	}
	if got := p.Binding.Strategy().MaxPoints(); got != 100 {
		t.Errorf("Expected threshold 100, got %d", got)
	}

	c := chart.NewMemory("a", series.MustRange(0, 9999), series.MustRange(0, 100))
	if err := p.Update(c, "0"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if n := len(c.Buffer("0")); n > 100 {
		t.Errorf("Expected at most 100 points, got %d", n)
	}
}

func TestEngine_SeededScatter(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RandomSeed = 7

	xs, ys := ramp(6000)
	a, err := newTestEngine(t, WithConfig(cfg)).Scatter(xs, ys, "a")
	if err != nil {
		t.Fatalf("Scatter failed: %v", err)
	}
	b, err := newTestEngine(t, WithConfig(cfg)).Scatter(xs, ys, "b")
	if err != nil {
		t.Fatalf("Scatter failed: %v", err)
	}

	pa, pb := a.Dataset.Points, b.Dataset.Points
	if len(pa) != 2000 || len(pb) != 2000 {
		t.Fatalf("Expected 2000 points each, got %d and %d", len(pa), len(pb))
	}
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("Same seed diverged at %d: %v vs %v", i, pa[i], pb[i])
		}
	}
}

func TestEngine_AlertBands(t *testing.T) {
	eng := newTestEngine(t)
	xs := []float64{0, 1, 2, 3, 4, 5}
	alerts := []float64{1, 1, 2, 2, 1, 3}

	plots, err := eng.AlertBands(xs, alerts, []float64{3}, map[float64]string{1: "low"})
	if err != nil {
		t.Fatalf("AlertBands failed: %v", err)
	}
	if labels := dataset.Group(plots).Labels(); len(labels) != 2 || labels[0] != "low" || labels[1] != "2" {
		t.Errorf("Unexpected labels %v", labels)
	}

	fixed, err := eng.FixedYAlertBands(xs, alerts, nil, nil, series.MustRange(0, 10), series.MustRange(0.8, 1))
	if err != nil {
		t.Fatalf("FixedYAlertBands failed: %v", err)
	}
	if len(fixed) != 3 || fixed[0].Dataset.Fill != 10 {
		t.Errorf("Expected 3 bands filled to 10, got %d bands", len(fixed))
	}
}

func TestEngine_LinkedPan(t *testing.T) {
	eng := newTestEngine(t)
	xs, ys := ramp(10000)

	full := series.MustRange(0, 9999)
	a := chart.NewMemory("a", full, series.MustRange(0, 100))
	b := chart.NewMemory("b", full, series.MustRange(0, 100))

	for _, c := range []*chart.Memory{a, b} {
		p, err := eng.Line(xs, ys, c.Name())
		if err != nil {
			t.Fatalf("Line failed: %v", err)
		}
		eng.Link(c, dataset.Group{p})
	}
	if n := len(b.Buffer("0")); n != 2000 {
		t.Fatalf("Expected 2000 attached points, got %d", n)
	}
	if _, ok := eng.Group(a); !ok {
		t.Fatal("Expected chart a to have a group")
	}

	eng.Sync()
	if err := eng.Post(func() { a.PanTo(5000, 8000) }); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if err := eng.Settle(context.Background()); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	if got := b.ViewportX(); got.Min != 5000 || got.Max != 8000 {
		t.Fatalf("Expected b at [5000, 8000], got %v", got)
	}
	buf := b.Buffer("0")
	if len(buf) == 0 || len(buf) > 2000 {
		t.Fatalf("Expected a decimated window, got %d points", len(buf))
	}
	if buf[0].X < 4999 || buf[len(buf)-1].X > 8001 {
		t.Errorf("Window [%v, %v] exceeds the viewport and its boundary points", buf[0].X, buf[len(buf)-1].X)
	}

	gestures := eng.Journal().Filter(event.Gesture)
	if len(gestures) != 1 {
		t.Fatalf("Expected 1 gesture, got %d", len(gestures))
	}
	if caused := eng.Journal().CausedBy(gestures[0].ID); len(caused) != 1 {
		t.Errorf("Expected 1 propagation caused by the gesture, got %d", len(caused))
	}

	updates := eng.Journal().Filter(event.Update)
	if len(updates) != 2 {
		t.Fatalf("Expected 2 buffer updates, got %d", len(updates))
	}
	if updates[0].Source != "a" || updates[1].Source != "b" || updates[1].Chart != 1 {
		t.Errorf("Unexpected updates %+v", updates)
	}
	if updates[1].Metadata["points"] != strconv.Itoa(len(buf)) {
		t.Errorf("Expected %d points recorded, got %q", len(buf), updates[1].Metadata["points"])
	}
}

func TestEngine_Shutdown(t *testing.T) {
	eng := newTestEngine(t)
	c := chart.NewMemory("a", series.MustRange(0, 10), series.MustRange(0, 1))
	eng.Link(c, nil)

	ran := false
	_ = eng.Post(func() { ran = true })

	if err := eng.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !ran {
		t.Error("Expected queued events to run before shutdown")
	}
	if !c.Destroyed() {
		t.Error("Expected linked chart to be destroyed")
	}
	if eng.Manager().Len() != 0 {
		t.Error("Expected empty sync group")
	}
	if _, ok := eng.Group(c); ok {
		t.Error("Expected groups to be cleared")
	}
	if err := eng.Post(func() {}); err == nil {
		t.Error("Expected Post after shutdown to fail")
	}
}

func TestEngine_ShutdownCancelled(t *testing.T) {
	eng := newTestEngine(t)
	c := chart.NewMemory("a", series.MustRange(0, 10), series.MustRange(0, 1))
	eng.Link(c, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := eng.Shutdown(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if !c.Destroyed() {
		t.Error("Expected charts to be destroyed even when cancelled")
	}
}

func TestEngine_Run(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FrameInterval = time.Millisecond
	eng := newTestEngine(t, WithConfig(cfg))

	done := make(chan struct{})
	_ = eng.Post(func() { close(done) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- eng.Run(ctx) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("Run did not process the posted event")
	}
	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
