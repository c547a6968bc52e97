package viewport

import (
	"testing"

	"github.com/BYTE-6D65/bigchart/pkg/series"
)

func line(n int) []series.Datapoint {
	pts := make([]series.Datapoint, n)
	for i := range pts {
		pts[i] = series.Point(float64(i*10), float64(i))
	}
	return pts
}

func xs(pts []series.Datapoint) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.X
	}
	return out
}

func TestVisibleSlice_IncludesBoundaryPoints(t *testing.T) {
	full := line(11) // X = 0, 10, ..., 100

	got := xs(VisibleSlice(full, 25, 55))
	want := []float64{20, 30, 40, 50, 60}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
}

func TestVisibleSlice_ExactEdges(t *testing.T) {
	full := line(11)

	// Points sitting exactly on the edges are inside; the neighbours outside
	// are still added.
	got := xs(VisibleSlice(full, 30, 50))
	if len(got) != 5 || got[0] != 20 || got[4] != 60 {
		t.Errorf("Expected [20..60], got %v", got)
	}
}

func TestVisibleSlice_ClampsAtSeriesEnds(t *testing.T) {
	full := line(11)

	got := xs(VisibleSlice(full, -50, 15))
	if got[0] != 0 || got[len(got)-1] != 20 {
		t.Errorf("Expected [0..20], got %v", got)
	}

	got = xs(VisibleSlice(full, 85, 500))
	if got[0] != 80 || got[len(got)-1] != 100 {
		t.Errorf("Expected [80..100], got %v", got)
	}

	if got := VisibleSlice(full, -1e9, 1e9); len(got) != len(full) {
		t.Errorf("Expected whole series, got %d points", len(got))
	}
}

func TestVisibleSlice_NeverEmpty(t *testing.T) {
	full := line(11)

	cases := []struct {
		name     string
		min, max float64
	}{
		{"left of data", -100, -50},
		{"right of data", 200, 300},
		{"between samples", 41, 42},
		{"inverted", 70, 30},
	}
	for _, tc := range cases {
		if got := VisibleSlice(full, tc.min, tc.max); len(got) == 0 {
			t.Errorf("%s: got empty slice", tc.name)
		}
	}

	got := xs(VisibleSlice(full, 41, 42))
	if len(got) != 2 || got[0] != 40 || got[1] != 50 {
		t.Errorf("Expected the two samples around the gap, got %v", got)
	}
}

func TestVisibleSlice_Empty(t *testing.T) {
	if got := VisibleSlice(nil, 0, 1); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}

func TestVisibleSlice_Aliases(t *testing.T) {
	full := line(5)
	got := VisibleSlice(full, 10, 30)
	if &got[0] != &full[0] {
		t.Error("Expected the slice to alias the full series")
	}
}

func TestBounds(t *testing.T) {
	r, ok := Bounds(line(11))
	if !ok || r.Min != 0 || r.Max != 100 {
		t.Errorf("Expected [0, 100], got %v (%v)", r, ok)
	}
	if _, ok := Bounds(nil); ok {
		t.Error("Expected no bounds for empty series")
	}
}
