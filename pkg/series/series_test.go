package series

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
)

var nan = math.NaN()

func TestZip(t *testing.T) {
	pts, err := Zip([]float64{1, 2, 3}, []float64{4, nan, 6})
	if err != nil {
		t.Fatalf("Zip failed: %v", err)
	}
	if len(pts) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(pts))
	}
	if pts[0] != Point(1, 4) || pts[2] != Point(3, 6) {
		t.Errorf("Unexpected pairing: %v", pts)
	}
	if !pts[1].IsGap() || pts[1].X != 2 {
		t.Errorf("Expected gap at x=2, got %v", pts[1])
	}
}

func TestZip_LengthMismatch(t *testing.T) {
	_, err := Zip([]float64{1, 2, 3}, []float64{4, 5})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("Expected ErrLengthMismatch, got %v", err)
	}
}

func TestSkipRepeats(t *testing.T) {
	in := []Datapoint{
		Point(0, 1), Point(1, 1), Point(2, 1), Point(3, 2),
		Gap(4), Gap(5), Gap(6), Point(7, 2),
	}
	out := SkipRepeats(in)

	wantX := []float64{0, 2, 3, 4, 6, 7}
	if len(out) != len(wantX) {
		t.Fatalf("Expected %d points, got %d (%v)", len(wantX), len(out), out)
	}
	for i, x := range wantX {
		if out[i].X != x {
			t.Errorf("out[%d].X = %v, want %v", i, out[i].X, x)
		}
	}
	if len(in) != 8 {
		t.Error("Input should not be modified")
	}
}

func TestSkipRepeats_KeepsEnds(t *testing.T) {
	for n := 0; n < 12; n++ {
		in := make([]Datapoint, n)
		for i := range in {
			in[i] = Gap(float64(i))
		}
		out := SkipRepeats(in)
		if len(out) > len(in) {
			t.Fatalf("n=%d: output grew to %d", n, len(out))
		}
		if n == 0 {
			continue
		}
		if out[0].X != in[0].X {
			t.Errorf("n=%d: first point not preserved", n)
		}
		if out[len(out)-1].X != in[n-1].X {
			t.Errorf("n=%d: last point not preserved", n)
		}
		if n >= 3 && len(out) != 2 {
			t.Errorf("n=%d: flat run should compress to 2 points, got %d", n, len(out))
		}
	}
}

func TestSkipRepeats_ShortInputUnchanged(t *testing.T) {
	in := []Datapoint{Point(0, 1), Point(1, 1)}
	out := SkipRepeats(in)
	if len(out) != 2 {
		t.Errorf("Expected no-op below length 3, got %v", out)
	}
}

func TestRangeOf(t *testing.T) {
	r, ok := RangeOf([]float64{3, nan, -1, 7})
	if !ok {
		t.Fatal("Expected a range")
	}
	if r.Min != -1 || r.Max != 7 {
		t.Errorf("Expected [-1, 7], got %v", r)
	}

	if _, ok := RangeOf([]float64{nan, nan}); ok {
		t.Error("Expected no range for all-gap input")
	}
	if _, ok := RangeOf(nil); ok {
		t.Error("Expected no range for empty input")
	}
}

func TestCommonRange(t *testing.T) {
	r := CommonRange([][]float64{{1, 2, nan, 3}, {10, nan}})
	if r != (Range{Min: 1, Max: 10}) {
		t.Errorf("Expected {1, 10}, got %v", r)
	}

	if r := CommonRange(nil); r != DefaultRange {
		t.Errorf("Expected default range, got %v", r)
	}
	if r := CommonRange([][]float64{{}, {nan}}); r != DefaultRange {
		t.Errorf("Expected default range for empty series, got %v", r)
	}
}

func TestNewRange(t *testing.T) {
	if _, err := NewRange(2, 1); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", err)
	}
	r, err := NewRange(1, 1)
	if err != nil {
		t.Fatalf("Degenerate range should be valid: %v", err)
	}
	if r.Span() != 0 {
		t.Errorf("Expected zero span, got %v", r.Span())
	}
}

func TestParameterizedPosition(t *testing.T) {
	r := MustRange(10, 20)

	if v, err := ParameterizedPosition(0, r); err != nil || v != 10 {
		t.Errorf("t=0: got %v, %v", v, err)
	}
	if v, err := ParameterizedPosition(1, r); err != nil || v != 20 {
		t.Errorf("t=1: got %v, %v", v, err)
	}
	if v, err := ParameterizedPosition(0.25, r); err != nil || v != 12.5 {
		t.Errorf("t=0.25: got %v, %v", v, err)
	}
	for _, bad := range []float64{1.5, -0.1, nan} {
		if _, err := ParameterizedPosition(bad, r); !errors.Is(err, ErrInvalidProportion) {
			t.Errorf("t=%v: expected ErrInvalidProportion, got %v", bad, err)
		}
	}
}

func TestDatapoint_JSON(t *testing.T) {
	data, err := json.Marshal([]Datapoint{Point(1, 2.5), Gap(2)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"y":null`) {
		t.Errorf("Expected null y for gap, got %s", data)
	}

	var back []Datapoint
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(back) != 2 || back[0] != Point(1, 2.5) || !back[1].IsGap() {
		t.Errorf("Unexpected decode: %v", back)
	}
}
