package event

import (
	"testing"

	"github.com/BYTE-6D65/bigchart/pkg/series"
)

func TestNew(t *testing.T) {
	vp := series.Range{Min: 5000, Max: 8000}
	evt := New(Gesture, 2, 1500, vp)

	if evt.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if evt.Type != Gesture || evt.Chart != 2 || evt.At != 1500 {
		t.Errorf("Unexpected event %+v", evt)
	}
	if evt.Viewport != vp {
		t.Errorf("Expected viewport %v, got %v", vp, evt.Viewport)
	}

	other := New(Gesture, 2, 1500, vp)
	if other.ID == evt.ID {
		t.Error("IDs should be unique")
	}
}

func TestEvent_WithMetadataCopies(t *testing.T) {
	base := New(Update, 0, 0, series.DefaultRange).WithMetadata("dataset", "a")
	derived := base.WithMetadata("dataset", "b")

	if base.Metadata["dataset"] != "a" {
		t.Errorf("Original metadata modified: %v", base.Metadata)
	}
	if derived.Metadata["dataset"] != "b" {
		t.Errorf("Expected b, got %v", derived.Metadata)
	}
}

func TestEvent_WithCausationID(t *testing.T) {
	cause := New(Gesture, 0, 0, series.DefaultRange)
	effect := New(Propagate, 1, 1, series.DefaultRange).WithCausationID(cause.ID)
	if effect.CausationID != cause.ID {
		t.Errorf("Expected causation %s, got %s", cause.ID, effect.CausationID)
	}
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	codec := JSONCodec{}
	evt := New(Gesture, 1, 42, series.Range{Min: 1, Max: 2})
	evt.Kind = "zoom"
	evt.Source = "pressure"

	data, err := codec.Marshal(evt)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Event
	if err := codec.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.ID != evt.ID || back.Kind != "zoom" || back.Source != "pressure" || back.Viewport != evt.Viewport || back.At != 42 {
		t.Errorf("Round trip mismatch: %+v vs %+v", back, evt)
	}
}
