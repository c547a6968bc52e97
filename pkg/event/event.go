// Package event records what happened inside a sync group: completed
// gestures, viewports mirrored to peer charts and buffer updates.
package event

import (
	"github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/BYTE-6D65/bigchart/pkg/clock"
	"github.com/BYTE-6D65/bigchart/pkg/series"
)

// Type names what an Event records.
type Type string

const (
	// Gesture is a pan or zoom completed by the user on a chart.
	Gesture Type = "gesture"

	// Propagate is a viewport written to a peer chart on the next frame.
	Propagate Type = "propagate"

	// Update is a dataset buffer recomputed from the visible window.
	Update Type = "update"
)

// Event is one journal entry.
type Event struct {
	// ID is a unique identifier for this event instance
	ID string `json:"id"`

	Type Type `json:"type"`

	// Chart is the sync-group index of the chart the event happened on.
	Chart int `json:"chart"`

	// Source is the chart's display name, if it has one.
	Source string `json:"source,omitempty"`

	// Kind is "pan" or "zoom" for gestures.
	Kind string `json:"kind,omitempty"`

	// At is the monotonic time the event was recorded.
	At clock.MonoTime `json:"at"`

	// Viewport is the horizontal range the chart showed afterwards.
	Viewport series.Range `json:"viewport"`

	// CausationID identifies the event that directly caused this one:
	// propagations point at their gesture.
	CausationID string `json:"causation_id,omitempty"`

	// Metadata provides additional context for debugging
	Metadata map[string]string `json:"metadata,omitempty"`
}

// New creates an event with a generated ID.
func New(typ Type, chart int, at clock.MonoTime, viewport series.Range) Event {
	return Event{
		ID:       uuid.New().String(),
		Type:     typ,
		Chart:    chart,
		At:       at,
		Viewport: viewport,
	}
}

// WithMetadata adds a metadata key-value pair to the event.
func (e Event) WithMetadata(key, value string) Event {
	md := make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		md[k] = v
	}
	md[key] = value
	e.Metadata = md
	return e
}

// WithCausationID links the event to its cause.
func (e Event) WithCausationID(id string) Event {
	e.CausationID = id
	return e
}

// Codec defines how events are serialized.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec implements Codec with go-json-experiment.
type JSONCodec struct{}

func (JSONCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
