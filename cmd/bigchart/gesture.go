package main

import (
	"fmt"
	"strconv"
	"strings"
)

// gesturer is implemented by every chart bigchart draws; they all embed
// chart.Memory.
type gesturer interface {
	Pan(dx float64)
	PanTo(min, max float64)
	Zoom(factor, center float64)
	ZoomTo(min, max float64)
}

// gesture is a scripted pan or zoom on one chart.
type gesture struct {
	chart int
	kind  string // "pan" or "zoom"
	min   float64
	max   float64
}

// parseGesture reads "[chart@]pan:min:max" or "[chart@]zoom:min:max".
// The chart index defaults to 0.
func parseGesture(s string) (gesture, error) {
	var g gesture
	rest := s
	if at := strings.IndexByte(rest, '@'); at >= 0 {
		idx, err := strconv.Atoi(rest[:at])
		if err != nil || idx < 0 {
			return g, fmt.Errorf("gesture %q: bad chart index", s)
		}
		g.chart = idx
		rest = rest[at+1:]
	}

	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return g, fmt.Errorf("gesture %q: want kind:min:max", s)
	}
	switch parts[0] {
	case "pan", "zoom":
		g.kind = parts[0]
	default:
		return g, fmt.Errorf("gesture %q: unknown kind %q", s, parts[0])
	}

	var err error
	if g.min, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return g, fmt.Errorf("gesture %q: min: %w", s, err)
	}
	if g.max, err = strconv.ParseFloat(parts[2], 64); err != nil {
		return g, fmt.Errorf("gesture %q: max: %w", s, err)
	}
	if g.min >= g.max {
		return g, fmt.Errorf("gesture %q: min must be below max", s)
	}
	return g, nil
}

func parseGestures(gestures []string, charts int) ([]gesture, error) {
	out := make([]gesture, 0, len(gestures))
	for _, s := range gestures {
		g, err := parseGesture(s)
		if err != nil {
			return nil, err
		}
		if g.chart >= charts {
			return nil, fmt.Errorf("gesture %q: only %d charts", s, charts)
		}
		out = append(out, g)
	}
	return out, nil
}

func (g gesture) apply(c gesturer) {
	if g.kind == "zoom" {
		c.ZoomTo(g.min, g.max)
		return
	}
	c.PanTo(g.min, g.max)
}
