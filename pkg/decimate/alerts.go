package decimate

import (
	"fmt"

	"github.com/BYTE-6D65/bigchart/pkg/series"
)

// Alerts downsamples a sparse categorical series whose Y values are either
// gaps or one single alert label.
//
// The X extent is cut into bins of opts.ChunkWidth. Each bin becomes two
// points, its first and last X, labelled with the alert if any point inside
// the bin carries it and with a gap otherwise. Adjacent flat runs are merged
// with SkipRepeats, so long quiet stretches collapse to their edges and no
// alert, however short, disappears.
func Alerts(points []series.Datapoint, opts Options) ([]series.Datapoint, error) {
	if len(points) <= 2 {
		return points, nil
	}

	width := opts.ChunkWidth
	if width == 0 {
		width = (points[len(points)-1].X - points[0].X) / (DefaultLength / 2)
	}
	if !(width > 0) {
		return nil, fmt.Errorf("%w: got %g", series.ErrInvalidBinWidth, width)
	}

	label, ok, err := alertLabel(points)
	if err != nil {
		return nil, err
	}
	if !ok {
		return points, nil
	}

	if len(points) <= opts.maxPoints(DefaultLength/2) {
		return points, nil
	}

	out := make([]series.Datapoint, 0, DefaultLength)
	start := 0
	hit := !points[0].IsGap()
	for i := 1; i < len(points); i++ {
		if !points[i].IsGap() {
			hit = true
		}
		if i != len(points)-1 && points[i].X-points[start].X < width {
			continue
		}

		if hit {
			out = append(out, series.Point(points[start].X, label), series.Point(points[i].X, label))
		} else {
			out = append(out, series.Gap(points[start].X), series.Gap(points[i].X))
		}

		start = i + 1
		hit = start < len(points) && !points[start].IsGap()
	}
	return series.SkipRepeats(out), nil
}

// alertLabel returns the single non-gap Y value of points. ok is false when
// every point is a gap.
func alertLabel(points []series.Datapoint) (label float64, ok bool, err error) {
	for _, p := range points {
		if p.IsGap() {
			continue
		}
		if !ok {
			label, ok = p.Y, true
			continue
		}
		if p.Y != label {
			return 0, false, fmt.Errorf("%w: %g and %g", series.ErrMultipleAlertValues, label, p.Y)
		}
	}
	return label, ok, nil
}
