package util

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SavePlot draws results[keys...] against results[xKey] and writes the image
// to path. The format follows the file extension (.png, .svg, .pdf, ...).
// With no keys every series except xKey is drawn, sorted by name.
func SavePlot(path, title string, results map[string][]float64, xKey string, keys []string) error {
	xs, ok := results[xKey]
	if !ok {
		return fmt.Errorf("plot: no %q series", xKey)
	}

	if len(keys) == 0 {
		for k := range results {
			if k != xKey {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xKey
	p.Y.Label.Text = axisLabel(keys)

	lines := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		ys, ok := results[k]
		if !ok {
			return fmt.Errorf("plot: no %q series", k)
		}
		if len(ys) != len(xs) {
			return fmt.Errorf("plot: series %q has %d points, %s has %d", k, len(ys), xKey, len(xs))
		}

		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i].X = xs[i]
			pts[i].Y = ys[i]
		}
		lines = append(lines, k, pts)
	}

	if err := plotutil.AddLines(p, lines...); err != nil {
		return fmt.Errorf("plot: adding lines: %v", err)
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("plot: saving %s: %v", path, err)
	}
	return nil
}

func axisLabel(keys []string) string {
	volts, amps := false, false
	for _, k := range keys {
		switch {
		case strings.HasPrefix(k, "V("):
			volts = true
		case strings.HasPrefix(k, "I("):
			amps = true
		}
	}
	switch {
	case volts && !amps:
		return "Voltage (V)"
	case amps && !volts:
		return "Current (A)"
	default:
		return "Value"
	}
}
