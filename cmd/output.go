package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/kaminglui/circuit-sim/pkg/analysis"
	"github.com/kaminglui/circuit-sim/pkg/util"
)

func unitOf(key string) string {
	switch {
	case key == analysis.KeyTime:
		return "s"
	case strings.HasPrefix(key, "I("):
		return "A"
	default:
		return "V"
	}
}

// printOperatingPoint writes one line per node voltage and device current.
func printOperatingPoint(w io.Writer, results map[string][]float64) {
	fmt.Fprintln(w, "Operating point:")
	for _, k := range analysis.SortedKeys(results) {
		fmt.Fprintf(w, "  %-12s = %s\n", k, util.FormatValueFactor(results[k][0], unitOf(k)))
	}
}

// printSeries writes one row per sample of the axis series.
func printSeries(w io.Writer, results map[string][]float64, axis string, keys []string) {
	xs := results[axis]
	for i, x := range xs {
		fmt.Fprintf(w, "%s=%-12s", axis, util.FormatValueFactor(x, unitOf(axis)))
		for _, k := range keys {
			if k == axis {
				continue
			}
			ys := results[k]
			if i < len(ys) {
				fmt.Fprintf(w, "  %s=%s", k, util.FormatValueFactor(ys[i], unitOf(k)))
			}
		}
		fmt.Fprintln(w)
	}
}

// probeKeys maps user probes to result keys: "N001" becomes "V(N001)" and
// "I(V1)" is kept.
func probeKeys(probes []string, results map[string][]float64) ([]string, error) {
	if len(probes) == 0 {
		var keys []string
		for _, k := range analysis.SortedKeys(results) {
			if k != analysis.KeyTime && k != analysis.KeySweep {
				keys = append(keys, k)
			}
		}
		return keys, nil
	}

	keys := make([]string, 0, len(probes))
	for _, p := range probes {
		key := p
		if !strings.HasPrefix(p, "V(") && !strings.HasPrefix(p, "I(") {
			key = "V(" + p + ")"
		}
		if _, ok := results[key]; !ok {
			return nil, fmt.Errorf("no result named %s", key)
		}
		keys = append(keys, key)
	}
	return keys, nil
}
