package analysis

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
)

var (
	ErrNotSetup = errors.New("analysis: solver not set")
	ErrBadSweep = errors.New("analysis: invalid sweep")
	ErrBadRange = errors.New("analysis: invalid time range")
)

// Axis keys. Every other result key is V(node) or I(device).
const (
	KeyTime  = "TIME"
	KeySweep = "SWEEP"
)

type Analysis interface {
	Execute(ctx context.Context) error
	GetResults() map[string][]float64
}

type BaseAnalysis struct {
	results map[string][]float64 // key: variable name, value: series
	log     *slog.Logger
}

func NewBaseAnalysis() *BaseAnalysis {
	return &BaseAnalysis{
		results: make(map[string][]float64),
		log:     slog.Default(),
	}
}

func (a *BaseAnalysis) SetLogger(l *slog.Logger) {
	if l != nil {
		a.log = l
	}
}

// StoreTimeResult appends one sample for every variable. A repeated time is
// ignored.
func (a *BaseAnalysis) StoreTimeResult(time float64, snapshot map[string]float64) {
	a.storeRow(KeyTime, time, snapshot)
}

func (a *BaseAnalysis) storeRow(axis string, x float64, snapshot map[string]float64) {
	if xs := a.results[axis]; len(xs) > 0 && xs[len(xs)-1] == x {
		return
	}

	a.results[axis] = append(a.results[axis], x)
	for name, value := range snapshot {
		a.results[name] = append(a.results[name], value)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

// SortedKeys lists result keys with the axis first, then node voltages, then
// branch currents, each alphabetically.
func SortedKeys(results map[string][]float64) []string {
	rank := func(k string) int {
		switch {
		case k == KeyTime || k == KeySweep:
			return 0
		case strings.HasPrefix(k, "V("):
			return 1
		case strings.HasPrefix(k, "I("):
			return 2
		default:
			return 3
		}
	}

	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a, b)
	})
	return keys
}
