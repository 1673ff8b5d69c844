package analysis

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"

	"github.com/sourcegraph/conc/pool"

	"github.com/kaminglui/circuit-sim/pkg/circuit"
	"github.com/kaminglui/circuit-sim/pkg/device"
	"github.com/kaminglui/circuit-sim/pkg/netlist"
)

// DCSweep solves the operating point for each value of one DC source. Every
// point gets its own solver built from the netlist, so points run in
// parallel; results come back in sweep order.
type DCSweep struct {
	BaseAnalysis
	netlist *netlist.Netlist
	key     string
	opts    []circuit.Option

	Source  string
	Start   float64
	Stop    float64
	Step    float64
	Workers int // <= 0 means GOMAXPROCS

	NonConverged int
}

type sweepPoint struct {
	index     int
	value     float64
	snapshot  map[string]float64
	converged bool
}

func NewDCSweep(source string, start, stop, step float64) *DCSweep {
	return &DCSweep{
		BaseAnalysis: *NewBaseAnalysis(),
		Source:       source,
		Start:        start,
		Stop:         stop,
		Step:         step,
	}
}

// Setup binds the netlist and the solver options used for every point. The
// source must be a DC voltage or current source.
func (dc *DCSweep) Setup(nl *netlist.Netlist, opts ...circuit.Option) error {
	if nl == nil {
		return ErrNotSetup
	}

	spec, ok := nl.Device(dc.Source)
	if !ok {
		return fmt.Errorf("%w: source %s not found", ErrBadSweep, dc.Source)
	}
	kind, _ := device.ParseKind(spec.Kind)
	switch kind {
	case device.KindDCVoltage:
		dc.key = "V"
	case device.KindDCCurrent:
		dc.key = "I"
	default:
		return fmt.Errorf("%w: %s is a %s, not a DC source", ErrBadSweep, dc.Source, spec.Kind)
	}

	if _, err := dc.Values(); err != nil {
		return err
	}

	dc.netlist = nl
	dc.opts = opts
	return nil
}

// Values lists the sweep points from Start to Stop inclusive.
func (dc *DCSweep) Values() ([]float64, error) {
	span := dc.Stop - dc.Start
	if dc.Step == 0 || math.IsNaN(dc.Step) || (span != 0 && math.Signbit(span) != math.Signbit(dc.Step)) {
		return nil, fmt.Errorf("%w: step %g cannot go from %g to %g", ErrBadSweep, dc.Step, dc.Start, dc.Stop)
	}

	n := int(math.Floor(span/dc.Step+1e-9)) + 1
	values := make([]float64, n)
	for i := range values {
		values[i] = dc.Start + float64(i)*dc.Step
	}
	return values, nil
}

func (dc *DCSweep) Execute(ctx context.Context) error {
	if dc.netlist == nil {
		return ErrNotSetup
	}

	values, err := dc.Values()
	if err != nil {
		return err
	}

	workers := dc.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := pool.NewWithResults[sweepPoint]().
		WithContext(ctx).
		WithMaxGoroutines(workers).
		WithCancelOnError()

	for i, v := range values {
		p.Go(func(ctx context.Context) (sweepPoint, error) {
			return dc.solvePoint(ctx, i, v)
		})
	}

	points, err := p.Wait()
	if err != nil {
		return fmt.Errorf("dc sweep %s: %w", dc.Source, err)
	}

	slices.SortFunc(points, func(a, b sweepPoint) int { return a.index - b.index })
	for _, pt := range points {
		if !pt.converged {
			dc.NonConverged++
			dc.log.Warn("sweep point not converged", "source", dc.Source, "value", pt.value)
		}
		dc.storeRow(KeySweep, pt.value, pt.snapshot)
	}
	return nil
}

func (dc *DCSweep) solvePoint(ctx context.Context, index int, value float64) (sweepPoint, error) {
	if err := ctx.Err(); err != nil {
		return sweepPoint{}, err
	}

	nl, err := dc.netlist.Override(dc.Source, dc.key, value)
	if err != nil {
		return sweepPoint{}, err
	}
	s, err := nl.Build(dc.opts...)
	if err != nil {
		return sweepPoint{}, err
	}

	res, err := s.RunDC()
	if err != nil {
		return sweepPoint{}, fmt.Errorf("%s=%g: %w", dc.Source, value, err)
	}

	return sweepPoint{
		index:     index,
		value:     value,
		snapshot:  s.Snapshot(),
		converged: res.Converged,
	}, nil
}
