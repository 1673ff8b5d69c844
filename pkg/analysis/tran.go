package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/kaminglui/circuit-sim/pkg/circuit"
)

// Transient steps the solver at a fixed dt from its current time to Stop.
// Samples before Start are solved but not stored.
type Transient struct {
	BaseAnalysis
	op     *OperatingPoint
	solver *circuit.Solver

	Start float64
	Stop  float64
	Step  float64
	UIC   bool // skip the initial operating point

	NonConverged int
}

func NewTransient(tStart, tStop, tStep float64, uic bool) *Transient {
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(),
		op:           NewOP(),
		Start:        tStart,
		Stop:         tStop,
		Step:         tStep,
		UIC:          uic,
	}
}

func (tr *Transient) Setup(s *circuit.Solver) error {
	if s == nil {
		return ErrNotSetup
	}
	if tr.Stop <= 0 || tr.Start < 0 || tr.Start > tr.Stop {
		return fmt.Errorf("%w: start=%g stop=%g", ErrBadRange, tr.Start, tr.Stop)
	}
	if err := s.SetTimeStep(tr.Step); err != nil {
		return fmt.Errorf("transient setup: %w", err)
	}
	tr.solver = s

	if !tr.UIC {
		tr.op.SetLogger(tr.log)
		if err := tr.op.Setup(s); err != nil {
			return fmt.Errorf("operating point setup error: %w", err)
		}
		if err := tr.op.Execute(context.Background()); err != nil {
			return fmt.Errorf("operating point analysis error: %w", err)
		}
	}
	return nil
}

func (tr *Transient) Execute(ctx context.Context) error {
	if tr.solver == nil {
		return ErrNotSetup
	}

	steps := int(math.Ceil((tr.Stop-tr.solver.Time())/tr.Step - 1e-9))
	for range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		converged, err := tr.solver.Step()
		if err != nil {
			return err
		}
		if !converged {
			tr.NonConverged++
		}

		if t := tr.solver.Time(); t >= tr.Start-tr.Step*1e-9 {
			tr.StoreTimeResult(t, tr.solver.Snapshot())
		}
	}

	if tr.NonConverged > 0 {
		tr.log.Warn("transient finished with non-converged steps", "steps", steps, "nonConverged", tr.NonConverged)
	}
	return nil
}
