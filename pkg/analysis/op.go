package analysis

import (
	"context"
	"fmt"

	"github.com/kaminglui/circuit-sim/pkg/circuit"
)

// OperatingPoint solves the DC operating point once and stores every node
// voltage and device current as a one-element series.
type OperatingPoint struct {
	BaseAnalysis
	solver *circuit.Solver
	Result circuit.Result
}

func NewOP() *OperatingPoint {
	return &OperatingPoint{BaseAnalysis: *NewBaseAnalysis()}
}

func (op *OperatingPoint) Setup(s *circuit.Solver) error {
	if s == nil {
		return ErrNotSetup
	}
	op.solver = s
	return nil
}

// Execute returns an error only when the solve itself fails. A
// non-converged result is reported through Result and still stored.
func (op *OperatingPoint) Execute(ctx context.Context) error {
	if op.solver == nil {
		return ErrNotSetup
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := op.solver.RunDC()
	op.Result = res
	if err != nil {
		return fmt.Errorf("operating point: %w", err)
	}
	if !res.Converged {
		op.log.Warn("operating point not converged", "iterations", res.Iterations, "residual", res.Residual)
	}

	op.storeResults(op.solver.Snapshot())
	return nil
}

func (op *OperatingPoint) storeResults(snapshot map[string]float64) {
	for name, value := range snapshot {
		op.results[name] = []float64{value}
	}
}
