package device

import (
	"github.com/kaminglui/circuit-sim/internal/consts"
	"github.com/kaminglui/circuit-sim/pkg/matrix"
)

type Resistor struct {
	BaseDevice
	Nodal
	Value float64
}

var _ Device = (*Resistor)(nil)

func NewResistor(name string, n1, n2 int, value float64) *Resistor {
	if value < consts.MinResistance {
		value = consts.MinResistance
	}
	return &Resistor{
		BaseDevice: newBase(name, n1, n2),
		Value:      value,
	}
}

func (r *Resistor) Kind() Kind { return KindResistor }

func (r *Resistor) StampDC(m matrix.DeviceMatrix, solution []float64) {
	stampConductance(m, r.nodes[0], r.nodes[1], 1.0/r.Value)
}

func (r *Resistor) StampTransient(m matrix.DeviceMatrix, solution []float64, dt, time float64) {
	r.StampDC(m, solution)
}

// Current is the current flowing from n1 to n2 at the given solution.
func (r *Resistor) Current(solution []float64) float64 {
	return voltageAcross(solution, r.nodes[0], r.nodes[1]) / r.Value
}
