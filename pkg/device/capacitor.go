package device

import (
	"github.com/kaminglui/circuit-sim/internal/consts"
	"github.com/kaminglui/circuit-sim/pkg/matrix"
	"github.com/kaminglui/circuit-sim/pkg/util"
)

type Capacitor struct {
	BaseDevice
	Nodal
	Value float64
	vPrev float64 // voltage across n1-n2 at the last accepted solve
}

var _ Device = (*Capacitor)(nil)

func NewCapacitor(name string, n1, n2 int, value float64) *Capacitor {
	if value < consts.MinCapacitance {
		value = consts.MinCapacitance
	}
	return &Capacitor{
		BaseDevice: newBase(name, n1, n2),
		Value:      value,
	}
}

func (c *Capacitor) Kind() Kind { return KindCapacitor }

// SetInitialVoltage seeds the history used by the first transient step.
func (c *Capacitor) SetInitialVoltage(v float64) { c.vPrev = v }

// Voltage is the voltage across the capacitor at the last accepted solve.
func (c *Capacitor) Voltage() float64 { return c.vPrev }

// StampDC leaves the capacitor open.
func (c *Capacitor) StampDC(m matrix.DeviceMatrix, solution []float64) {}

func (c *Capacitor) StampTransient(m matrix.DeviceMatrix, solution []float64, dt, time float64) {
	n1, n2 := c.nodes[0], c.nodes[1]

	c0, c1 := util.BackwardEuler(dt)
	geq := c.Value * c0
	ieq := -c.Value * c1 * c.vPrev

	stampConductance(m, n1, n2, geq)
	stampCurrent(m, n1, n2, ieq)
}

func (c *Capacitor) UpdateState(solution []float64, dt float64) {
	c.vPrev = voltageAcross(solution, c.nodes[0], c.nodes[1])
}
