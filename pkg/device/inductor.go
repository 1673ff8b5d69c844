package device

import (
	"github.com/kaminglui/circuit-sim/internal/consts"
	"github.com/kaminglui/circuit-sim/pkg/matrix"
	"github.com/kaminglui/circuit-sim/pkg/util"
)

type Inductor struct {
	BaseDevice
	Branch
	Value float64
	iPrev float64 // branch current at the last accepted solve
}

var _ BranchDevice = (*Inductor)(nil)

func NewInductor(name string, n1, n2 int, value float64) *Inductor {
	if value < consts.MinInductance {
		value = consts.MinInductance
	}
	return &Inductor{
		BaseDevice: newBase(name, n1, n2),
		Value:      value,
	}
}

func (l *Inductor) Kind() Kind { return KindInductor }

// SetInitialCurrent seeds the history used by the first transient step.
func (l *Inductor) SetInitialCurrent(i float64) { l.iPrev = i }

// Current is the branch current at the last accepted solve.
func (l *Inductor) Current() float64 { return l.iPrev }

// StampDC treats the inductor as a 0 V source.
func (l *Inductor) StampDC(m matrix.DeviceMatrix, solution []float64) {
	stampBranch(m, l.nodes[0], l.nodes[1], l.branchIdx)
}

// StampTransient stamps v1 - v2 - (L/dt)*i = -(L/dt)*iPrev.
func (l *Inductor) StampTransient(m matrix.DeviceMatrix, solution []float64, dt, time float64) {
	b := l.branchIdx
	stampBranch(m, l.nodes[0], l.nodes[1], b)

	c0, c1 := util.BackwardEuler(dt)
	m.AddElement(b, b, -l.Value*c0)
	m.AddRHS(b, l.Value*c1*l.iPrev)
}

func (l *Inductor) UpdateState(solution []float64, dt float64) {
	l.iPrev = solution[l.branchIdx]
}
