package device

import (
	"math"

	"github.com/kaminglui/circuit-sim/pkg/matrix"
)

// DCVoltageSource enforces v(n+) - v(n-) = Value.
type DCVoltageSource struct {
	BaseDevice
	Branch
	Value float64
}

var _ BranchDevice = (*DCVoltageSource)(nil)

func NewDCVoltageSource(name string, nPlus, nMinus int, value float64) *DCVoltageSource {
	return &DCVoltageSource{
		BaseDevice: newBase(name, nPlus, nMinus),
		Value:      value,
	}
}

func (v *DCVoltageSource) Kind() Kind { return KindDCVoltage }

func (v *DCVoltageSource) StampDC(m matrix.DeviceMatrix, solution []float64) {
	stampBranch(m, v.nodes[0], v.nodes[1], v.branchIdx)
	m.AddRHS(v.branchIdx, v.Value)
}

func (v *DCVoltageSource) StampTransient(m matrix.DeviceMatrix, solution []float64, dt, time float64) {
	v.StampDC(m, solution)
}

// ACVoltageSource is a sinusoid riding on a DC offset. Phase is in radians.
type ACVoltageSource struct {
	BaseDevice
	Branch
	VPeak  float64
	Freq   float64
	Phase  float64
	Offset float64
}

var _ BranchDevice = (*ACVoltageSource)(nil)

func NewACVoltageSource(name string, nPlus, nMinus int, vPeak, freq, phase, offset float64) *ACVoltageSource {
	return &ACVoltageSource{
		BaseDevice: newBase(name, nPlus, nMinus),
		VPeak:      vPeak,
		Freq:       freq,
		Phase:      phase,
		Offset:     offset,
	}
}

func (v *ACVoltageSource) Kind() Kind { return KindACVoltage }

// GetVoltage is the source value at absolute time t.
func (v *ACVoltageSource) GetVoltage(t float64) float64 {
	return v.Offset + v.VPeak*math.Sin(2.0*math.Pi*v.Freq*t+v.Phase)
}

// StampDC uses the offset only.
func (v *ACVoltageSource) StampDC(m matrix.DeviceMatrix, solution []float64) {
	stampBranch(m, v.nodes[0], v.nodes[1], v.branchIdx)
	m.AddRHS(v.branchIdx, v.Offset)
}

func (v *ACVoltageSource) StampTransient(m matrix.DeviceMatrix, solution []float64, dt, time float64) {
	stampBranch(m, v.nodes[0], v.nodes[1], v.branchIdx)
	m.AddRHS(v.branchIdx, v.GetVoltage(time))
}
