package device

import "github.com/kaminglui/circuit-sim/pkg/matrix"

// DCCurrentSource drives Value amperes out of its n+ terminal into the
// circuit and takes it back in at n-.
type DCCurrentSource struct {
	BaseDevice
	Nodal
	Value float64
}

var _ Device = (*DCCurrentSource)(nil)

func NewDCCurrentSource(name string, nPlus, nMinus int, value float64) *DCCurrentSource {
	return &DCCurrentSource{
		BaseDevice: newBase(name, nPlus, nMinus),
		Value:      value,
	}
}

func (s *DCCurrentSource) Kind() Kind { return KindDCCurrent }

func (s *DCCurrentSource) StampDC(m matrix.DeviceMatrix, solution []float64) {
	stampCurrent(m, s.nodes[0], s.nodes[1], s.Value)
}

func (s *DCCurrentSource) StampTransient(m matrix.DeviceMatrix, solution []float64, dt, time float64) {
	s.StampDC(m, solution)
}
