package device

import (
	"github.com/kaminglui/circuit-sim/internal/consts"
	"github.com/kaminglui/circuit-sim/pkg/matrix"
)

type Region int

const (
	Cutoff Region = iota
	Linear
	Saturation
)

func (r Region) String() string {
	switch r {
	case Cutoff:
		return "cutoff"
	case Linear:
		return "linear"
	default:
		return "saturation"
	}
}

// Mosfet is a three-terminal square-law MOSFET (drain, gate, source) with no
// body effect and no charge storage.
type Mosfet struct {
	BaseDevice
	Nodal
	Type   MOSType
	Params ProcessParams

	region Region
	ids    float64
	gmin   float64
}

var _ Shunted = (*Mosfet)(nil)

func NewMosfet(name string, typ MOSType, drain, gate, source int, params ProcessParams) *Mosfet {
	if params.L <= 0 {
		params.L = DefaultProcess(typ).L
	}
	return &Mosfet{
		BaseDevice: newBase(name, drain, gate, source),
		Type:       typ,
		Params:     params,
		gmin:       consts.Gmin,
	}
}

func (m *Mosfet) Kind() Kind { return KindMOSFET }

// SetGmin sets the drain-source shunt. Zero removes it.
func (m *Mosfet) SetGmin(g float64) {
	if g >= 0 {
		m.gmin = g
	}
}

// Region is the operating region found at the last stamp.
func (m *Mosfet) Region() Region { return m.region }

// DrainCurrent is the drain-to-source current at the last stamp.
func (m *Mosfet) DrainCurrent() float64 { return m.ids }

// Evaluate returns the drain current and its derivatives with respect to
// vgs and vds, all in the polarity-normalized (NMOS) frame.
func (m *Mosfet) Evaluate(vgs, vds float64) (ids, gm, gds float64, region Region) {
	if vds >= 0 {
		return m.forward(vgs, vds)
	}

	// Drain and source exchange roles; the gate now sees vgd.
	ids2, gm2, gds2, region := m.forward(vgs-vds, -vds)
	return -ids2, -gm2, gm2 + gds2, region
}

func (m *Mosfet) forward(vgs, vds float64) (ids, gm, gds float64, region Region) {
	p := m.Params
	vgt := vgs - p.VTO
	if vgt <= 0 {
		return 0, 0, 0, Cutoff
	}

	k := p.K()
	clm := 1 + p.Lambda*vds

	if vds < vgt {
		core := vgt*vds - 0.5*vds*vds
		ids = k * core * clm
		gm = k * vds * clm
		gds = k*(vgt-vds)*clm + k*p.Lambda*core
		return ids, gm, gds, Linear
	}

	ids = 0.5 * k * vgt * vgt * clm
	gm = k * vgt * clm
	gds = 0.5 * k * vgt * vgt * p.Lambda
	return ids, gm, gds, Saturation
}

// StampDC stamps the Newton companion model linearized at solution.
func (m *Mosfet) StampDC(mat matrix.DeviceMatrix, solution []float64) {
	d, g, s := m.nodes[0], m.nodes[1], m.nodes[2]
	pol := m.Type.polarity()

	vgs := pol * (solution[g] - solution[s])
	vds := pol * (solution[d] - solution[s])

	ids, gm, gds, region := m.Evaluate(vgs, vds)
	m.region = region
	m.ids = pol * ids

	mat.AddElement(d, d, gds)
	mat.AddElement(d, g, gm)
	mat.AddElement(d, s, -gds-gm)
	mat.AddElement(s, d, -gds)
	mat.AddElement(s, g, -gm)
	mat.AddElement(s, s, gds+gm)

	ieq := pol * (ids - gm*vgs - gds*vds)
	stampCurrent(mat, s, d, ieq)

	stampConductance(mat, d, s, m.gmin)
}

func (m *Mosfet) StampTransient(mat matrix.DeviceMatrix, solution []float64, dt, time float64) {
	m.StampDC(mat, solution)
}
