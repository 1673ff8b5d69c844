package device

import (
	"fmt"
	"strings"
)

type MOSType int

const (
	NMOS MOSType = iota
	PMOS
)

func (t MOSType) String() string {
	switch t {
	case NMOS:
		return "NMOS"
	case PMOS:
		return "PMOS"
	default:
		return fmt.Sprintf("MOSType(%d)", int(t))
	}
}

// polarity flips terminal voltages so PMOS can share the NMOS equations.
func (t MOSType) polarity() float64 {
	if t == PMOS {
		return -1
	}
	return 1
}

// ParseMOSType accepts "NMOS" or "PMOS" in any case. An empty string is NMOS.
func ParseMOSType(s string) (MOSType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NMOS", "N":
		return NMOS, nil
	case "PMOS", "P":
		return PMOS, nil
	default:
		return NMOS, fmt.Errorf("unknown MOS type %q", s)
	}
}

// ProcessParams are square-law model parameters. VTO is a magnitude for both
// polarities.
type ProcessParams struct {
	VTO    float64 // threshold voltage (V)
	KPrime float64 // process transconductance (A/V^2)
	Lambda float64 // channel-length modulation (1/V)
	W      float64 // channel width (m)
	L      float64 // channel length (m)
}

var processTable = map[MOSType]ProcessParams{
	NMOS: {VTO: 0.7, KPrime: 110e-6, Lambda: 0.04, W: 2e-6, L: 1e-6},
	PMOS: {VTO: 0.7, KPrime: 50e-6, Lambda: 0.05, W: 2e-6, L: 1e-6},
}

func DefaultProcess(t MOSType) ProcessParams {
	return processTable[t]
}

// K is KPrime*(W/L).
func (p ProcessParams) K() float64 {
	return p.KPrime * p.W / p.L
}
