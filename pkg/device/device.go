package device

import (
	"fmt"
	"strings"

	"github.com/kaminglui/circuit-sim/pkg/matrix"
)

// Kind is the closed set of device types the simulator can stamp.
type Kind int

const (
	KindResistor Kind = iota
	KindCapacitor
	KindInductor
	KindDCVoltage
	KindACVoltage
	KindDCCurrent
	KindMOSFET
	numKinds
)

var kindNames = [numKinds]string{
	KindResistor:  "R",
	KindCapacitor: "C",
	KindInductor:  "L",
	KindDCVoltage: "VDC",
	KindACVoltage: "VAC",
	KindDCCurrent: "IDC",
	KindMOSFET:    "MOS",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Terminals is the number of circuit nodes a device of this kind touches.
func (k Kind) Terminals() int {
	if k == KindMOSFET {
		return 3
	}
	return 2
}

// ParseKind maps a factory key ("R", "VDC", ...) to its Kind. Matching is
// case-insensitive.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(k), true
		}
	}
	return 0, false
}

// Kinds lists every device kind in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, numKinds)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// Device is the stamping contract every circuit element implements.
//
// The solution slices handed to devices are system indexed: index 0 is ground
// and always zero, index k is node k or the k-th unknown overall.
type Device interface {
	Name() string
	Kind() Kind
	NodeIndices() []int

	// ExtraVars is the number of branch-current unknowns the device owns.
	ExtraVars() int
	// AssignExtra claims ExtraVars() slots starting at start and returns the
	// next free index.
	AssignExtra(start int) int

	StampDC(m matrix.DeviceMatrix, solution []float64)
	StampTransient(m matrix.DeviceMatrix, solution []float64, dt, time float64)
	UpdateState(solution []float64, dt float64)
}

// BranchDevice is implemented by devices that carry a branch-current unknown.
type BranchDevice interface {
	Device
	BranchIndex() int
}

// Shunted is implemented by devices that stamp their own GMIN conductance.
// The solver hands them its gmin at finalize.
type Shunted interface {
	Device
	SetGmin(g float64)
}

type BaseDevice struct {
	name  string
	nodes []int
}

func newBase(name string, nodes ...int) BaseDevice {
	return BaseDevice{name: name, nodes: nodes}
}

func (d *BaseDevice) Name() string { return d.name }

func (d *BaseDevice) NodeIndices() []int {
	out := make([]int, len(d.nodes))
	copy(out, d.nodes)
	return out
}

func (d *BaseDevice) UpdateState(solution []float64, dt float64) {}

// Nodal devices own no extra unknowns.
type Nodal struct{}

func (Nodal) ExtraVars() int            { return 0 }
func (Nodal) AssignExtra(start int) int { return start }

// Branch devices own one branch-current unknown.
type Branch struct {
	branchIdx int
}

func (b *Branch) ExtraVars() int { return 1 }

func (b *Branch) AssignExtra(start int) int {
	b.branchIdx = start
	return start + 1
}

// BranchIndex is the system index of the branch current, valid after
// AssignExtra.
func (b *Branch) BranchIndex() int { return b.branchIdx }
