package device

import (
	"math"
	"testing"

	"github.com/kaminglui/circuit-sim/internal/consts"
)

type cell struct{ i, j int }

// recorder is a DeviceMatrix that keeps every stamp, ground included.
type recorder struct {
	g   map[cell]float64
	rhs map[int]float64
}

func newRecorder() *recorder {
	return &recorder{g: map[cell]float64{}, rhs: map[int]float64{}}
}

func (r *recorder) AddElement(i, j int, value float64) { r.g[cell{i, j}] += value }
func (r *recorder) AddRHS(i int, value float64)        { r.rhs[i] += value }

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestKinds(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}

	tests := []struct {
		in        string
		want      Kind
		ok        bool
		terminals int
	}{
		{"r", KindResistor, true, 2},
		{"vdc", KindDCVoltage, true, 2},
		{"VAC", KindACVoltage, true, 2},
		{"Mos", KindMOSFET, true, 3},
		{"GND", 0, false, 0},
		{"BJT", 0, false, 0},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseKind(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
		if ok && got.Terminals() != tt.terminals {
			t.Errorf("%v.Terminals() = %d, want %d", got, got.Terminals(), tt.terminals)
		}
	}
}

func TestValueFloors(t *testing.T) {
	if r := NewResistor("R", 1, 0, 0); r.Value != consts.MinResistance {
		t.Errorf("resistor floor = %g", r.Value)
	}
	if c := NewCapacitor("C", 1, 0, 0); c.Value != consts.MinCapacitance {
		t.Errorf("capacitor floor = %g", c.Value)
	}
	if l := NewInductor("L", 1, 0, -1); l.Value != consts.MinInductance {
		t.Errorf("inductor floor = %g", l.Value)
	}
}

func TestResistorStamp(t *testing.T) {
	rec := newRecorder()
	r := NewResistor("R1", 1, 2, 500)
	r.StampDC(rec, []float64{0, 0, 0})

	want := map[cell]float64{
		{1, 1}: 2e-3, {1, 2}: -2e-3,
		{2, 1}: -2e-3, {2, 2}: 2e-3,
	}
	for c, v := range want {
		if !near(rec.g[c], v, 1e-15) {
			t.Errorf("G%v = %g, want %g", c, rec.g[c], v)
		}
	}
	if got := r.Current([]float64{0, 3, 1}); !near(got, 4e-3, 1e-15) {
		t.Errorf("Current = %g, want 4e-3", got)
	}
}

func TestVoltageSourceStamp(t *testing.T) {
	v := NewDCVoltageSource("V1", 1, 2, 9)
	if next := v.AssignExtra(5); next != 6 || v.BranchIndex() != 5 {
		t.Fatalf("AssignExtra(5) = %d, branch %d", next, v.BranchIndex())
	}

	rec := newRecorder()
	v.StampDC(rec, make([]float64, 6))

	want := map[cell]float64{
		{1, 5}: 1, {2, 5}: -1,
		{5, 1}: 1, {5, 2}: -1,
	}
	for c, val := range want {
		if rec.g[c] != val {
			t.Errorf("G%v = %g, want %g", c, rec.g[c], val)
		}
	}
	if rec.rhs[5] != 9 {
		t.Errorf("RHS[5] = %g, want 9", rec.rhs[5])
	}
}

func TestACVoltageSource(t *testing.T) {
	v := NewACVoltageSource("V1", 1, 0, 2, 50, math.Pi/2, 1)
	v.AssignExtra(2)

	if got := v.GetVoltage(0); !near(got, 3, 1e-12) {
		t.Errorf("v(0) = %g, want 3", got)
	}
	if got := v.GetVoltage(0.01); !near(got, -1, 1e-12) {
		t.Errorf("v(10ms) = %g, want -1", got)
	}

	dc := newRecorder()
	v.StampDC(dc, make([]float64, 3))
	if dc.rhs[2] != 1 {
		t.Errorf("DC stamp uses %g, want offset 1", dc.rhs[2])
	}

	tr := newRecorder()
	v.StampTransient(tr, make([]float64, 3), 1e-5, 0.005)
	if !near(tr.rhs[2], v.GetVoltage(0.005), 1e-12) {
		t.Errorf("transient stamp uses %g, want %g", tr.rhs[2], v.GetVoltage(0.005))
	}
}

func TestCapacitorCompanion(t *testing.T) {
	c := NewCapacitor("C1", 1, 0, 1e-6)

	dc := newRecorder()
	c.StampDC(dc, []float64{0, 0})
	if len(dc.g) != 0 || len(dc.rhs) != 0 {
		t.Errorf("capacitor stamped at DC: %v %v", dc.g, dc.rhs)
	}

	c.UpdateState([]float64{0, 2}, 1e-5)
	if c.Voltage() != 2 {
		t.Fatalf("vPrev = %g, want 2", c.Voltage())
	}

	tr := newRecorder()
	c.StampTransient(tr, []float64{0, 2}, 1e-5, 1e-5)
	if !near(tr.g[cell{1, 1}], 0.1, 1e-12) {
		t.Errorf("geq = %g, want C/dt = 0.1", tr.g[cell{1, 1}])
	}
	if !near(tr.rhs[1], 0.2, 1e-12) {
		t.Errorf("ieq = %g, want geq*vPrev = 0.2", tr.rhs[1])
	}
}

func TestInductorCompanion(t *testing.T) {
	l := NewInductor("L1", 1, 2, 1e-3)
	l.AssignExtra(3)
	l.SetInitialCurrent(0.5)

	tr := newRecorder()
	l.StampTransient(tr, make([]float64, 4), 1e-4, 1e-4)

	if !near(tr.g[cell{3, 3}], -10, 1e-12) {
		t.Errorf("G[b,b] = %g, want -L/dt = -10", tr.g[cell{3, 3}])
	}
	if !near(tr.rhs[3], -5, 1e-12) {
		t.Errorf("RHS[b] = %g, want -(L/dt)*iPrev = -5", tr.rhs[3])
	}

	l.UpdateState([]float64{0, 0, 0, 0.75}, 1e-4)
	if l.Current() != 0.75 {
		t.Errorf("iPrev = %g, want 0.75", l.Current())
	}
}

func TestCurrentSourceStamp(t *testing.T) {
	rec := newRecorder()
	NewDCCurrentSource("I1", 1, 2, 3e-3).StampDC(rec, []float64{0, 0, 0})
	if rec.rhs[1] != 3e-3 || rec.rhs[2] != -3e-3 {
		t.Errorf("RHS = %v", rec.rhs)
	}
	if len(rec.g) != 0 {
		t.Errorf("current source stamped G: %v", rec.g)
	}
}

func TestNodeIndicesIsCopy(t *testing.T) {
	r := NewResistor("R1", 1, 2, 1)
	n := r.NodeIndices()
	n[0] = 9
	if r.NodeIndices()[0] != 1 {
		t.Error("NodeIndices exposed internal slice")
	}
}
