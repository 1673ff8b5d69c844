package circuit

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/kaminglui/circuit-sim/internal/consts"
	"github.com/kaminglui/circuit-sim/pkg/device"
	"github.com/kaminglui/circuit-sim/pkg/matrix"
)

type Node struct {
	ID   int
	Name string
}

// NodeName is the conventional display name for a node id.
func NodeName(id int) string {
	if id == 0 {
		return "GND"
	}
	return fmt.Sprintf("N%03d", id)
}

// Result reports the outcome of one Newton-Raphson solve.
type Result struct {
	Converged  bool
	Iterations int
	Residual   float64
}

// Solver owns the node table, the devices and the unknown vector of one
// circuit. All entry points are serialized by a per-solver mutex.
type Solver struct {
	mu sync.Mutex

	nodes   []Node
	devices []device.Device

	finalized   bool
	numUnknowns int
	sys         matrix.System
	x           []float64 // system indexed, x[0] is ground

	time float64
	dt   float64

	vTol     float64
	iTol     float64
	dtMin    float64
	dtMax    float64
	gmin     float64
	maxIters int
	backend  matrix.Backend

	log *slog.Logger
}

func New(opts ...Option) *Solver {
	s := &Solver{
		nodes:    []Node{{ID: 0, Name: NodeName(0)}},
		dt:       consts.TimeStep,
		vTol:     consts.VTol,
		iTol:     consts.ITol,
		dtMin:    consts.DtMin,
		dtMax:    consts.DtMax,
		gmin:     consts.Gmin,
		maxIters: consts.MaxNewtonIters,
		backend:  matrix.DenseBackend,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddNode registers the next node id and returns it. An empty name gets the
// conventional one. Nodes cannot be added after Finalize; -1 is returned.
func (s *Solver) AddNode(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return -1
	}
	id := len(s.nodes)
	if name == "" {
		name = NodeName(id)
	}
	s.nodes = append(s.nodes, Node{ID: id, Name: name})
	return id
}

func (s *Solver) AddDevice(d device.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return fmt.Errorf("adding device %s: %w", d.Name(), ErrAlreadyFinalized)
	}
	for _, n := range d.NodeIndices() {
		if n < 0 || n >= len(s.nodes) {
			return fmt.Errorf("device %s node %d: %w", d.Name(), n, ErrNodeRange)
		}
	}
	s.devices = append(s.devices, d)
	return nil
}

// Finalize assigns branch unknowns and fixes the system size.
func (s *Solver) Finalize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized {
		return ErrAlreadyFinalized
	}

	numNodes := len(s.nodes) - 1
	if numNodes > 0 && !s.touchesGround() {
		return ErrNoReference
	}

	next := numNodes + 1
	for _, d := range s.devices {
		next = d.AssignExtra(next)
		if sh, ok := d.(device.Shunted); ok {
			sh.SetGmin(s.gmin)
		}
	}

	s.numUnknowns = next - 1
	s.sys = matrix.NewSystem(s.backend, s.numUnknowns)
	s.x = make([]float64, s.numUnknowns+1)
	s.finalized = true

	s.log.Debug("solver finalized",
		"nodes", numNodes,
		"devices", len(s.devices),
		"unknowns", s.numUnknowns,
		"backend", s.backend.String())
	return nil
}

func (s *Solver) touchesGround() bool {
	for _, d := range s.devices {
		for _, n := range d.NodeIndices() {
			if n == 0 {
				return true
			}
		}
	}
	return false
}

// RunDC solves the operating point. Device history is updated only when the
// solve converges.
func (s *Solver) RunDC() (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finalized {
		return Result{}, ErrNotFinalized
	}

	res, err := s.newton(func(d device.Device, m matrix.DeviceMatrix, x []float64) {
		d.StampDC(m, x)
	})
	if err != nil {
		return res, fmt.Errorf("dc operating point: %w", err)
	}

	if !res.Converged {
		s.log.Warn("dc operating point did not converge",
			"iterations", res.Iterations,
			"residual", res.Residual)
		return res, nil
	}

	s.updateState(0)
	return res, nil
}

// StepTransient solves one backward-Euler step at absolute time t with the
// current dt, then updates device history and advances the solver time by dt
// whether or not the step converged.
func (s *Solver) StepTransient(t float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stepTransient(t)
}

// Step advances one dt from the current solver time.
func (s *Solver) Step() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stepTransient(s.time + s.dt)
}

// stepTransient expects s.mu to be held.
func (s *Solver) stepTransient(t float64) (bool, error) {
	if !s.finalized {
		return false, ErrNotFinalized
	}

	dt := s.dt
	res, err := s.newton(func(d device.Device, m matrix.DeviceMatrix, x []float64) {
		d.StampTransient(m, x, dt, t)
	})
	if err != nil {
		return false, fmt.Errorf("transient step at t=%g: %w", t, err)
	}

	if !res.Converged {
		s.log.Warn("transient step did not converge",
			"time", t,
			"iterations", res.Iterations,
			"residual", res.Residual)
	}

	s.updateState(dt)
	s.time += dt
	return res.Converged, nil
}

type stampFunc func(d device.Device, m matrix.DeviceMatrix, x []float64)

// newton rebuilds the system at the current candidate each iteration and
// solves for the full next candidate, not an increment.
func (s *Solver) newton(stamp stampFunc) (Result, error) {
	cand := make([]float64, len(s.x))
	copy(cand, s.x)

	var residual float64
	for iter := 1; iter <= s.maxIters; iter++ {
		s.sys.Clear()
		for _, d := range s.devices {
			stamp(d, s.sys, cand)
		}
		s.loadGmin()

		residual = s.sys.Residual(cand)
		s.log.Debug("newton iteration", "iter", iter, "residual", residual)

		if residual < s.vTol {
			copy(s.x, cand)
			return Result{Converged: true, Iterations: iter, Residual: residual}, nil
		}

		next, err := s.sys.Solve()
		if err != nil {
			return Result{Iterations: iter, Residual: residual}, fmt.Errorf("newton iteration %d: %w", iter, err)
		}
		copy(cand, next)
		cand[0] = 0
	}

	copy(s.x, cand)
	return Result{Converged: false, Iterations: s.maxIters, Residual: residual}, nil
}

func (s *Solver) loadGmin() {
	if s.gmin <= 0 {
		return
	}
	for i := 1; i < len(s.nodes); i++ {
		s.sys.AddElement(i, i, s.gmin)
	}
}

func (s *Solver) updateState(dt float64) {
	for _, d := range s.devices {
		d.UpdateState(s.x, dt)
	}
}

// Solution is a copy of the unknown vector: node voltages for ids 1..N in
// order, then branch currents in device order.
func (s *Solver) Solution() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.x) == 0 {
		return []float64{}
	}
	out := make([]float64, len(s.x)-1)
	copy(out, s.x[1:])
	return out
}

// NodeVoltage returns the solved voltage of a node id; ground and unknown ids
// read 0.
func (s *Solver) NodeVoltage(id int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id <= 0 || id >= len(s.nodes) || id >= len(s.x) {
		return 0
	}
	return s.x[id]
}

func (s *Solver) Time() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.time
}

func (s *Solver) TimeStep() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dt
}

// SetTimeStep sets the fixed transient step. Any positive finite dt is
// accepted; the step bounds are not applied to it.
func (s *Solver) SetTimeStep(dt float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: dt=%g", ErrBadTimeStep, dt)
	}
	s.dt = dt
	return nil
}

// StepBounds are the limits reserved for an adaptive step controller.
func (s *Solver) StepBounds() (dtMin, dtMax float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dtMin, s.dtMax
}

func (s *Solver) Devices() []device.Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]device.Device, len(s.devices))
	copy(out, s.devices)
	return out
}

func (s *Solver) Device(name string) (device.Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.devices {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// Nodes lists every node including ground.
func (s *Solver) Nodes() []Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

func (s *Solver) NumUnknowns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.numUnknowns
}

// Snapshot returns the solution keyed for reporting: V(node) for every
// non-ground node, I(device) for branch devices, resistors and MOSFETs.
func (s *Solver) Snapshot() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]float64)
	if !s.finalized {
		return out
	}

	for _, n := range s.nodes[1:] {
		out[fmt.Sprintf("V(%s)", n.Name)] = s.x[n.ID]
	}

	for _, d := range s.devices {
		key := fmt.Sprintf("I(%s)", d.Name())
		switch dev := d.(type) {
		case device.BranchDevice:
			out[key] = s.x[dev.BranchIndex()]
		case *device.Resistor:
			out[key] = dev.Current(s.x)
		case *device.Mosfet:
			out[key] = dev.DrainCurrent()
		}
	}
	return out
}

// DumpSystem writes the equations stamped by the last Newton iteration.
func (s *Solver) DumpSystem(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finalized {
		return ErrNotFinalized
	}
	s.sys.Print(w)
	return nil
}
