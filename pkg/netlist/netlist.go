package netlist

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/kaminglui/circuit-sim/pkg/circuit"
)

// DeviceSpec describes one device before instantiation. Kind is a factory key
// ("R", "VDC", ...) and Nodes are resolved node ids.
type DeviceSpec struct {
	Name   string
	Kind   string
	Nodes  []int
	Params map[string]any
}

// Netlist is the compiled, solver-independent form of a circuit. Nodes is
// indexed by id and always starts with ground.
type Netlist struct {
	Nodes       []circuit.Node
	Devices     []DeviceSpec
	PointToNode map[Point]int
}

// Build instantiates every device into a fresh solver and finalizes it.
func (nl *Netlist) Build(opts ...circuit.Option) (*circuit.Solver, error) {
	s := circuit.New(opts...)

	for _, n := range nl.Nodes[1:] {
		s.AddNode(n.Name)
	}

	for _, spec := range nl.Devices {
		d, err := CreateDevice(spec)
		if err != nil {
			return nil, err
		}
		if err := s.AddDevice(d); err != nil {
			return nil, fmt.Errorf("adding device %s: %w", spec.Name, err)
		}
	}

	if err := s.Finalize(); err != nil {
		return nil, fmt.Errorf("finalizing circuit: %w", err)
	}
	return s, nil
}

// Override returns a copy of the netlist with one device parameter replaced.
func (nl *Netlist) Override(deviceName, key string, value any) (*Netlist, error) {
	idx := slices.IndexFunc(nl.Devices, func(d DeviceSpec) bool {
		return strings.EqualFold(d.Name, deviceName)
	})
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDevice, deviceName)
	}

	out := &Netlist{
		Nodes:       slices.Clone(nl.Nodes),
		Devices:     make([]DeviceSpec, len(nl.Devices)),
		PointToNode: maps.Clone(nl.PointToNode),
	}
	for i, d := range nl.Devices {
		d.Nodes = slices.Clone(d.Nodes)
		d.Params = maps.Clone(d.Params)
		out.Devices[i] = d
	}

	spec := &out.Devices[idx]
	if spec.Params == nil {
		spec.Params = make(map[string]any)
	}
	for k := range spec.Params {
		if strings.EqualFold(k, key) {
			delete(spec.Params, k)
		}
	}
	spec.Params[key] = value
	return out, nil
}

// Device looks up a device spec by name, case-insensitively.
func (nl *Netlist) Device(name string) (DeviceSpec, bool) {
	for _, d := range nl.Devices {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}
	return DeviceSpec{}, false
}

// NodeID looks up a node id by name, case-insensitively.
func (nl *Netlist) NodeID(name string) (int, bool) {
	for _, n := range nl.Nodes {
		if strings.EqualFold(n.Name, name) {
			return n.ID, true
		}
	}
	return 0, false
}
