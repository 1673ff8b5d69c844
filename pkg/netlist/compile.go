package netlist

import (
	"fmt"
	"maps"

	"github.com/kaminglui/circuit-sim/pkg/circuit"
	"github.com/kaminglui/circuit-sim/pkg/device"
)

// Compile resolves schematic connectivity into nodes and device specs.
//
// Pins and wire vertices are interned into an arena and merged with
// union-find along wires. Classes holding a ground symbol pin or a pin with a
// GND net label become node 0. Every other class that holds at least one
// device pin gets the next id, in the order its first point was registered.
// Wire-only classes with no device pin get no node.
func Compile(s *Schematic) (*Netlist, error) {
	a := newArena()
	groundKeys := make(map[int]bool)
	pinIndex := make([][]int, len(s.Components))

	for ci, c := range s.Components {
		pinIndex[ci] = make([]int, len(c.Pins))
		for pi, pin := range c.Pins {
			i := a.add(pin.Point())
			pinIndex[ci][pi] = i
			if c.isGround() || pin.isGroundNet() {
				groundKeys[i] = true
			}
		}
	}

	for _, w := range s.Wires {
		prev := -1
		for _, p := range w.Points {
			i := a.add(p)
			if prev >= 0 {
				a.union(prev, i)
			}
			prev = i
		}
	}

	if len(groundKeys) == 0 {
		return nil, fmt.Errorf("compiling schematic: no ground symbol or GND net: %w", ErrNoReference)
	}

	groundRoots := make(map[int]bool, len(groundKeys))
	for i := range groundKeys {
		groundRoots[a.find(i)] = true
	}

	devicePinRoots := make(map[int]bool)
	for ci, c := range s.Components {
		if c.isGround() {
			continue
		}
		for _, i := range pinIndex[ci] {
			devicePinRoots[a.find(i)] = true
		}
	}

	nodeOfRoot := make(map[int]int)
	next := 1
	for i := 0; i < a.len(); i++ {
		r := a.find(i)
		if _, seen := nodeOfRoot[r]; seen {
			continue
		}
		switch {
		case groundRoots[r]:
			nodeOfRoot[r] = 0
		case devicePinRoots[r]:
			nodeOfRoot[r] = next
			next++
		}
	}

	nl := &Netlist{
		Nodes:       make([]circuit.Node, next),
		PointToNode: make(map[Point]int),
	}
	for id := range nl.Nodes {
		nl.Nodes[id] = circuit.Node{ID: id, Name: circuit.NodeName(id)}
	}
	for i, p := range a.points {
		if id, ok := nodeOfRoot[a.find(i)]; ok {
			nl.PointToNode[p] = id
		}
	}

	for ci, c := range s.Components {
		if c.isGround() {
			continue
		}

		kind, ok := device.ParseKind(c.Kind)
		if !ok {
			return nil, fmt.Errorf("component %s: %w: %q", componentName(c, ci), ErrUnknownDevice, c.Kind)
		}
		if len(c.Pins) != kind.Terminals() {
			return nil, fmt.Errorf("component %s: %w: %s needs %d pins, got %d",
				componentName(c, ci), ErrPinCount, kind, kind.Terminals(), len(c.Pins))
		}

		nodes := make([]int, len(c.Pins))
		for pi, pin := range c.Pins {
			if pin.isGroundNet() {
				nodes[pi] = 0
				continue
			}
			nodes[pi] = nodeOfRoot[a.find(pinIndex[ci][pi])]
		}

		nl.Devices = append(nl.Devices, DeviceSpec{
			Name:   componentName(c, ci),
			Kind:   kind.String(),
			Nodes:  nodes,
			Params: maps.Clone(c.Params),
		})
	}

	return nl, nil
}

func componentName(c Component, index int) string {
	if c.ID != "" {
		return c.ID
	}
	return fmt.Sprintf("%s%d", c.Kind, index+1)
}
