package netlist

import (
	"errors"

	"github.com/kaminglui/circuit-sim/pkg/circuit"
)

var (
	ErrUnknownDevice = errors.New("netlist: unknown device type")
	ErrPinCount      = errors.New("netlist: wrong pin count")
	ErrBadParam      = errors.New("netlist: invalid parameter")
	ErrSyntax        = errors.New("netlist: syntax error")
	ErrFormat        = errors.New("netlist: unsupported file format")
	ErrNoDevice      = errors.New("netlist: no such device")

	// ErrNoReference is the solver's error, so callers can match either layer.
	ErrNoReference = circuit.ErrNoReference
)
