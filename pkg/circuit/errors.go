package circuit

import "errors"

var (
	ErrNotFinalized     = errors.New("circuit: solver not finalized")
	ErrAlreadyFinalized = errors.New("circuit: solver already finalized")
	ErrNoReference      = errors.New("circuit: no device connects to the reference node")
	ErrBadTimeStep      = errors.New("circuit: invalid time step")
	ErrNodeRange        = errors.New("circuit: node index out of range")
)
