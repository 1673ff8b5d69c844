package circuit

import (
	"log/slog"

	"github.com/kaminglui/circuit-sim/pkg/matrix"
)

type Option func(*Solver)

// WithTolerances sets the residual norm tolerance and the reserved current
// tolerance.
func WithTolerances(vTol, iTol float64) Option {
	return func(s *Solver) {
		if vTol > 0 {
			s.vTol = vTol
		}
		if iTol > 0 {
			s.iTol = iTol
		}
	}
}

func WithMaxNewtonIters(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.maxIters = n
		}
	}
}

// WithTimeStep sets the fixed transient step. Non-positive values keep the
// default.
func WithTimeStep(dt float64) Option {
	return func(s *Solver) {
		if dt > 0 {
			s.dt = dt
		}
	}
}

// WithStepBounds sets the limits reserved for adaptive stepping. The fixed
// step is not checked against them.
func WithStepBounds(dtMin, dtMax float64) Option {
	return func(s *Solver) {
		s.dtMin = dtMin
		s.dtMax = dtMax
	}
}

// WithGmin sets the node-to-ground shunt conductance. Zero disables it.
func WithGmin(g float64) Option {
	return func(s *Solver) {
		if g >= 0 {
			s.gmin = g
		}
	}
}

func WithBackend(b matrix.Backend) Option {
	return func(s *Solver) { s.backend = b }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) {
		if l != nil {
			s.log = l
		}
	}
}
