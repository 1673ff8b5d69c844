package consts

// Solver defaults.
const (
	VTol           = 1e-6 // Residual norm tolerance for Newton convergence
	ITol           = 1e-9 // Reserved for current-based convergence
	DtMin          = 1e-9 // Adaptive stepping lower bound (s)
	DtMax          = 1e-3 // Adaptive stepping upper bound (s)
	TimeStep       = 1e-5 // Default transient step (s)
	MaxNewtonIters = 20
	Gmin           = 1e-12 // Node-to-ground shunt conductance (S)
	PivotEpsilon   = 1e-15 // Pivots below this magnitude mean a singular system
)

// Device value floors. Degenerate component values are clamped, never rejected.
const (
	MinResistance  = 1e-12
	MinCapacitance = 1e-15
	MinInductance  = 1e-12
)

// Device parameter defaults when a key is absent.
const (
	DefaultResistance  = 1e3
	DefaultCapacitance = 1e-6
	DefaultInductance  = 1e-3
	DefaultACFrequency = 60.0
)
