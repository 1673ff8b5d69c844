package util

// BackwardEuler returns the coefficients of the first-order backward
// difference x'(n) ~ c0*x(n) + c1*x(n-1) for step dt.
func BackwardEuler(dt float64) (c0, c1 float64) {
	return 1.0 / dt, -1.0 / dt
}
