package device

import "github.com/kaminglui/circuit-sim/pkg/matrix"

// stampConductance adds g between n1 and n2.
func stampConductance(m matrix.DeviceMatrix, n1, n2 int, g float64) {
	m.AddElement(n1, n1, g)
	m.AddElement(n1, n2, -g)
	m.AddElement(n2, n1, -g)
	m.AddElement(n2, n2, g)
}

// stampBranch couples branch b to nodes n1 and n2: the branch current leaves
// n1 and enters n2, and row b reads v(n1) - v(n2).
func stampBranch(m matrix.DeviceMatrix, n1, n2, b int) {
	m.AddElement(n1, b, 1)
	m.AddElement(n2, b, -1)
	m.AddElement(b, n1, 1)
	m.AddElement(b, n2, -1)
}

// stampCurrent injects i into n1 and draws it back out of n2.
func stampCurrent(m matrix.DeviceMatrix, n1, n2 int, i float64) {
	m.AddRHS(n1, i)
	m.AddRHS(n2, -i)
}

func voltageAcross(solution []float64, n1, n2 int) float64 {
	return solution[n1] - solution[n2]
}
