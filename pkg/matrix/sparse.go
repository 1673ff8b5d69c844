package matrix

import (
	"fmt"
	"io"
	"math"

	"github.com/edp1096/sparse"
	"gonum.org/v1/gonum/floats"
)

type triplet struct {
	row, col int
	value    float64
}

// Sparse collects stamps as triplets and hands them to a Markowitz-ordered
// sparse LU factorization on every Solve. The sparse matrix is rebuilt per
// solve because element handles move when the factorization reorders rows.
type Sparse struct {
	size    int
	entries []triplet
	rhs     []float64 // 1-based
	config  *sparse.Configuration
}

var _ System = (*Sparse)(nil)

func NewSparse(size int) *Sparse {
	return &Sparse{
		size: size,
		rhs:  make([]float64, size+1),
		config: &sparse.Configuration{
			Real:           true,
			Complex:        false,
			Expandable:     true,
			Translate:      false,
			ModifiedNodal:  true,
			TiesMultiplier: 5,
			PrinterWidth:   140,
			Annotate:       0,
		},
	}
}

func (m *Sparse) Size() int { return m.size }

func (m *Sparse) AddElement(i, j int, value float64) {
	if i == 0 || j == 0 || value == 0 {
		return
	}
	m.entries = append(m.entries, triplet{row: i, col: j, value: value})
}

func (m *Sparse) AddRHS(i int, value float64) {
	if i == 0 {
		return
	}
	m.rhs[i] += value
}

func (m *Sparse) Clear() {
	m.entries = m.entries[:0]
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

func (m *Sparse) Residual(x []float64) float64 {
	if m.size == 0 {
		return 0
	}
	r := make([]float64, m.size+1)
	for _, e := range m.entries {
		r[e.row] += e.value * x[e.col]
	}
	floats.Sub(r, m.rhs)
	return floats.Norm(r[1:], 2)
}

func (m *Sparse) build() (*sparse.Matrix, error) {
	mat, err := sparse.Create(int64(m.size), m.config)
	if err != nil {
		return nil, fmt.Errorf("error creating sparse matrix: %v", err)
	}
	// Diagonals must exist before factoring even when nothing stamps them.
	for i := 1; i <= m.size; i++ {
		mat.GetElement(int64(i), int64(i))
	}
	for _, e := range m.entries {
		mat.GetElement(int64(e.row), int64(e.col)).Real += e.value
	}
	return mat, nil
}

func (m *Sparse) Solve() ([]float64, error) {
	if m.size == 0 {
		return make([]float64, 1), nil
	}

	mat, err := m.build()
	if err != nil {
		return nil, err
	}
	defer mat.Destroy()

	if err := mat.Factor(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	rhs := make([]float64, len(m.rhs))
	copy(rhs, m.rhs)
	sol, err := mat.Solve(rhs)
	if err != nil {
		return nil, fmt.Errorf("matrix solve failed: %v", err)
	}
	sol[0] = 0
	for i, v := range sol {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite solution at index %d", ErrSingular, i)
		}
	}
	return sol, nil
}

func (m *Sparse) Print(w io.Writer) {
	fmt.Fprintf(w, "Circuit Equations (%dx%d):\n", m.size, m.size)
	fmt.Fprintln(w, "Node equations 1..n, followed by branch equations")

	rows := make([][]float64, m.size+1)
	for i := range rows {
		rows[i] = make([]float64, m.size+1)
	}
	for _, e := range m.entries {
		rows[e.row][e.col] += e.value
	}

	for i := 1; i <= m.size; i++ {
		fmt.Fprintf(w, "Equation %d:", i)
		for j := 1; j <= m.size; j++ {
			if rows[i][j] != 0 {
				fmt.Fprintf(w, "  %+g*x%d", rows[i][j], j)
			}
		}
		fmt.Fprintf(w, " = %g\n", m.rhs[i])
	}
}
