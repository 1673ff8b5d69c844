package matrix

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/kaminglui/circuit-sim/internal/consts"
)

// Dense stores G and I as gonum dense matrices and solves by Gauss-Jordan
// elimination with partial pivoting.
type Dense struct {
	size int
	g    *mat.Dense
	rhs  *mat.VecDense
}

var _ System = (*Dense)(nil)

func NewDense(size int) *Dense {
	d := &Dense{size: size}
	if size > 0 {
		d.g = mat.NewDense(size, size, nil)
		d.rhs = mat.NewVecDense(size, nil)
	}
	return d
}

func (d *Dense) Size() int { return d.size }

func (d *Dense) AddElement(i, j int, value float64) {
	if i == 0 || j == 0 {
		return
	}
	d.g.Set(i-1, j-1, d.g.At(i-1, j-1)+value)
}

func (d *Dense) AddRHS(i int, value float64) {
	if i == 0 {
		return
	}
	d.rhs.SetVec(i-1, d.rhs.AtVec(i-1)+value)
}

func (d *Dense) Clear() {
	if d.size == 0 {
		return
	}
	d.g.Zero()
	d.rhs.Zero()
}

func (d *Dense) Residual(x []float64) float64 {
	if d.size == 0 {
		return 0
	}
	xv := mat.NewVecDense(d.size, x[1:d.size+1])
	var r mat.VecDense
	r.MulVec(d.g, xv)
	r.SubVec(&r, d.rhs)
	return mat.Norm(&r, 2)
}

func (d *Dense) Solve() ([]float64, error) {
	n := d.size
	x := make([]float64, n+1)
	if n == 0 {
		return x, nil
	}

	// Augmented [G | I], reduced in place to reduced row-echelon form.
	aug := mat.NewDense(n, n+1, nil)
	aug.Slice(0, n, 0, n).(*mat.Dense).Copy(d.g)
	aug.SetCol(n, d.rhs.RawVector().Data)

	for col := 0; col < n; col++ {
		pivot, best := col, math.Abs(aug.At(col, col))
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug.At(r, col)); v > best {
				pivot, best = r, v
			}
		}
		if best < consts.PivotEpsilon {
			return nil, fmt.Errorf("%w: pivot %.3g in column %d", ErrSingular, best, col+1)
		}
		if pivot != col {
			swapRows(aug, pivot, col)
		}

		prow := aug.RawRowView(col)
		inv := 1.0 / prow[col]
		for j := col; j <= n; j++ {
			prow[j] *= inv
		}

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			row := aug.RawRowView(r)
			f := row[col]
			if f == 0 {
				continue
			}
			for j := col; j <= n; j++ {
				row[j] -= f * prow[j]
			}
		}
	}

	for i := 0; i < n; i++ {
		x[i+1] = aug.At(i, n)
	}
	return x, nil
}

func swapRows(m *mat.Dense, a, b int) {
	ra, rb := m.RawRowView(a), m.RawRowView(b)
	for k := range ra {
		ra[k], rb[k] = rb[k], ra[k]
	}
}

func (d *Dense) Print(w io.Writer) {
	fmt.Fprintf(w, "Circuit Equations (%dx%d):\n", d.size, d.size)
	if d.size == 0 {
		return
	}
	fmt.Fprintf(w, "G = %v\n", mat.Formatted(d.g, mat.Prefix("    "), mat.Squeeze()))
	fmt.Fprintf(w, "I = %v\n", mat.Formatted(d.rhs, mat.Prefix("    "), mat.Squeeze()))
}
