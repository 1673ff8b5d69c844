package matrix

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSingular is returned when the linear solve cannot find a usable pivot.
var ErrSingular = errors.New("matrix: singular matrix")

// System is one MNA linear system G*x = I. It is cleared and restamped on
// every Newton iteration.
type System interface {
	DeviceMatrix
	Size() int
	Clear()
	// Residual returns ||G*x - I||2 for a system-indexed x (x[0] is ground).
	Residual(x []float64) float64
	// Solve returns the system-indexed solution of G*x = I.
	Solve() ([]float64, error)
	Print(w io.Writer)
}

type Backend int

const (
	DenseBackend Backend = iota
	SparseBackend
)

func (b Backend) String() string {
	switch b {
	case DenseBackend:
		return "dense"
	case SparseBackend:
		return "sparse"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dense":
		return DenseBackend, nil
	case "sparse":
		return SparseBackend, nil
	default:
		return DenseBackend, fmt.Errorf("unknown matrix backend %q", s)
	}
}

// NewSystem allocates a system with size unknowns on the given backend.
func NewSystem(b Backend, size int) System {
	if b == SparseBackend {
		return NewSparse(size)
	}
	return NewDense(size)
}
