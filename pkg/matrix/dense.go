// Package matrix implements the dense linear-algebra primitives the MNA
// engine factors and solves on each tick: a square accumulator matrix plus
// a Crout-method LU factorization with partial pivoting.
//
// Unlike the sparse-solver-backed matrix the original device used, this
// package intentionally stays dense: the engine factors the already
// row-simplified system, which is small enough that a dense Crout
// factorization is simpler and cheaper than bringing in a general sparse
// solver.
package matrix

import "fmt"

// Dense is a square row-major accumulator matrix plus right-hand side.
// Elements are accumulated additively via Add, matching the way MNA
// stamps superimpose independent element contributions.
type Dense struct {
	Size int
	A    [][]float64
	B    []float64
}

// NewDense allocates a zeroed n x n matrix with an n-length right side.
func NewDense(n int) *Dense {
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
	}
	return &Dense{Size: n, A: a, B: make([]float64, n)}
}

// Add accumulates value into A[i][j]. Out-of-range indices are ignored;
// callers (the stamp kernel) are responsible for bounds-checking against
// ground and voltage-source rows before calling in.
func (d *Dense) Add(i, j int, value float64) {
	if i < 0 || j < 0 || i >= d.Size || j >= d.Size {
		return
	}
	d.A[i][j] += value
}

// AddRHS accumulates value into B[i].
func (d *Dense) AddRHS(i int, value float64) {
	if i < 0 || i >= d.Size {
		return
	}
	d.B[i] += value
}

// SetRHS overwrites B[i].
func (d *Dense) SetRHS(i int, value float64) {
	if i < 0 || i >= d.Size {
		return
	}
	d.B[i] = value
}

// Clear zeros the matrix and right side in place without reallocating.
func (d *Dense) Clear() {
	for i := range d.A {
		row := d.A[i]
		for j := range row {
			row[j] = 0
		}
		d.B[i] = 0
	}
}

// Clone produces a deep copy, used to snapshot the pristine linear system
// (origMatrix/origRightSide) before nonlinear devices mutate the working
// copy each Newton sub-iteration.
func (d *Dense) Clone() *Dense {
	out := NewDense(d.Size)
	for i := range d.A {
		copy(out.A[i], d.A[i])
	}
	copy(out.B, d.B)
	return out
}

// CopyFrom overwrites the receiver's contents with src's, without
// reallocating — used each Newton sub-iteration to reset the working
// matrix back to the pristine linear system before re-stamping.
func (d *Dense) CopyFrom(src *Dense) {
	for i := range d.A {
		copy(d.A[i], src.A[i])
	}
	copy(d.B, src.B)
}

// HasNonFinite reports whether any entry of A or B is NaN or +/-Inf.
func (d *Dense) HasNonFinite() bool {
	for _, row := range d.A {
		for _, v := range row {
			if isNonFinite(v) {
				return true
			}
		}
	}
	for _, v := range d.B {
		if isNonFinite(v) {
			return true
		}
	}
	return false
}

func isNonFinite(v float64) bool {
	return v != v || v > maxFinite || v < -maxFinite
}

const maxFinite = 1.7976931348623157e+308

func (d *Dense) String() string {
	s := fmt.Sprintf("matrix %dx%d\n", d.Size, d.Size)
	for i := range d.A {
		s += fmt.Sprintf("%v | %v\n", d.A[i], d.B[i])
	}
	return s
}
