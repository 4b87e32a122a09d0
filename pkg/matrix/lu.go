package matrix

import "math"

// tinyPivot is substituted for an exact-zero pivot so the solve never
// divides by zero; it is small enough to leave the solution numerically
// unaffected for any well-posed circuit.
const tinyPivot = 1e-18

// Factor performs an in-place Crout-method LU factorization of a with
// partial pivoting and implicit row scaling, the classic "LU decomposition
// with partial pivoting" recipe. a is overwritten with the combined L
// (unit diagonal, implicit) and U factors. pivots records, for each
// column, the row it was swapped with (pivots[j] == j means no swap).
// Factor reports false if a row is structurally singular (all zero).
func Factor(a [][]float64, n int, pivots []int) bool {
	scale := make([]float64, n)

	for i := 0; i < n; i++ {
		largest := 0.0
		for j := 0; j < n; j++ {
			v := math.Abs(a[i][j])
			if v > largest {
				largest = v
			}
		}
		if largest == 0 {
			return false
		}
		scale[i] = 1.0 / largest
	}

	for j := 0; j < n; j++ {
		for i := 0; i < j; i++ {
			sum := a[i][j]
			for k := 0; k < i; k++ {
				sum -= a[i][k] * a[k][j]
			}
			a[i][j] = sum
		}

		largest := 0.0
		largestRow := j
		for i := j; i < n; i++ {
			sum := a[i][j]
			for k := 0; k < j; k++ {
				sum -= a[i][k] * a[k][j]
			}
			a[i][j] = sum

			measure := scale[i] * math.Abs(sum)
			if measure >= largest {
				largest = measure
				largestRow = i
			}
		}

		if largestRow != j {
			a[j], a[largestRow] = a[largestRow], a[j]
			scale[largestRow] = scale[j]
		}
		pivots[j] = largestRow

		if a[j][j] == 0 {
			a[j][j] = tinyPivot
		}

		if j != n-1 {
			pivot := 1.0 / a[j][j]
			for i := j + 1; i < n; i++ {
				a[i][j] *= pivot
			}
		}
	}

	return true
}

// Solve applies the pivot sequence to b, then forward- and
// back-substitutes through the factors produced by Factor. b is
// overwritten with the solution x.
func Solve(a [][]float64, n int, pivots []int, b []float64) {
	first := -1
	for i := 0; i < n; i++ {
		p := pivots[i]
		sum := b[p]
		b[p] = b[i]
		if first >= 0 {
			for k := first; k < i; k++ {
				sum -= a[i][k] * b[k]
			}
		} else if sum != 0 {
			first = i
		}
		b[i] = sum
	}

	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for k := i + 1; k < n; k++ {
			sum -= a[i][k] * b[k]
		}
		b[i] = sum / a[i][i]
	}
}
