package matrix_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wiredge/mnacore/pkg/matrix"
)

func TestFactorSolveReproducesSystem(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		n := 2 + rng.Intn(48) // n <= 50
		a := make([][]float64, n)
		orig := make([][]float64, n)
		x := make([]float64, n)
		for i := range a {
			a[i] = make([]float64, n)
			orig[i] = make([]float64, n)
			for j := range a[i] {
				v := rng.Float64()*2 - 1
				a[i][j] = v
				orig[i][j] = v
			}
			a[i][i] += float64(n) // diagonally dominant => well conditioned
			orig[i][i] = a[i][i]
			x[i] = rng.Float64()*10 - 5
		}

		b := make([]float64, n)
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				sum += orig[i][j] * x[j]
			}
			b[i] = sum
		}

		pivots := make([]int, n)
		ok := matrix.Factor(a, n, pivots)
		require.True(t, ok)

		got := append([]float64(nil), b...)
		matrix.Solve(a, n, pivots, got)

		for i := 0; i < n; i++ {
			require.InDeltaf(t, x[i], got[i], 1e-9*(math.Abs(x[i])+1), "component %d", i)
		}
	}
}

func TestFactorDetectsSingular(t *testing.T) {
	a := [][]float64{
		{0, 0},
		{0, 0},
	}
	ok := matrix.Factor(a, 2, make([]int, 2))
	require.False(t, ok)
}

func TestDenseAddRespectsBounds(t *testing.T) {
	d := matrix.NewDense(3)
	d.Add(-1, 0, 5)
	d.Add(0, 5, 5)
	d.AddRHS(-1, 5)
	for _, row := range d.A {
		for _, v := range row {
			require.Zero(t, v)
		}
	}
}

func TestDenseHasNonFinite(t *testing.T) {
	d := matrix.NewDense(2)
	require.False(t, d.HasNonFinite())
	d.A[0][0] = math.NaN()
	require.True(t, d.HasNonFinite())
}
