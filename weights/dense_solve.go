package weights

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
	"gonum.org/v1/gonum/mat"
)

// solveDense solves d*w = rhs for a small dense b x b system, in the style
// of utils/matrix_extended.go's lapack64.Getrf/Getri wrapping of gonum's LU
// factorization. A copy of d is factored via Getrf (d itself is left
// unchanged) and Getrs then solves against it; ok is false on a singular
// pivot, mirroring lapack64.Getrf's own return convention.
func solveDense(d *mat.Dense, rhs []float64) (w []float64, ok bool) {
	b, _ := d.Dims()
	a := mat.DenseCopyOf(d)
	ipiv := make([]int, b)
	if ok = lapack64.Getrf(a.RawMatrix(), ipiv); !ok {
		return nil, false
	}
	w = make([]float64, b)
	copy(w, rhs)
	rb := blas64.General{Rows: b, Cols: 1, Stride: 1, Data: w}
	lapack64.Getrs(blas.NoTrans, a.RawMatrix(), rb, ipiv)
	return w, true
}
