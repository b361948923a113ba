package amg

import (
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack/lapack64"
)

// Small row-major b x b dense helpers for the block-ILU(0) factorization,
// grounded on utils/matrix_extended.go's Inverse() (itself lapack64.Getrf +
// Getri) and the block arithmetic style of utils/blockMatrix.go's
// LUPDecompose (Mul/Subtract/Inverse on whole blocks rather than element
// loops).

func blockMatMul(b int, a, c []float64) []float64 {
	out := make([]float64, b*b)
	for i := 0; i < b; i++ {
		for k := 0; k < b; k++ {
			aik := a[i*b+k]
			if aik == 0 {
				continue
			}
			for j := 0; j < b; j++ {
				out[i*b+j] += aik * c[k*b+j]
			}
		}
	}
	return out
}

func blockMatSub(b int, a, c []float64) {
	for i := range a {
		a[i] -= c[i]
	}
}

func blockMatVec(b int, a, x []float64, out []float64) {
	for i := 0; i < b; i++ {
		var sum float64
		for j := 0; j < b; j++ {
			sum += a[i*b+j] * x[j]
		}
		out[i] += sum
	}
}

// blockInverse computes a's inverse via LU factorization (lapack64.Getrf +
// Getri), the same pair Matrix.Inverse() uses.
func blockInverse(b int, a []float64) ([]float64, bool) {
	inv := append([]float64(nil), a...)
	gen := blas64.General{Rows: b, Cols: b, Stride: b, Data: inv}
	ipiv := make([]int, b)
	if ok := lapack64.Getrf(gen, ipiv); !ok {
		return nil, false
	}
	work := make([]float64, b*b)
	if ok := lapack64.Getri(gen, ipiv, work, b*b); !ok {
		return nil, false
	}
	return inv, true
}
