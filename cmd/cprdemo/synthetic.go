package main

import "github.com/flowsim/cpr/blockjac"

// buildSyntheticJacobian constructs a block-tridiagonal Jacobian with
// diagonally-dominant blocks, the same shape as
// utils/sparse_block_test.go's TestGMRESBlockTridiagonalKnownSolution
// fixture (diagonal blocks strongly dominant, off-diagonals -I-like
// coupling), generalized to an arbitrary cell count and block size. Real
// Jacobian assembly (flux, accumulation, AD) is out of scope; this stands
// in as the external collaborator's output.
func buildSyntheticJacobian(cells, b int) *blockjac.BlockMatrix {
	var ptr []int
	var idx []int
	var blocks []float64

	ptr = append(ptr, 0)
	for c := 0; c < cells; c++ {
		if c > 0 {
			idx = append(idx, c-1)
			blocks = append(blocks, offDiagBlock(b)...)
		}
		idx = append(idx, c)
		blocks = append(blocks, diagBlock(b)...)
		if c < cells-1 {
			idx = append(idx, c+1)
			blocks = append(blocks, offDiagBlock(b)...)
		}
		ptr = append(ptr, len(idx))
	}

	j, err := blockjac.New(blockjac.CSC, b, cells, ptr, idx, blocks)
	if err != nil {
		panic(err)
	}
	return j
}

func diagBlock(b int) []float64 {
	out := make([]float64, b*b)
	for i := 0; i < b; i++ {
		for k := 0; k < b; k++ {
			if i == k {
				out[i*b+k] = 4 + float64(i)
			} else {
				out[i*b+k] = 0.1
			}
		}
	}
	return out
}

func offDiagBlock(b int) []float64 {
	out := make([]float64, b*b)
	for i := 0; i < b; i++ {
		out[i*b+i] = -1
	}
	return out
}

// syntheticResidual returns a residual vector with a simple smooth pressure
// signal in component 0 of every cell and smaller saturation-like
// components elsewhere.
func syntheticResidual(cells, b int) []float64 {
	r := make([]float64, cells*b)
	for c := 0; c < cells; c++ {
		r[c*b] = 1.0
		for i := 1; i < b; i++ {
			r[c*b+i] = 0.01 * float64(i)
		}
	}
	return r
}
