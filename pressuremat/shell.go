// Package pressuremat implements C1 (the pressure-matrix shell) and C3 (the
// pressure-system builder): a scalar sparse matrix sharing the block
// Jacobian's exact structural pattern, rebuilt in place from the Jacobian's
// pressure column and the per-cell weight vectors. Grounded on the
// utils.CSR/utils.DOK wrappers (utils/sparse.go) for the scalar sparse
// convention and utils.BlockSparse (utils/sparse_block.go) for the
// contiguous-storage, structural-nonzero-indexed access pattern.
package pressuremat

import (
	"github.com/flowsim/cpr/blockjac"
	"github.com/flowsim/cpr/cprerr"
)

// Matrix is the scalar n x n pressure matrix A_p, sharing Ptr/Idx with the
// block Jacobian it was shelled from. Only Values changes between rebuilds;
// the sparsity arrays are fixed for the matrix's lifetime.
type Matrix struct {
	Format blockjac.Format
	N      int
	Ptr    []int
	Idx    []int
	Values []float64
}

// NewShell creates A_p over the same structural pattern as j (C1). When
// shareArrays is true, Ptr and Idx alias j's arrays directly — the caller
// must guarantee j's sparsity arrays are not mutated for A_p's lifetime.
// When false, they are copied, so A_p remains valid even if the caller later
// rebinds or frees j's arrays.
func NewShell(j *blockjac.BlockMatrix, shareArrays bool) *Matrix {
	ptr, idx := j.Ptr, j.Idx
	if !shareArrays {
		ptr = append([]int(nil), j.Ptr...)
		idx = append([]int(nil), j.Idx...)
	}
	return &Matrix{
		Format: j.Format,
		N:      j.N,
		Ptr:    ptr,
		Idx:    idx,
		Values: make([]float64, len(idx)),
	}
}

// NNZ returns the number of structural nonzeros.
func (m *Matrix) NNZ() int {
	return len(m.Idx)
}

// SamePattern reports whether a and b share byte-identical Ptr/Idx arrays —
// the pattern-preservation invariant a caller can assert across a sequence
// of updates.
func SamePattern(a, b *Matrix) bool {
	if a.N != b.N || len(a.Ptr) != len(b.Ptr) || len(a.Idx) != len(b.Idx) {
		return false
	}
	for i := range a.Ptr {
		if a.Ptr[i] != b.Ptr[i] {
			return false
		}
	}
	for i := range a.Idx {
		if a.Idx[i] != b.Idx[i] {
			return false
		}
	}
	return true
}

// checkPattern enforces the DimensionMismatch invariant: A_p and J must
// agree on structural nonzero count before a rebuild touches their values.
func checkPattern(ap *Matrix, j *blockjac.BlockMatrix) error {
	if ap.NNZ() != j.NNZ() {
		return &cprerr.DimensionMismatch{WantNNZ: ap.NNZ(), GotNNZ: j.NNZ()}
	}
	return nil
}
