// Package blockjac holds the block-sparse Jacobian shell: a scalar sparsity
// pattern (CSC or CSR pointer/index arrays, following the classic
// colptr/rowval and rowptr/colval conventions) with a dense b x b block
// stored contiguously at every structural nonzero, the way utils.BlockSparse
// packs its allocated blocks into one contiguous slice.
package blockjac

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Format selects which of the two dual sparse layouts a BlockMatrix uses.
type Format int

const (
	// CSC: Ptr is colptr (len N+1), Idx is rowval (len nnz). Iterating
	// outer index c walks a column; Idx[k] gives the row owning entry k.
	CSC Format = iota
	// CSR: Ptr is rowptr (len N+1), Idx is colval (len nnz). Iterating
	// outer index r walks a row; the row owning entry k is r itself.
	CSR
)

// BlockMatrix is the block Jacobian J: n x n cells, each structural nonzero
// holding a dense b x b block. The structural pattern (Ptr, Idx) is fixed
// across nonlinear iterations; only Blocks changes between calls.
type BlockMatrix struct {
	Format Format
	B      int // block size (primary variables / equations per cell)
	N      int // number of cells

	Ptr []int // length N+1
	Idx []int // length nnz
	// Blocks holds nnz row-major b x b blocks back to back: block k
	// occupies Blocks[k*B*B : (k+1)*B*B].
	Blocks []float64
}

// New validates and wraps caller-supplied CSC/CSR arrays into a BlockMatrix.
// It does not copy Ptr, Idx, or Blocks; the caller must not mutate the
// sparsity arrays for the lifetime of the returned matrix (values in Blocks
// are expected to change between update calls, the structural arrays are
// not).
func New(format Format, b, n int, ptr, idx []int, blocks []float64) (*BlockMatrix, error) {
	if len(ptr) != n+1 {
		return nil, fmt.Errorf("blockjac: len(ptr) = %d, want %d", len(ptr), n+1)
	}
	nnz := ptr[n]
	if len(idx) != nnz {
		return nil, fmt.Errorf("blockjac: len(idx) = %d, want %d", len(idx), nnz)
	}
	if len(blocks) != nnz*b*b {
		return nil, fmt.Errorf("blockjac: len(blocks) = %d, want %d", len(blocks), nnz*b*b)
	}
	return &BlockMatrix{
		Format: format,
		B:      b,
		N:      n,
		Ptr:    ptr,
		Idx:    idx,
		Blocks: blocks,
	}, nil
}

// NNZ returns the number of allocated (structural) b x b blocks.
func (m *BlockMatrix) NNZ() int {
	return len(m.Idx)
}

// Outer returns the half-open range [start, end) of structural indices for
// outer index o (a column under CSC, a row under CSR).
func (m *BlockMatrix) Outer(o int) (start, end int) {
	return m.Ptr[o], m.Ptr[o+1]
}

// RowOf returns the cell-row index owning structural nonzero k, found while
// iterating outer index o. Under CSC the row is read from Idx; under CSR the
// outer iterator already is the row.
func (m *BlockMatrix) RowOf(o, k int) int {
	if m.Format == CSC {
		return m.Idx[k]
	}
	return o
}

// Block returns a view of the b x b block stored at structural index k. The
// returned matrix shares storage with m.Blocks; writes through it mutate m.
func (m *BlockMatrix) Block(k int) *mat.Dense {
	b := m.B
	off := k * b * b
	return mat.NewDense(b, b, m.Blocks[off:off+b*b])
}

// Diag returns the structural index of the diagonal block for cell c (the
// entry whose outer and inner index both equal c), and whether it exists.
// This holds for both CSC and CSR: the diagonal entry's row and column
// coordinate are both c regardless of which one is the "outer" iterator.
func (m *BlockMatrix) Diag(c int) (k int, ok bool) {
	start, end := m.Ptr[c], m.Ptr[c+1]
	for k = start; k < end; k++ {
		if m.Idx[k] == c {
			return k, true
		}
	}
	return 0, false
}
