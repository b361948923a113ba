package amg

import (
	"fmt"

	"github.com/flowsim/cpr/blockjac"
)

// BlockILU0 is the built-in default full-system smoother: a general block
// preconditioner over the Jacobian's block sparsity. It factors the block
// Jacobian's dense b x b blocks in place over the fixed structural
// pattern (no fill-in, the defining property of ILU(0)), adapting the
// dense block-matrix elimination idiom of utils/blockMatrix.go's
// LUPDecompose/LUPSolve (block Mul/Subtract/Inverse row by row) to a
// sparse, fixed-sparsity setting.
type BlockILU0 struct {
	b, n int

	rowPtr []int
	colIdx []int
	// lu holds, in place, the ILU(0) factors: row-major, one b*b block per
	// structural entry, combined (L-I)+U the way LUPDecompose describes for
	// its dense analogue.
	lu      [][]float64
	pos     map[[2]int]int
	diagInv [][]float64
}

// NewBlockILU0 constructs an uninitialized smoother; Setup must be called
// with the block Jacobian before Apply.
func NewBlockILU0() *BlockILU0 {
	return &BlockILU0{}
}

// Setup factors j's blocks into ILU(0) form. It may be called repeatedly
// (once per full CPR update) — each call starts from j's current values and
// refactors from scratch; the fixed sparsity pattern means no allocation
// pattern changes across calls.
func (s *BlockILU0) Setup(j *blockjac.BlockMatrix) error {
	s.b, s.n = j.B, j.N
	s.rowPtr, s.colIdx = toRowMajorBlockPattern(j)
	s.lu = make([][]float64, len(s.colIdx))
	s.pos = make(map[[2]int]int, len(s.colIdx))
	for row := 0; row < s.n; row++ {
		for pos := s.rowPtr[row]; pos < s.rowPtr[row+1]; pos++ {
			col := s.colIdx[pos]
			s.pos[[2]int{row, col}] = pos
		}
	}
	// Copy block values, in row-major discovery order, into lu.
	perm := toRowMajorBlockPerm(j, s.rowPtr, s.colIdx)
	for pos, k := range perm {
		s.lu[pos] = append([]float64(nil), j.Block(k).RawMatrix().Data...)
	}
	return s.factorize()
}

// factorize runs the classic IKJ block ILU(0) sweep: for each row i, every
// existing lower entry (i,k) is normalized by D_k's inverse, and every
// existing (i,j) with j>k (including the diagonal itself, j==i) absorbs the
// Schur update — exactly the scalar ILU(0) elimination order, generalized
// to dense blocks in place of scalars.
func (s *BlockILU0) factorize() error {
	b := s.b
	diagInv := make([][]float64, s.n)
	for i := 0; i < s.n; i++ {
		for k := 0; k < i; k++ {
			posIK, ok := s.pos[[2]int{i, k}]
			if !ok {
				continue
			}
			if diagInv[k] == nil {
				return fmt.Errorf("amg: BlockILU0 row %d eliminated before its diagonal was factored", k)
			}
			lik := blockMatMul(b, s.lu[posIK], diagInv[k])
			s.lu[posIK] = lik
			for pos := s.rowPtr[i]; pos < s.rowPtr[i+1]; pos++ {
				j := s.colIdx[pos]
				if j <= k {
					continue
				}
				posKJ, ok := s.pos[[2]int{k, j}]
				if !ok {
					continue
				}
				update := blockMatMul(b, lik, s.lu[posKJ])
				blockMatSub(b, s.lu[pos], update)
			}
		}
		diagPos, ok := s.pos[[2]int{i, i}]
		if !ok {
			return fmt.Errorf("amg: BlockILU0 row %d has no diagonal block", i)
		}
		inv, ok := blockInverse(b, s.lu[diagPos])
		if !ok {
			return fmt.Errorf("amg: BlockILU0 row %d has a singular diagonal block", i)
		}
		diagInv[i] = inv
	}
	s.diagInv = diagInv
	return nil
}

// Apply solves (approximately) J x = y via block forward/backward
// substitution over the ILU(0) factors, the sparse analogue of the
// teacher's BlockMatrix.LUPSolve.
func (s *BlockILU0) Apply(x, y []float64) error {
	b := s.b
	z := make([]float64, s.n*b)
	copy(z, y)
	// Forward solve: z_i -= sum_{k<i} L_ik * z_k.
	for i := 0; i < s.n; i++ {
		for pos := s.rowPtr[i]; pos < s.rowPtr[i+1]; pos++ {
			k := s.colIdx[pos]
			if k >= i {
				continue
			}
			neg := make([]float64, b)
			blockMatVec(b, s.lu[pos], z[k*b:(k+1)*b], neg)
			for d := 0; d < b; d++ {
				z[i*b+d] -= neg[d]
			}
		}
	}
	// Backward solve: x_i = D_i^{-1} * (z_i - sum_{k>i} U_ik * x_k).
	for i := s.n - 1; i >= 0; i-- {
		rhs := append([]float64(nil), z[i*b:(i+1)*b]...)
		for pos := s.rowPtr[i]; pos < s.rowPtr[i+1]; pos++ {
			k := s.colIdx[pos]
			if k <= i {
				continue
			}
			neg := make([]float64, b)
			blockMatVec(b, s.lu[pos], x[k*b:(k+1)*b], neg)
			for d := 0; d < b; d++ {
				rhs[d] -= neg[d]
			}
		}
		out := make([]float64, b)
		blockMatVec(b, s.diagInv[i], rhs, out)
		copy(x[i*b:(i+1)*b], out)
	}
	return nil
}
