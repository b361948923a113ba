package main

import "github.com/flowsim/cpr/blockjac"

// jacobianOperator exposes a block Jacobian as the amg.LinearOperator the
// full-system residual-correction step (C5 step 3) needs: dst += J * x in
// block form.
type jacobianOperator struct {
	j *blockjac.BlockMatrix
}

func (o *jacobianOperator) Rows() int { return o.j.N * o.j.B }

func (o *jacobianOperator) MulAdd(dst, x []float64) {
	b := o.j.B
	for outer := 0; outer < o.j.N; outer++ {
		start, end := o.j.Outer(outer)
		for k := start; k < end; k++ {
			row := o.j.RowOf(outer, k)
			col := colOf(o.j, outer, k)
			block := o.j.Block(k)
			for i := 0; i < b; i++ {
				var sum float64
				for jj := 0; jj < b; jj++ {
					sum += block.At(i, jj) * x[col*b+jj]
				}
				dst[row*b+i] += sum
			}
		}
	}
}

// colOf returns the structural column for index k: for CSC it's the outer
// iterator itself; for CSR it's j.RowOf's row-role swapped with column.
func colOf(j *blockjac.BlockMatrix, outer, k int) int {
	if j.Format == blockjac.CSC {
		return outer
	}
	return j.Idx[k]
}
