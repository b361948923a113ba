package pressuremat

import (
	"github.com/flowsim/cpr/blockjac"
	"github.com/flowsim/cpr/partition"
	"github.com/flowsim/cpr/weights"
)

// Rebuild implements C3: for every structural nonzero k,
//
//	A_p.Values[k] = sum_{i=0..b-1} J.Block(k)[i,0] * W[i, row(k)]
//
// i.e. it projects the block's pressure column (column 0) onto the owning
// row's weight covector. CSC dispatches parallel-over-columns, CSR
// parallel-over-rows; both write to disjoint k, so no synchronization
// beyond the shard barrier is needed — every write target is unique.
func Rebuild(ap *Matrix, j *blockjac.BlockMatrix, w *weights.Weights, minBatch int) error {
	if err := checkPattern(ap, j); err != nil {
		return err
	}
	b := j.B
	partition.For(j.N, minBatch, func(lo, hi int) {
		for outer := lo; outer < hi; outer++ {
			start, end := j.Outer(outer)
			for k := start; k < end; k++ {
				row := j.RowOf(outer, k)
				block := j.Block(k)
				var sum float64
				for i := 0; i < b; i++ {
					sum += block.At(i, 0) * w.At(i, row)
				}
				ap.Values[k] = sum
			}
		}
	})
	return nil
}
