// Package weights implements C2: per-cell pressure-extraction weight
// computation from one of four strategies, with small dense b x b solves
// following the lapack64-based LU path in utils/matrix_extended.go and
// parallel dispatch over cells following utils.PartitionMap /
// model_problems/Euler2D's goroutine fan-out.
package weights

import (
	"math"

	"github.com/flowsim/cpr/blockjac"
	"github.com/flowsim/cpr/cprerr"
	"github.com/flowsim/cpr/partition"
)

// Config bundles the tunables C2 needs: which strategy, the post-solve
// scaling policy, the true_impes pressure-scale factor, and the minimum
// cell count before per-cell solves are dispatched across goroutines.
type Config struct {
	Strategy Strategy
	Scaling  Scaling
	PScale   float64
	MinBatch int
}

// unitRHS is the length-B local unit vector (1,0,...,0) used as the RHS of
// every per-cell dense solve.
func unitRHS(b int) []float64 {
	e := make([]float64, b)
	e[0] = 1
	return e
}

// Compute fills w in place from j per cfg.Strategy. acc is read by
// true_impes only (may be nil otherwise); analyticalFn is invoked by
// :analytical only (may be nil otherwise).
func Compute(w *Weights, j *blockjac.BlockMatrix, cfg Config, acc *Accumulation, analyticalFn AnalyticalFunc) error {
	switch cfg.Strategy {
	case None:
		fillNone(w)
	case QuasiImpes:
		if err := computeQuasiImpes(w, j, cfg); err != nil {
			return err
		}
	case TrueImpes:
		if err := computeTrueImpes(w, j, cfg, acc); err != nil {
			return err
		}
	case Analytical:
		if err := analyticalFn(w); err != nil {
			return err
		}
	default:
		return &cprerr.UnsupportedStrategy{Strategy: "unknown"}
	}
	if cfg.Scaling == Unit {
		scaleUnit(w)
	}
	return nil
}

// fillNone implements strategy :none: W[0,:] = 1, all other rows 0,
// effectively selecting the first equation as the pressure row — the
// restriction step must pick r[(i-1)b+1] exactly, which only holds if
// every other row of the weight column is zero.
func fillNone(w *Weights) {
	for c := 0; c < w.N; c++ {
		col := w.Col(c)
		col[0] = 1
		for i := 1; i < w.B; i++ {
			col[i] = 0
		}
	}
}

// computeQuasiImpes solves D_c^T * w = e1 per cell, D_c the diagonal block.
func computeQuasiImpes(w *Weights, j *blockjac.BlockMatrix, cfg Config) error {
	rhs := unitRHS(j.B)
	errs := make([]error, j.N) // one slot per cell, disjoint writes across shards
	partition.For(j.N, cfg.minBatch(), func(lo, hi int) {
		for c := lo; c < hi; c++ {
			k, ok := j.Diag(c)
			if !ok {
				errs[c] = &cprerr.WeightSolveFailure{Cell: c}
				continue
			}
			d := j.Block(k)
			sol, solved := solveDense(transpose(d, j.B), rhs)
			if !solved {
				errs[c] = &cprerr.WeightSolveFailure{Cell: c}
				continue
			}
			copy(w.Col(c), sol)
		}
	})
	return firstOf(errs)
}

// computeTrueImpes solves M_c * w = e1 per cell, M_c built from the
// accumulation term's partial derivatives. One generic loop serves every
// block size; there is no b-specific unrolled builder.
func computeTrueImpes(w *Weights, j *blockjac.BlockMatrix, cfg Config, acc *Accumulation) error {
	rhs := unitRHS(j.B)
	b := j.B
	errs := make([]error, j.N) // one slot per cell, disjoint writes across shards
	partition.For(j.N, cfg.minBatch(), func(lo, hi int) {
		mData := make([]float64, b*b)
		for c := lo; c < hi; c++ {
			terms := acc.Cell(c)
			for col := 0; col < b; col++ {
				p := terms[col].Partials()
				for row := 0; row < b; row++ {
					v := p[row]
					if row == 0 {
						v *= cfg.PScale
					}
					mData[row*b+col] = v
				}
			}
			m := denseFrom(mData, b)
			sol, solved := solveDense(m, rhs)
			if !solved {
				errs[c] = &cprerr.WeightSolveFailure{Cell: c}
				continue
			}
			copy(w.Col(c), sol)
		}
	})
	return firstOf(errs)
}

// firstOf returns the first non-nil error in errs, in index order.
func firstOf(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// scaleUnit normalizes every column of w to unit L2 norm.
func scaleUnit(w *Weights) {
	for c := 0; c < w.N; c++ {
		col := w.Col(c)
		var sum float64
		for _, v := range col {
			sum += v * v
		}
		norm := math.Sqrt(sum)
		if norm == 0 {
			continue
		}
		for i := range col {
			col[i] /= norm
		}
	}
}

func (cfg Config) minBatch() int {
	if cfg.MinBatch <= 0 {
		return 1
	}
	return cfg.MinBatch
}
