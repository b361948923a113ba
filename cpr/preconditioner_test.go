package cpr

import (
	"math"
	"testing"

	"github.com/flowsim/cpr/amg"
	"github.com/flowsim/cpr/blockjac"
	"github.com/flowsim/cpr/pressuremat"
	"github.com/flowsim/cpr/schedule"
	"github.com/flowsim/cpr/weights"
	"github.com/stretchr/testify/assert"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// scalarJacobian builds a b=1, n-cell diagonal block Jacobian with the given
// diagonal values, so weights and A_p collapse to trivial scalars.
func scalarJacobian(vals []float64) *blockjac.BlockMatrix {
	n := len(vals)
	ptr := make([]int, n+1)
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		ptr[i] = i
		idx[i] = i
	}
	ptr[n] = n
	j, _ := blockjac.New(blockjac.CSC, 1, n, ptr, idx, append([]float64(nil), vals...))
	return j
}

type diagOperator struct {
	d []float64
}

func (o *diagOperator) Rows() int { return len(o.d) }
func (o *diagOperator) MulAdd(dst, x []float64) {
	for i := range dst {
		dst[i] += o.d[i] * x[i]
	}
}

func TestApplyIdentityCaseReproducesExactSolve(t *testing.T) {
	// b=1 collapses CPR to a pure scalar elliptic solve: with an exact
	// pressure inverse and an identity smoother, Apply(r) must reproduce
	// A^-1 r exactly (S4).
	j := scalarJacobian([]float64{2, 4, 5})
	opts := Options{
		Strategy:        weights.None,
		PressurePrecond: amg.NewGaussSeidelAMG(1), // exact for a diagonal A_p
		SystemPrecond:   &identitySmoother{},
		UpdateInterval:  schedule.Once,
		UpdateFrequency: 1,
	}
	p := New(opts)
	rec := schedule.Recorder{Step: 1, Ministep: 1, Subiteration: 1}
	assert.NoError(t, p.Update(j, []float64{2, 4, 5}, nil, nil, rec))

	a := &diagOperator{d: []float64{2, 4, 5}}
	x := make([]float64, 3)
	r := []float64{2, 4, 5}
	assert.NoError(t, p.Apply(x, r, a))

	assert.True(t, almostEqual(x[0], 1, 1e-9))
	assert.True(t, almostEqual(x[1], 1, 1e-9))
	assert.True(t, almostEqual(x[2], 1, 1e-9))
}

type identitySmoother struct{}

func (s *identitySmoother) Setup(j *blockjac.BlockMatrix) error { return nil }
func (s *identitySmoother) Apply(x, y []float64) error {
	copy(x, y)
	return nil
}

func TestFGMRESTighteningConvergesInOneIterationForIdentityPressureSystem(t *testing.T) {
	// b=1, J diagonal all-ones, strategy :none => W=1 => A_p = I exactly.
	// GaussSeidelAMG.Apply on A_p=I is the exact inverse, so FGMRES wrapping
	// it as a right preconditioner converges after a single Arnoldi step.
	j := scalarJacobian([]float64{1, 1, 1})
	opts := Options{
		Strategy:        weights.None,
		PressurePrecond: amg.NewGaussSeidelAMG(1),
		SystemPrecond:   &identitySmoother{},
		UpdateInterval:  schedule.Once,
		UpdateFrequency: 1,
		PRtol:           1e-6,
	}
	p := New(opts)
	rec := schedule.Recorder{Step: 1, Ministep: 1, Subiteration: 1}
	r := []float64{1, 2, 3}
	assert.NoError(t, p.Update(j, r, nil, nil, rec))

	x := make([]float64, 3)
	a := &diagOperator{d: []float64{1, 1, 1}}
	assert.NoError(t, p.Apply(x, r, a))

	for i, want := range []float64{1, 2, 3} {
		assert.True(t, almostEqual(p.deltaP[i], want, 1e-6))
	}
}

type countingPressureSolver struct {
	inner        amg.PressureSolver
	setupCount   int
	partialCount int
}

func (c *countingPressureSolver) Setup(ap *pressuremat.Matrix, rp []float64, ctx amg.ModelContext) error {
	c.setupCount++
	return c.inner.Setup(ap, rp, ctx)
}
func (c *countingPressureSolver) PartialRefresh(ap *pressuremat.Matrix, rp []float64, ctx amg.ModelContext) error {
	c.partialCount++
	return c.inner.PartialRefresh(ap, rp, ctx)
}
func (c *countingPressureSolver) Apply(dp, rp []float64) error { return c.inner.Apply(dp, rp) }
func (c *countingPressureSolver) LinearOperator() amg.LinearOperator {
	return c.inner.LinearOperator()
}

func TestUpdateSchedulingFullThenPartialAcrossSubiterations(t *testing.T) {
	// update_interval=:step, update_interval_partial=:iteration, across
	// iterations 1-3 of step 1: iteration 1 is full, 2-3 are partial only
	// (S6): setup-count ends at 1, partial-refresh-count at 2.
	j := scalarJacobian([]float64{2, 3})
	counting := &countingPressureSolver{inner: amg.NewGaussSeidelAMG(1)}
	opts := Options{
		Strategy:               weights.None,
		PressurePrecond:        counting,
		SystemPrecond:          &identitySmoother{},
		UpdateInterval:         schedule.Step,
		UpdateFrequency:        1,
		PartialUpdate:          true,
		UpdateIntervalPartial:  schedule.Iteration,
		UpdateFrequencyPartial: 1,
	}
	p := New(opts)
	r := []float64{2, 3}
	for it := 1; it <= 3; it++ {
		rec := schedule.Recorder{Step: 1, Ministep: 1, Subiteration: it}
		assert.NoError(t, p.Update(j, r, nil, nil, rec))
	}
	assert.Equal(t, 1, counting.setupCount)
	assert.Equal(t, 2, counting.partialCount)
}

func TestUpdateIsIdempotentWithUnchangedRecorder(t *testing.T) {
	j := scalarJacobian([]float64{2, 4})
	opts := Options{
		Strategy:        weights.QuasiImpes,
		WeightScaling:   weights.Unit,
		UpdateInterval:  schedule.Iteration,
		UpdateFrequency: 1,
	}
	p := New(opts)
	r := []float64{1, 1}
	rec := schedule.Recorder{Step: 1, Ministep: 1, Subiteration: 1}
	assert.NoError(t, p.Update(j, r, nil, nil, rec))
	w1 := append([]float64(nil), p.w.Data...)
	ap1 := append([]float64(nil), p.ap.Values...)

	assert.NoError(t, p.Update(j, r, nil, nil, rec))
	assert.Equal(t, w1, p.w.Data)
	assert.Equal(t, ap1, p.ap.Values)
}

func TestPatternPreservedAcrossUpdates(t *testing.T) {
	j := scalarJacobian([]float64{2, 4})
	opts := Options{Strategy: weights.None, UpdateInterval: schedule.Iteration, UpdateFrequency: 1}
	p := New(opts)
	r := []float64{1, 1}
	rec := schedule.Recorder{Step: 1, Ministep: 1, Subiteration: 1}
	assert.NoError(t, p.Update(j, r, nil, nil, rec))
	ptr1 := append([]int(nil), p.ap.Ptr...)
	idx1 := append([]int(nil), p.ap.Idx...)

	rec2 := schedule.Recorder{Step: 1, Ministep: 1, Subiteration: 2}
	assert.NoError(t, p.Update(j, r, nil, nil, rec2))
	assert.Equal(t, ptr1, p.ap.Ptr)
	assert.Equal(t, idx1, p.ap.Idx)
}

func TestRowsReflectsBlockDimensions(t *testing.T) {
	j := scalarJacobian([]float64{2, 4, 6})
	p := New(Options{Strategy: weights.None, UpdateInterval: schedule.Once})
	assert.Equal(t, 0, p.Rows())
	rec := schedule.Recorder{Step: 1, Ministep: 1, Subiteration: 1}
	assert.NoError(t, p.Update(j, []float64{1, 1, 1}, nil, nil, rec))
	assert.Equal(t, 3, p.Rows())
}
