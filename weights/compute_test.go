package weights

import (
	"math"
	"testing"

	"github.com/flowsim/cpr/blockjac"
	"github.com/stretchr/testify/assert"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// twoCellDiagDominant is the S2/S3 fixture: two diagonal-only blocks,
// cell 0 = [[2,1],[1,3]], cell 1 = [[4,0],[0,5]].
func twoCellDiagDominant(t *testing.T) *blockjac.BlockMatrix {
	ptr := []int{0, 1, 2}
	idx := []int{0, 1}
	blocks := []float64{
		2, 1, 1, 3,
		4, 0, 0, 5,
	}
	m, err := blockjac.New(blockjac.CSC, 2, 2, ptr, idx, blocks)
	assert.NoError(t, err)
	return m
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("quasi_impes")
	assert.NoError(t, err)
	assert.Equal(t, QuasiImpes, s)

	_, err = ParseStrategy("bogus")
	assert.Error(t, err)
}

// S2 — Weight (quasi-IMPES, b=2): D^T = [[2,1],[1,3]] (D symmetric here so
// D^T == D), solving Dw = e1 gives w = [0.6, -0.2]; unit-scaled,
// w ~= [0.9487, -0.3162].
func TestQuasiImpesScenarioS2(t *testing.T) {
	j := twoCellDiagDominant(t)
	w := New(2, 2)
	cfg := Config{Strategy: QuasiImpes, Scaling: NoScaling}
	err := Compute(w, j, cfg, nil, nil)
	assert.NoError(t, err)
	assert.True(t, almostEqual(w.At(0, 0), 0.6, 1e-9))
	assert.True(t, almostEqual(w.At(1, 0), -0.2, 1e-9))

	wUnit := New(2, 2)
	cfg.Scaling = Unit
	err = Compute(wUnit, j, cfg, nil, nil)
	assert.NoError(t, err)
	assert.True(t, almostEqual(wUnit.At(0, 0), 0.9487, 1e-4))
	assert.True(t, almostEqual(wUnit.At(1, 0), -0.3162, 1e-4))
}

func TestUnitScalingProducesUnitNorm(t *testing.T) {
	j := twoCellDiagDominant(t)
	w := New(2, 2)
	err := Compute(w, j, Config{Strategy: QuasiImpes, Scaling: Unit}, nil, nil)
	assert.NoError(t, err)
	for c := 0; c < 2; c++ {
		var sum float64
		for i := 0; i < 2; i++ {
			v := w.At(i, c)
			sum += v * v
		}
		assert.True(t, almostEqual(math.Sqrt(sum), 1.0, 1e-9))
	}
}

// Property 6: with strategy :none, W[0,:] == 1 and all other rows are 0.
func TestNoneStrategySelectsFirstEquation(t *testing.T) {
	j := twoCellDiagDominant(t)
	w := New(2, 2)
	err := Compute(w, j, Config{Strategy: None, Scaling: NoScaling}, nil, nil)
	assert.NoError(t, err)
	for c := 0; c < 2; c++ {
		assert.Equal(t, 1.0, w.At(0, c))
		assert.Equal(t, 0.0, w.At(1, c))
	}
}

func TestQuasiImpesSingularDiagonalFails(t *testing.T) {
	ptr := []int{0, 1}
	idx := []int{0}
	// Singular diagonal block.
	blocks := []float64{1, 1, 1, 1}
	j, err := blockjac.New(blockjac.CSC, 2, 1, ptr, idx, blocks)
	assert.NoError(t, err)
	w := New(2, 1)
	err = Compute(w, j, Config{Strategy: QuasiImpes}, nil, nil)
	assert.Error(t, err)
}

type fakeAccumulation struct {
	p []float64
}

func (f fakeAccumulation) Partials() []float64 { return f.p }

func TestTrueImpesIdentityAccumulation(t *testing.T) {
	// Accumulation term j's partials equal the identity's column j, so
	// M_c == I (p_scale=1), and w should equal e1.
	b, n := 2, 1
	cells := make([]AccumulationCell, b*n)
	cells[0] = fakeAccumulation{p: []float64{1, 0}}
	cells[1] = fakeAccumulation{p: []float64{0, 1}}
	acc := &Accumulation{B: b, N: n, Cells: cells}

	ptr := []int{0, 1}
	idx := []int{0}
	j, err := blockjac.New(blockjac.CSC, b, n, ptr, idx, make([]float64, b*b))
	assert.NoError(t, err)
	w := New(b, n)
	err = Compute(w, j, Config{Strategy: TrueImpes, Scaling: NoScaling, PScale: 1}, acc, nil)
	assert.NoError(t, err)
	assert.True(t, almostEqual(w.At(0, 0), 1, 1e-9))
	assert.True(t, almostEqual(w.At(1, 0), 0, 1e-9))
}

func TestAnalyticalStrategyDelegatesToCallback(t *testing.T) {
	j := twoCellDiagDominant(t)
	w := New(2, 2)
	called := false
	fn := func(w *Weights) error {
		called = true
		for c := 0; c < w.N; c++ {
			w.Set(0, c, 7)
			w.Set(1, c, 0)
		}
		return nil
	}
	err := Compute(w, j, Config{Strategy: Analytical, Scaling: NoScaling}, nil, fn)
	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, 7.0, w.At(0, 0))
}
