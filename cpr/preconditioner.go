// Package cpr assembles the weight computation, pressure-matrix builder,
// update scheduler, and AMG/smoother collaborators into the top-level
// two-stage Constrained Pressure Residual preconditioner: a single opaque
// type exposing Update, Apply, and Rows to an outer Krylov solver.
package cpr

import (
	"github.com/flowsim/cpr/amg"
	"github.com/flowsim/cpr/blockjac"
	"github.com/flowsim/cpr/fgmres"
	"github.com/flowsim/cpr/pressuremat"
	"github.com/flowsim/cpr/schedule"
	"github.com/flowsim/cpr/weights"
)

type lifecycle int

const (
	uninitialized lifecycle = iota
	initialized
)

// Preconditioner is a Constrained Pressure Residual two-stage
// preconditioner. It starts Uninitialized (no buffers allocated) and
// transitions to Initialized on its first Update call, which fixes the
// block size and cell count for the rest of its life. It exclusively owns
// A_p, W, r_p, deltaP and the scratch buffer; it holds the caller's block
// Jacobian and full-system operator only for the duration of the call that
// passed them in.
type Preconditioner struct {
	opts Options

	state lifecycle
	b, n  int

	ap *pressuremat.Matrix
	w  *weights.Weights

	rp      []float64
	deltaP  []float64
	restore []float64 // scratch: lifted pressure correction x'
	buf     []float64 // scratch: smoother rhs r - A*x', length n*b

	pressurePrecond amg.PressureSolver
	systemPrecond   amg.SystemPreconditioner

	fg *fgmres.Solver

	amgCfg     schedule.Config
	partialCfg schedule.Config
}

// New constructs an Uninitialized preconditioner from opts. No buffers are
// allocated until the first Update call supplies a block Jacobian.
func New(opts Options) *Preconditioner {
	p := &Preconditioner{opts: opts}
	p.pressurePrecond = opts.PressurePrecond
	if p.pressurePrecond == nil {
		p.pressurePrecond = amg.NewGaussSeidelAMG(2)
	}
	p.systemPrecond = opts.SystemPrecond
	if p.systemPrecond == nil {
		p.systemPrecond = amg.NewBlockILU0()
	}
	p.amgCfg = schedule.Config{Interval: opts.UpdateInterval, Frequency: opts.UpdateFrequency}
	p.partialCfg = schedule.Config{Interval: opts.UpdateIntervalPartial, Frequency: opts.UpdateFrequencyPartial}
	return p
}

// Rows reports the full-system operator dimension, n*b. Valid only after
// the first Update (returns 0 before then).
func (p *Preconditioner) Rows() int {
	return p.n * p.b
}

func (p *Preconditioner) allocate(j *blockjac.BlockMatrix) {
	p.b, p.n = j.B, j.N
	p.ap = pressuremat.NewShell(j, false)
	p.w = weights.New(j.B, j.N)
	p.rp = make([]float64, j.N)
	p.deltaP = make([]float64, j.N)
	p.restore = make([]float64, j.N*j.B)
	p.buf = make([]float64, j.N*j.B)
}

func (p *Preconditioner) weightConfig() weights.Config {
	return weights.Config{
		Strategy: p.opts.Strategy,
		Scaling:  p.opts.WeightScaling,
		PScale:   p.opts.PScale,
		MinBatch: p.opts.minBatch(),
	}
}

// restrictResidual writes r_p[i] = sum_j r[i*b+j] * W[j,i].
func (p *Preconditioner) restrictResidual(r []float64) {
	b := p.b
	for i := 0; i < p.n; i++ {
		var sum float64
		base := i * b
		for j := 0; j < b; j++ {
			sum += r[base+j] * p.w.At(j, i)
		}
		p.rp[i] = sum
	}
}

// Update classifies the call via the scheduler and performs a full rebuild,
// a partial refresh, or smoother-only rebuild accordingly. acc feeds
// true_impes weight computation (nil for other strategies). ctx is passed
// through to the pressure solver's Setup/PartialRefresh. The full-system
// linear operator is not held here; Apply takes it on every call.
func (p *Preconditioner) Update(j *blockjac.BlockMatrix, r []float64, acc *weights.Accumulation, ctx amg.ModelContext, rec schedule.Recorder) error {
	first := p.state == uninitialized
	if first {
		p.allocate(j)
	}

	fullDue := schedule.Due(p.amgCfg, rec, first)
	partialDue := !fullDue && p.opts.PartialUpdate && schedule.Due(p.partialCfg, rec, first)

	switch {
	case fullDue:
		if err := p.rebuildWeightsAndPressure(j, acc); err != nil {
			return err
		}
		if err := p.systemPrecond.Setup(j); err != nil {
			return err
		}
		p.restrictResidual(r)
		if err := p.pressurePrecond.Setup(p.ap, p.rp, ctx); err != nil {
			return err
		}
	case partialDue:
		if err := p.rebuildWeightsAndPressure(j, acc); err != nil {
			return err
		}
		if err := p.systemPrecond.Setup(j); err != nil {
			return err
		}
		p.restrictResidual(r)
		if err := p.pressurePrecond.PartialRefresh(p.ap, p.rp, ctx); err != nil {
			return err
		}
	default:
		if err := p.systemPrecond.Setup(j); err != nil {
			return err
		}
	}

	p.state = initialized
	return nil
}

func (p *Preconditioner) rebuildWeightsAndPressure(j *blockjac.BlockMatrix, acc *weights.Accumulation) error {
	if err := weights.Compute(p.w, j, p.weightConfig(), acc, p.opts.AnalyticalFn); err != nil {
		return err
	}
	return pressuremat.Rebuild(p.ap, j, p.w, p.opts.minBatch())
}

// Apply runs the two-stage CPR application: restrict the residual by
// weights, solve the pressure subsystem, correct the full residual by the
// lifted pressure update, smooth, and increment the pressure component of
// the result. a is the full-system linear operator (the caller's A),
// supplied fresh each call since it may change between nonlinear
// iterations just as the block Jacobian does.
func (p *Preconditioner) Apply(x, r []float64, a amg.LinearOperator) error {
	p.restrictResidual(r)

	if err := p.solvePressure(); err != nil {
		return err
	}

	xPrime := p.restore
	for i := range xPrime {
		xPrime[i] = 0
	}
	b := p.b
	for i := 0; i < p.n; i++ {
		xPrime[i*b] = p.deltaP[i]
	}

	y := p.buf
	for i := range y {
		y[i] = 0
	}
	a.MulAdd(y, xPrime)
	for i := range y {
		y[i] = r[i] - y[i]
	}

	if err := p.systemPrecond.Apply(x, y); err != nil {
		return err
	}

	for i := 0; i < p.n; i++ {
		x[i*b] += p.deltaP[i]
	}
	return nil
}

// solvePressure computes Δp ≈ A_p⁻¹ r_p, either via a single AMG apply or,
// when PRtol > 0, via FGMRES wrapping AMG as a right preconditioner and
// warm-starting from the previous Δp.
func (p *Preconditioner) solvePressure() error {
	if p.opts.PRtol <= 0 {
		return p.pressurePrecond.Apply(p.deltaP, p.rp)
	}
	if p.fg == nil {
		p.fg = fgmres.NewSolver(p.pressurePrecond.LinearOperator(), 20, p.opts.PRtol)
		p.fg.Tol = p.opts.PRtol
	}
	precond := func(z, rr []float64) error {
		for i := range z {
			z[i] = 0
		}
		return p.pressurePrecond.Apply(z, rr)
	}
	_, _, err := p.fg.Solve(p.deltaP, p.rp, precond)
	return err
}
