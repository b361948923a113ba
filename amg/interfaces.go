// Package amg defines the pressure-subsystem solver and full-system
// smoother interfaces the two-stage apply (C5) composes. Real
// algebraic-multigrid hierarchy construction (coarsening, aggregation,
// restriction/prolongation) is out of scope here — PressureSolver is
// treated as an external collaborator. This package ships two concrete,
// in-scope implementations so the preconditioner is runnable standalone:
// GaussSeidelAMG (a minimal single-level stand-in behind the PressureSolver
// interface, not a real multigrid hierarchy) and BlockILU0 (the full-system
// smoother named as the default, which genuinely is in scope).
package amg

import (
	"github.com/flowsim/cpr/blockjac"
	"github.com/flowsim/cpr/pressuremat"
)

// ModelContext is the opaque physical-state context passed through Setup
// calls; the core never inspects it.
type ModelContext interface{}

// LinearOperator is the full-system operator A exposed by the outer
// solver's linear-system abstraction.
type LinearOperator interface {
	// MulAdd computes dst += A * x (dst and x both length Rows()).
	MulAdd(dst, x []float64)
	Rows() int
}

// PressureSolver is the AMG collaborator: setup/apply/partial-refresh over
// the scalar pressure system.
type PressureSolver interface {
	Setup(ap *pressuremat.Matrix, rp []float64, ctx ModelContext) error
	Apply(deltaP, rp []float64) error
	PartialRefresh(ap *pressuremat.Matrix, rp []float64, ctx ModelContext) error
	LinearOperator() LinearOperator
}

// SystemPreconditioner is the full-system smoother: a general block
// preconditioner, e.g. block-ILU(0).
type SystemPreconditioner interface {
	Setup(j *blockjac.BlockMatrix) error
	Apply(x, y []float64) error
}
