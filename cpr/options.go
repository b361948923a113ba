package cpr

import (
	"github.com/flowsim/cpr/amg"
	"github.com/flowsim/cpr/schedule"
	"github.com/flowsim/cpr/weights"
)

// Options bundles every constructor-time choice the preconditioner needs:
// which pressure solver and full-system smoother to wrap, which weight
// strategy to extract pressure with, and how aggressively to re-derive
// both. Zero-value fields fall back to sensible defaults in New.
type Options struct {
	PressurePrecond amg.PressureSolver       // default: amg.NewGaussSeidelAMG(2)
	SystemPrecond   amg.SystemPreconditioner // default: amg.NewBlockILU0()

	Strategy      weights.Strategy
	WeightScaling weights.Scaling
	PScale        float64
	AnalyticalFn  weights.AnalyticalFunc

	UpdateInterval         schedule.Interval
	UpdateFrequency        int
	PartialUpdate          bool
	UpdateIntervalPartial  schedule.Interval
	UpdateFrequencyPartial int

	// PRtol, when positive, enables the FGMRES tightening path on the
	// pressure subsystem at this relative tolerance.
	PRtol float64

	MinBatch int
}

func (o Options) minBatch() int {
	if o.MinBatch <= 0 {
		return 64
	}
	return o.MinBatch
}
