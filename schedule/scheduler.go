// Package schedule implements C4: the update-scheduling state machine that
// decides, on each call to the outer Update, whether to rebuild the AMG
// hierarchy, cheaply refresh its numerics, or do neither.
package schedule

import "github.com/flowsim/cpr/cprerr"

// Interval selects the granularity at which a refresh is considered due.
type Interval int

const (
	Once Interval = iota
	Iteration
	Ministep
	Step
)

// ParseInterval maps the constructor-option string tags onto an Interval.
func ParseInterval(s string) (Interval, error) {
	switch s {
	case "once":
		return Once, nil
	case "iteration":
		return Iteration, nil
	case "ministep":
		return Ministep, nil
	case "step":
		return Step, nil
	default:
		return 0, &cprerr.BadScheduleConfig{Interval: s}
	}
}

// Config is one (interval, frequency) pair; the scheduler state carries two
// of these, one for :amg and one for :partial.
type Config struct {
	Interval  Interval
	Frequency int
}

// Recorder reports the caller's current position in the outer nonlinear
// solve.
type Recorder struct {
	Step        int
	Ministep    int
	Subiteration int
}

// Due evaluates cfg against rec to decide whether a refresh of a given kind
// is due. It is stateless across calls except for the "matrices null"
// bootstrap flag, which the owning cpr.Preconditioner tracks and passes in
// explicitly via first.
func Due(cfg Config, rec Recorder, first bool) bool {
	if first {
		return true
	}
	var crit bool
	var n int
	switch cfg.Interval {
	case Once:
		return false
	case Iteration:
		crit = true
		n = rec.Subiteration
	case Ministep:
		crit = rec.Subiteration == 1
		n = rec.Ministep
	case Step:
		crit = rec.Subiteration == 1
		n = rec.Step
	default:
		// Unreachable if cfg.Interval came from ParseInterval; guard anyway
		// since Config can be constructed directly by a caller.
		return false
	}
	if !crit {
		return false
	}
	freq := cfg.Frequency
	if freq <= 1 {
		return true
	}
	return n%freq == 1
}
