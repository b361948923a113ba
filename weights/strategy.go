package weights

import "github.com/flowsim/cpr/cprerr"

// Strategy selects how per-cell pressure-extraction weights are computed.
type Strategy int

const (
	QuasiImpes Strategy = iota
	TrueImpes
	Analytical
	None
)

// ParseStrategy maps the constructor-option string tags onto a Strategy,
// failing with cprerr.UnsupportedStrategy on anything else.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "quasi_impes":
		return QuasiImpes, nil
	case "true_impes":
		return TrueImpes, nil
	case "analytical":
		return Analytical, nil
	case "none":
		return None, nil
	default:
		return 0, &cprerr.UnsupportedStrategy{Strategy: s}
	}
}

func (s Strategy) String() string {
	switch s {
	case QuasiImpes:
		return "quasi_impes"
	case TrueImpes:
		return "true_impes"
	case Analytical:
		return "analytical"
	case None:
		return "none"
	default:
		return "unknown"
	}
}

// Scaling selects the post-solve normalization policy.
type Scaling int

const (
	Unit Scaling = iota
	NoScaling
)

// ParseScaling maps ":unit"/":none" onto a Scaling.
func ParseScaling(s string) (Scaling, error) {
	switch s {
	case "unit":
		return Unit, nil
	case "none":
		return NoScaling, nil
	default:
		return 0, &cprerr.UnsupportedStrategy{Strategy: s}
	}
}
