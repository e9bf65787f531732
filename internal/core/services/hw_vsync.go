package services

import "github.com/custodia-labs/vsync-cli/internal/core/domain"

// hwVsyncOp is an operation applied to the hardware vsync state machine.
type hwVsyncOp int

const (
	opEnable hwVsyncOp = iota
	opDisable
	opDisallow
	opAllow
)

func (op hwVsyncOp) String() string {
	switch op {
	case opEnable:
		return "enable"
	case opDisable:
		return "disable"
	case opDisallow:
		return "disallow"
	case opAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// hwVsyncEffect is the side effect a transition requires.
type hwVsyncEffect int

const (
	// effectNone issues no hardware call.
	effectNone hwVsyncEffect = iota
	// effectEnable resets the tracker model and turns hardware vsync on.
	effectEnable
	// effectDisable turns hardware vsync off.
	effectDisable
)

// transition is defined for every (state, op) pair.
// Resuming from Disallowed goes through Disabled, so the model is only reset
// on a Disabled to Enabled edge.
func transition(state domain.HwVsyncState, op hwVsyncOp) (domain.HwVsyncState, hwVsyncEffect) {
	switch op {
	case opEnable:
		if state == domain.HwVsyncDisabled {
			return domain.HwVsyncEnabled, effectEnable
		}
		return state, effectNone

	case opDisable, opDisallow:
		next := domain.HwVsyncDisabled
		if op == opDisallow {
			next = domain.HwVsyncDisallowed
		}
		if state == domain.HwVsyncEnabled {
			return next, effectDisable
		}
		return next, effectNone

	case opAllow:
		if state == domain.HwVsyncDisallowed {
			return domain.HwVsyncDisabled, effectNone
		}
		return state, effectNone
	}
	return state, effectNone
}
