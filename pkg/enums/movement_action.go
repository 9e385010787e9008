package enums

import "fmt"

// MovementAction identifies why a stock quantity changed.
type MovementAction string

const (
	MovementActionAdd          MovementAction = "ADD"
	MovementActionRemove       MovementAction = "REMOVE"
	MovementActionMoveOut      MovementAction = "MOVE_OUT"
	MovementActionMoveIn       MovementAction = "MOVE_IN"
	MovementActionStagingToBin MovementAction = "STAGING_TO_BIN"
	MovementActionCycleAdjust  MovementAction = "CYCLE_ADJUST"
	MovementActionOutbound     MovementAction = "OUTBOUND"
)

var validMovementActions = []MovementAction{
	MovementActionAdd,
	MovementActionRemove,
	MovementActionMoveOut,
	MovementActionMoveIn,
	MovementActionStagingToBin,
	MovementActionCycleAdjust,
	MovementActionOutbound,
}

// IsValid reports whether the value matches a known movement action.
func (a MovementAction) IsValid() bool {
	for _, candidate := range validMovementActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseMovementAction converts raw input into a MovementAction.
func ParseMovementAction(value string) (MovementAction, error) {
	for _, candidate := range validMovementActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement action %q", value)
}
