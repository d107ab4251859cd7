package enums

import "fmt"

// MovementStatus maps to the status column on movements. Transitions are
// one-way: ACTIVE -> VOIDED or ACTIVE -> SUPERSEDED, both terminal.
type MovementStatus string

const (
	MovementStatusActive     MovementStatus = "ACTIVE"
	MovementStatusVoided     MovementStatus = "VOIDED"
	MovementStatusSuperseded MovementStatus = "SUPERSEDED"
)

var validMovementStatuses = []MovementStatus{
	MovementStatusActive,
	MovementStatusVoided,
	MovementStatusSuperseded,
}

// String implements fmt.Stringer.
func (s MovementStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s MovementStatus) IsValid() bool {
	for _, candidate := range validMovementStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseMovementStatus converts raw input into a MovementStatus.
func ParseMovementStatus(value string) (MovementStatus, error) {
	for _, candidate := range validMovementStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement status %q", value)
}
