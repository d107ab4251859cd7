package enums

import "fmt"

// MovementType maps to the movement_type column on movements.
type MovementType string

const (
	MovementTypeDeposit    MovementType = "DEPOSIT"
	MovementTypeWithdrawal MovementType = "WITHDRAWAL"
)

var validMovementTypes = []MovementType{
	MovementTypeDeposit,
	MovementTypeWithdrawal,
}

// String implements fmt.Stringer.
func (t MovementType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical movement type enum.
func (t MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// Opposite returns the type that cancels this one's balance effect.
func (t MovementType) Opposite() MovementType {
	if t == MovementTypeWithdrawal {
		return MovementTypeDeposit
	}
	return MovementTypeWithdrawal
}

// ParseMovementType converts raw input into a MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
