package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bancore/backend/pkg/enums"
)

// Movement is a single ledger entry. Rows are never deleted; after insertion
// only the status and the void/linkage fields may change, and each exactly
// once. Canonical replay order is (movement_date, created_at, movement_id).
type Movement struct {
	MovementID            uuid.UUID            `gorm:"column:movement_id;type:uuid;primaryKey"`
	AccountNumber         string               `gorm:"column:account_number;not null;index"`
	MovementType          enums.MovementType   `gorm:"column:movement_type;not null"`
	Amount                decimal.Decimal      `gorm:"column:amount;type:numeric(18,2);not null"`
	BalanceAfter          decimal.Decimal      `gorm:"column:balance_after;type:numeric(18,2);not null"`
	MovementDate          time.Time            `gorm:"column:movement_date;not null"`
	CreatedAt             time.Time            `gorm:"column:created_at;not null"`
	Status                enums.MovementStatus `gorm:"column:status;not null"`
	VoidedAt              *time.Time           `gorm:"column:voided_at"`
	VoidReason            *string              `gorm:"column:void_reason"`
	ReversalMovementID    *uuid.UUID           `gorm:"column:reversal_movement_id;type:uuid"`
	ReplacementMovementID *uuid.UUID           `gorm:"column:replacement_movement_id;type:uuid"`
}

// TableName overrides the default pluralization.
func (Movement) TableName() string {
	return "movements"
}
