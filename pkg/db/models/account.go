package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account owns the current balance for one account number. The initial
// balance is fixed at creation; every committed movement operation rewrites
// the current balance.
type Account struct {
	AccountNumber  string          `gorm:"column:account_number;primaryKey"`
	AccountType    string          `gorm:"column:account_type;not null"`
	InitialBalance decimal.Decimal `gorm:"column:initial_balance;type:numeric(18,2);not null"`
	CurrentBalance decimal.Decimal `gorm:"column:current_balance;type:numeric(18,2);not null"`
	Active         bool            `gorm:"column:active;not null;default:true"`
	CustomerID     uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (Account) TableName() string {
	return "accounts"
}
