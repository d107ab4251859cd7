package controllers

import (
	"time"

	"github.com/bancore/backend/pkg/db/models"
	"github.com/shopspring/decimal"
)

// MovementResponse is the wire shape of one ledger entry.
type MovementResponse struct {
	MovementID            string          `json:"movement_id"`
	AccountNumber         string          `json:"account_number"`
	MovementType          string          `json:"movement_type"`
	Amount                decimal.Decimal `json:"amount"`
	BalanceAfter          decimal.Decimal `json:"balance_after"`
	MovementDate          time.Time       `json:"movement_date"`
	CreatedAt             time.Time       `json:"created_at"`
	Status                string          `json:"status"`
	VoidedAt              *time.Time      `json:"voided_at,omitempty"`
	VoidReason            *string         `json:"void_reason,omitempty"`
	ReversalMovementID    *string         `json:"reversal_movement_id,omitempty"`
	ReplacementMovementID *string         `json:"replacement_movement_id,omitempty"`
}

// AccountResponse is the wire shape of an account.
type AccountResponse struct {
	AccountNumber  string          `json:"account_number"`
	AccountType    string          `json:"account_type"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Active         bool            `json:"active"`
	CustomerID     string          `json:"customer_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func newMovementResponse(m *models.Movement) MovementResponse {
	resp := MovementResponse{
		MovementID:    m.MovementID.String(),
		AccountNumber: m.AccountNumber,
		MovementType:  m.MovementType.String(),
		Amount:        m.Amount,
		BalanceAfter:  m.BalanceAfter,
		MovementDate:  m.MovementDate,
		CreatedAt:     m.CreatedAt,
		Status:        string(m.Status),
		VoidedAt:      m.VoidedAt,
		VoidReason:    m.VoidReason,
	}
	if m.ReversalMovementID != nil {
		id := m.ReversalMovementID.String()
		resp.ReversalMovementID = &id
	}
	if m.ReplacementMovementID != nil {
		id := m.ReplacementMovementID.String()
		resp.ReplacementMovementID = &id
	}
	return resp
}

func newMovementResponses(rows []models.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newMovementResponse(&rows[i]))
	}
	return out
}

func newAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		AccountNumber:  a.AccountNumber,
		AccountType:    a.AccountType,
		InitialBalance: a.InitialBalance,
		CurrentBalance: a.CurrentBalance,
		Active:         a.Active,
		CustomerID:     a.CustomerID.String(),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
