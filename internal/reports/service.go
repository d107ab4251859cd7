package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bancore/backend/internal/accounts"
	"github.com/bancore/backend/internal/customers"
	"github.com/bancore/backend/internal/movements"
	"github.com/bancore/backend/pkg/db/models"
	pkgerrors "github.com/bancore/backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Query selects the customer and the movement date window for a report.
// Exactly one of CustomerID or Identification must be set.
type Query struct {
	CustomerID     *uuid.UUID
	Identification string
	From           time.Time
	To             time.Time
}

// Report is the account statement projection for one customer.
type Report struct {
	Customer CustomerSummary `json:"customer"`
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Accounts []AccountReport `json:"accounts"`
}

// CustomerSummary is the report header.
type CustomerSummary struct {
	CustomerID     uuid.UUID `json:"customer_id"`
	Identification string    `json:"identification"`
	Name           string    `json:"name"`
	Active         bool      `json:"active"`
}

// AccountReport carries one account's balances plus its movements in range.
type AccountReport struct {
	AccountNumber  string            `json:"account_number"`
	AccountType    string            `json:"account_type"`
	Active         bool              `json:"active"`
	InitialBalance decimal.Decimal   `json:"initial_balance"`
	CurrentBalance decimal.Decimal   `json:"current_balance"`
	Movements      []models.Movement `json:"movements"`
}

// Service builds read-only account statements.
type Service interface {
	AccountStatement(ctx context.Context, query Query) (*Report, error)
}

type service struct {
	customers customers.Repository
	accounts  accounts.Repository
	movements movements.Repository
}

// NewService wires the reporting service.
func NewService(customersRepo customers.Repository, accountsRepo accounts.Repository, movementsRepo movements.Repository) (Service, error) {
	if customersRepo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if accountsRepo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if movementsRepo == nil {
		return nil, fmt.Errorf("movements repository required")
	}
	return &service{
		customers: customersRepo,
		accounts:  accountsRepo,
		movements: movementsRepo,
	}, nil
}

// AccountStatement resolves the customer, then projects every account with its
// movements inside [from, to]. Only ACTIVE movements appear; voided and
// superseded history is excluded from statements.
func (s *service) AccountStatement(ctx context.Context, query Query) (*Report, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	snapshot, err := s.resolveCustomer(ctx, query)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	accountRows, err := s.accounts.List(ctx, &snapshot.CustomerID)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Customer: CustomerSummary{
			CustomerID:     snapshot.CustomerID,
			Identification: snapshot.Identification,
			Name:           snapshot.Name,
			Active:         snapshot.Active,
		},
		From:     query.From,
		To:       query.To,
		Accounts: make([]AccountReport, 0, len(accountRows)),
	}

	for _, account := range accountRows {
		history, err := s.movements.ListActiveInRange(ctx, account.AccountNumber, query.From, query.To)
		if err != nil {
			return nil, err
		}
		report.Accounts = append(report.Accounts, AccountReport{
			AccountNumber:  account.AccountNumber,
			AccountType:    string(account.AccountType),
			Active:         account.Active,
			InitialBalance: account.InitialBalance,
			CurrentBalance: account.CurrentBalance,
			Movements:      history,
		})
	}
	return report, nil
}

func (s *service) resolveCustomer(ctx context.Context, query Query) (*models.ClientSnapshot, error) {
	if query.CustomerID != nil {
		return s.customers.FindSnapshotByID(ctx, *query.CustomerID)
	}
	return s.customers.FindSnapshotByIdentification(ctx, strings.TrimSpace(query.Identification))
}

func validateQuery(query Query) error {
	if query.From.IsZero() || query.To.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "from and to dates are required")
	}
	if query.To.Before(query.From) {
		return pkgerrors.New(pkgerrors.CodeValidation, "to date must not precede from date")
	}
	hasID := query.CustomerID != nil && *query.CustomerID != uuid.Nil
	hasIdentification := strings.TrimSpace(query.Identification) != ""
	if hasID == hasIdentification {
		return pkgerrors.New(pkgerrors.CodeValidation, "exactly one of customer_id or identification is required")
	}
	return nil
}
