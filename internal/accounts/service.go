package accounts

import (
	"context"
	"fmt"

	"github.com/bancore/backend/pkg/db/models"
	pkgerrors "github.com/bancore/backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerDirectory is the read-only view of the local customer snapshots
// used to gate account creation.
type CustomerDirectory interface {
	FindSnapshotByID(ctx context.Context, customerID uuid.UUID) (*models.ClientSnapshot, error)
}

// Service exposes account lifecycle operations that never touch movements.
type Service interface {
	Create(ctx context.Context, input CreateAccountInput) (*models.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	List(ctx context.Context, customerID *uuid.UUID) ([]models.Account, error)
	UpdateType(ctx context.Context, accountNumber string, accountType string) (*models.Account, error)
	Deactivate(ctx context.Context, accountNumber string) error
}

// CreateAccountInput captures the immutable data a new account requires.
type CreateAccountInput struct {
	AccountNumber  string
	AccountType    string
	InitialBalance decimal.Decimal
	CustomerID     uuid.UUID
}

type service struct {
	repo      Repository
	customers CustomerDirectory
}

// NewService wires an account service with its repository and the customer
// snapshot directory.
func NewService(repo Repository, customers CustomerDirectory) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer directory required")
	}
	return &service{repo: repo, customers: customers}, nil
}

func (s *service) Create(ctx context.Context, input CreateAccountInput) (*models.Account, error) {
	if input.AccountNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account number is required")
	}
	if input.InitialBalance.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial balance must not be negative")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	existing, err := s.repo.FindByNumber(ctx, input.AccountNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already exists")
	}

	snapshot, err := s.customers.FindSnapshotByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if !snapshot.Active {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer inactive")
	}

	account := &models.Account{
		AccountNumber:  input.AccountNumber,
		AccountType:    input.AccountType,
		InitialBalance: input.InitialBalance,
		CurrentBalance: input.InitialBalance,
		Active:         true,
		CustomerID:     input.CustomerID,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) GetByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	account, err := s.repo.FindByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	return account, nil
}

func (s *service) List(ctx context.Context, customerID *uuid.UUID) ([]models.Account, error) {
	return s.repo.List(ctx, customerID)
}

func (s *service) UpdateType(ctx context.Context, accountNumber string, accountType string) (*models.Account, error) {
	if accountType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account type is required")
	}
	account, err := s.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	account.AccountType = accountType
	if err := s.repo.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) Deactivate(ctx context.Context, accountNumber string) error {
	account, err := s.GetByNumber(ctx, accountNumber)
	if err != nil {
		return err
	}
	account.Active = false
	return s.repo.Save(ctx, account)
}
