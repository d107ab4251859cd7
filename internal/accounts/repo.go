package accounts

import (
	"context"
	"errors"

	"github.com/bancore/backend/internal/repo"
	"github.com/bancore/backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository manages persistence for accounts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, account *models.Account) error
	FindByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	FindByNumberForUpdate(ctx context.Context, accountNumber string) (*models.Account, error)
	List(ctx context.Context, customerID *uuid.UUID) ([]models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	UpdateBalance(ctx context.Context, accountNumber string, balance decimal.Decimal) error
}

type repository struct {
	base repo.Base
}

// NewRepository returns an account repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, account *models.Account) error {
	return r.base.DB(ctx).Create(account).Error
}

func (r *repository) FindByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	var account models.Account
	err := r.base.DB(ctx).
		Where("account_number = ?", accountNumber).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindByNumberForUpdate locks the account row for the remainder of the
// enclosing transaction. Every balance decision reads through this lock.
func (r *repository) FindByNumberForUpdate(ctx context.Context, accountNumber string) (*models.Account, error) {
	var account models.Account
	err := repo.ForUpdate(r.base.DB(ctx)).
		Where("account_number = ?", accountNumber).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *repository) List(ctx context.Context, customerID *uuid.UUID) ([]models.Account, error) {
	query := r.base.DB(ctx).Order("account_number ASC")
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	var accounts []models.Account
	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *repository) Save(ctx context.Context, account *models.Account) error {
	return r.base.DB(ctx).Save(account).Error
}

func (r *repository) UpdateBalance(ctx context.Context, accountNumber string, balance decimal.Decimal) error {
	return r.base.DB(ctx).
		Model(&models.Account{}).
		Where("account_number = ?", accountNumber).
		Update("current_balance", balance).Error
}
