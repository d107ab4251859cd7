package movements

import (
	"context"
	"errors"
	"time"

	"github.com/bancore/backend/internal/repo"
	"github.com/bancore/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// canonicalOrder is the total order used for balance replay. The movement id
// tie-break keeps same-instant entries deterministic.
const canonicalOrder = "movement_date ASC, created_at ASC, movement_id ASC"

// SearchFilter narrows the movement listing. Nil date bounds are unbounded.
type SearchFilter struct {
	AccountNumber string
	CustomerID    *uuid.UUID
	From          *time.Time
	To            *time.Time
	IncludeVoided bool
}

// Repository manages persistence for movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, movement *models.Movement) error
	FindByID(ctx context.Context, movementID uuid.UUID) (*models.Movement, error)
	FindByIDForUpdate(ctx context.Context, movementID uuid.UUID) (*models.Movement, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]models.Movement, error)
	SaveLifecycle(ctx context.Context, movement *models.Movement) error
	SaveBalances(ctx context.Context, movements []models.Movement) error
	Search(ctx context.Context, filter SearchFilter) ([]models.Movement, error)
	ListActiveInRange(ctx context.Context, accountNumber string, from, to time.Time) ([]models.Movement, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns a movement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, movement *models.Movement) error {
	return r.base.DB(ctx).Create(movement).Error
}

func (r *repository) FindByID(ctx context.Context, movementID uuid.UUID) (*models.Movement, error) {
	var movement models.Movement
	err := r.base.DB(ctx).
		Where("movement_id = ?", movementID).
		First(&movement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}

// FindByIDForUpdate locks the movement row. Callers must already hold the
// account row lock; account-before-movement is the fixed lock order.
func (r *repository) FindByIDForUpdate(ctx context.Context, movementID uuid.UUID) (*models.Movement, error) {
	var movement models.Movement
	err := repo.ForUpdate(r.base.DB(ctx)).
		Where("movement_id = ?", movementID).
		First(&movement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}

// ListByAccount returns every movement for the account, any status, in
// canonical replay order.
func (r *repository) ListByAccount(ctx context.Context, accountNumber string) ([]models.Movement, error) {
	var movements []models.Movement
	err := r.base.DB(ctx).
		Where("account_number = ?", accountNumber).
		Order(canonicalOrder).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// SaveLifecycle persists the status and linkage fields of a movement that
// just transitioned out of ACTIVE.
func (r *repository) SaveLifecycle(ctx context.Context, movement *models.Movement) error {
	return r.base.DB(ctx).
		Model(&models.Movement{}).
		Where("movement_id = ?", movement.MovementID).
		Updates(map[string]any{
			"status":                  movement.Status,
			"voided_at":               movement.VoidedAt,
			"void_reason":             movement.VoidReason,
			"reversal_movement_id":    movement.ReversalMovementID,
			"replacement_movement_id": movement.ReplacementMovementID,
		}).Error
}

// SaveBalances rewrites balance_after for the given movements as one batch
// inside the caller's transaction.
func (r *repository) SaveBalances(ctx context.Context, movements []models.Movement) error {
	db := r.base.DB(ctx)
	for i := range movements {
		err := db.Model(&models.Movement{}).
			Where("movement_id = ?", movements[i].MovementID).
			Update("balance_after", movements[i].BalanceAfter).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) Search(ctx context.Context, filter SearchFilter) ([]models.Movement, error) {
	query := r.base.DB(ctx).Model(&models.Movement{})

	if filter.AccountNumber != "" {
		query = query.Where("movements.account_number = ?", filter.AccountNumber)
	}
	if filter.CustomerID != nil {
		query = query.
			Joins("JOIN accounts ON accounts.account_number = movements.account_number").
			Where("accounts.customer_id = ?", *filter.CustomerID)
	}
	if filter.From != nil {
		query = query.Where("movements.movement_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("movements.movement_date <= ?", *filter.To)
	}
	if !filter.IncludeVoided {
		query = query.Where("movements.status = ?", "ACTIVE")
	}

	var movements []models.Movement
	err := query.
		Order("movements.movement_date ASC, movements.created_at ASC, movements.movement_id ASC").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// ListActiveInRange returns the ACTIVE movements for the account with a
// movement date inside [from, to], in canonical order.
func (r *repository) ListActiveInRange(ctx context.Context, accountNumber string, from, to time.Time) ([]models.Movement, error) {
	var movements []models.Movement
	err := r.base.DB(ctx).
		Where("account_number = ? AND status = ? AND movement_date BETWEEN ? AND ?",
			accountNumber, "ACTIVE", from, to).
		Order(canonicalOrder).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}
