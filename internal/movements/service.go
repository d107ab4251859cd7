package movements

import (
	"context"
	"fmt"
	"time"

	"github.com/bancore/backend/internal/accounts"
	"github.com/bancore/backend/internal/repo"
	"github.com/bancore/backend/pkg/db/models"
	"github.com/bancore/backend/pkg/enums"
	pkgerrors "github.com/bancore/backend/pkg/errors"
	"github.com/bancore/backend/pkg/logger"
	"github.com/bancore/backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service orchestrates the movement lifecycle: create, void and rectify.
// Every mutation runs inside one transaction that locks the account row
// first and the movement row second.
type Service interface {
	Create(ctx context.Context, input CreateMovementInput) (*models.Movement, error)
	GetByID(ctx context.Context, movementID uuid.UUID) (*models.Movement, error)
	Search(ctx context.Context, filter SearchFilter) ([]models.Movement, error)
	Void(ctx context.Context, movementID uuid.UUID, reason string) (*VoidResult, error)
	Rectify(ctx context.Context, movementID uuid.UUID, input RectifyInput) (*RectifyResult, error)
}

// CreateMovementInput captures a new deposit or withdrawal.
type CreateMovementInput struct {
	AccountNumber string
	MovementType  enums.MovementType
	Amount        decimal.Decimal
}

// RectifyInput describes the replacement for a superseded movement. A nil
// MovementDate defaults to the operation time.
type RectifyInput struct {
	MovementType enums.MovementType
	Amount       decimal.Decimal
	MovementDate *time.Time
}

// VoidResult reports the linkage created by a void operation.
type VoidResult struct {
	OriginalMovementID uuid.UUID
	ReversalMovementID uuid.UUID
	AccountNumber      string
	CurrentBalance     decimal.Decimal
}

// RectifyResult reports the linkage created by a rectification.
type RectifyResult struct {
	OriginalMovementID    uuid.UUID
	ReversalMovementID    uuid.UUID
	ReplacementMovementID uuid.UUID
	AccountNumber         string
	CurrentBalance        decimal.Decimal
}

// ServiceParams wires the movement service dependencies.
type ServiceParams struct {
	DB       repo.TxRunner
	Repo     Repository
	Accounts accounts.Repository
	Logger   *logger.Logger
	Metrics  *metrics.LedgerMetrics
	Now      func() time.Time
}

type service struct {
	db       repo.TxRunner
	repo     Repository
	accounts accounts.Repository
	logg     *logger.Logger
	metrics  *metrics.LedgerMetrics
	now      func() time.Time
}

// NewService builds the movement lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("movements repository required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:       params.DB,
		repo:     params.Repo,
		accounts: params.Accounts,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateMovementInput) (*models.Movement, error) {
	if input.AccountNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account number is required")
	}
	if !input.MovementType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement type")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var movement *models.Movement
	err := s.observe(ctx, "create", func() error {
		return s.db.WithTx(ctx, func(tx *gorm.DB) error {
			accRepo := s.accounts.WithTx(tx)
			movRepo := s.repo.WithTx(tx)

			account, err := accRepo.FindByNumberForUpdate(ctx, input.AccountNumber)
			if err != nil {
				return err
			}
			if account == nil {
				return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
			}
			if !account.Active {
				return pkgerrors.New(pkgerrors.CodeConflict, "account inactive")
			}

			newBalance := applyAmount(account.CurrentBalance, input.MovementType, input.Amount)
			if newBalance.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient funds")
			}

			now := s.now().UTC()
			movement = &models.Movement{
				MovementID:    uuid.New(),
				AccountNumber: account.AccountNumber,
				MovementType:  input.MovementType,
				Amount:        input.Amount,
				BalanceAfter:  newBalance,
				MovementDate:  now,
				CreatedAt:     now,
				Status:        enums.MovementStatusActive,
			}
			if err := movRepo.Create(ctx, movement); err != nil {
				return err
			}
			return accRepo.UpdateBalance(ctx, account.AccountNumber, newBalance)
		})
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *service) GetByID(ctx context.Context, movementID uuid.UUID) (*models.Movement, error) {
	movement, err := s.repo.FindByID(ctx, movementID)
	if err != nil {
		return nil, err
	}
	if movement == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "movement not found")
	}
	return movement, nil
}

func (s *service) Search(ctx context.Context, filter SearchFilter) ([]models.Movement, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before or equal to to")
	}
	return s.repo.Search(ctx, filter)
}

func (s *service) Void(ctx context.Context, movementID uuid.UUID, reason string) (*VoidResult, error) {
	if movementID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement id is required")
	}

	var result *VoidResult
	err := s.observe(ctx, "void", func() error {
		return s.db.WithTx(ctx, func(tx *gorm.DB) error {
			accRepo := s.accounts.WithTx(tx)
			movRepo := s.repo.WithTx(tx)

			original, account, err := s.lockForLifecycle(ctx, accRepo, movRepo, movementID)
			if err != nil {
				return err
			}

			now := s.now().UTC()
			original.Status = enums.MovementStatusVoided
			original.VoidedAt = &now
			original.VoidReason = &reason

			reversal := buildReversal(original, now, account.CurrentBalance)
			if err := movRepo.Create(ctx, reversal); err != nil {
				return err
			}
			original.ReversalMovementID = &reversal.MovementID
			if err := movRepo.SaveLifecycle(ctx, original); err != nil {
				return err
			}

			balance, err := s.reconcile(ctx, accRepo, movRepo, account)
			if err != nil {
				return err
			}
			result = &VoidResult{
				OriginalMovementID: original.MovementID,
				ReversalMovementID: reversal.MovementID,
				AccountNumber:      account.AccountNumber,
				CurrentBalance:     balance,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Rectify(ctx context.Context, movementID uuid.UUID, input RectifyInput) (*RectifyResult, error) {
	if movementID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "movement id is required")
	}
	if !input.MovementType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid movement type")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var result *RectifyResult
	err := s.observe(ctx, "rectify", func() error {
		return s.db.WithTx(ctx, func(tx *gorm.DB) error {
			accRepo := s.accounts.WithTx(tx)
			movRepo := s.repo.WithTx(tx)

			original, account, err := s.lockForLifecycle(ctx, accRepo, movRepo, movementID)
			if err != nil {
				return err
			}

			now := s.now().UTC()
			original.Status = enums.MovementStatusSuperseded

			reversal := buildReversal(original, now, account.CurrentBalance)
			if err := movRepo.Create(ctx, reversal); err != nil {
				return err
			}

			movementDate := now
			if input.MovementDate != nil {
				movementDate = input.MovementDate.UTC()
			}
			replacement := &models.Movement{
				MovementID:    uuid.New(),
				AccountNumber: original.AccountNumber,
				MovementType:  input.MovementType,
				Amount:        input.Amount,
				BalanceAfter:  account.CurrentBalance,
				MovementDate:  movementDate,
				CreatedAt:     now,
				Status:        enums.MovementStatusActive,
			}
			if err := movRepo.Create(ctx, replacement); err != nil {
				return err
			}

			original.ReversalMovementID = &reversal.MovementID
			original.ReplacementMovementID = &replacement.MovementID
			if err := movRepo.SaveLifecycle(ctx, original); err != nil {
				return err
			}

			balance, err := s.reconcile(ctx, accRepo, movRepo, account)
			if err != nil {
				return err
			}
			result = &RectifyResult{
				OriginalMovementID:    original.MovementID,
				ReversalMovementID:    reversal.MovementID,
				ReplacementMovementID: replacement.MovementID,
				AccountNumber:         account.AccountNumber,
				CurrentBalance:        balance,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockForLifecycle resolves the movement's account, takes the account lock,
// then the movement lock, and re-checks the movement is still ACTIVE. The
// unlocked peek only discovers the account number; every decision is made on
// the locked rows.
func (s *service) lockForLifecycle(
	ctx context.Context,
	accRepo accounts.Repository,
	movRepo Repository,
	movementID uuid.UUID,
) (*models.Movement, *models.Account, error) {
	peek, err := movRepo.FindByID(ctx, movementID)
	if err != nil {
		return nil, nil, err
	}
	if peek == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "movement not found")
	}

	account, err := accRepo.FindByNumberForUpdate(ctx, peek.AccountNumber)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
	}
	if !account.Active {
		return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "account inactive")
	}

	original, err := movRepo.FindByIDForUpdate(ctx, movementID)
	if err != nil {
		return nil, nil, err
	}
	if original == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "movement not found")
	}
	if original.Status != enums.MovementStatusActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeConflict, "movement not active")
	}
	return original, account, nil
}

func buildReversal(original *models.Movement, now time.Time, balanceAfter decimal.Decimal) *models.Movement {
	return &models.Movement{
		MovementID:    uuid.New(),
		AccountNumber: original.AccountNumber,
		MovementType:  original.MovementType.Opposite(),
		Amount:        original.Amount,
		BalanceAfter:  balanceAfter,
		MovementDate:  now,
		CreatedAt:     now,
		Status:        enums.MovementStatusActive,
	}
}

func applyAmount(balance decimal.Decimal, movementType enums.MovementType, amount decimal.Decimal) decimal.Decimal {
	if movementType == enums.MovementTypeWithdrawal {
		return balance.Sub(amount)
	}
	return balance.Add(amount)
}

func (s *service) observe(ctx context.Context, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.ObserveDuration(operation, time.Since(start))
	if err != nil {
		code := string(pkgerrors.CodeInternal)
		if typed := pkgerrors.As(err); typed != nil {
			code = string(typed.Code())
		}
		s.metrics.IncFailure(operation, code)
		if s.logg != nil {
			s.logg.Error(ctx, fmt.Sprintf("movement %s failed", operation), err)
		}
		return err
	}
	s.metrics.IncSuccess(operation)
	return nil
}
