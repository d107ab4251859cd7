package customers

import (
	"context"
	"errors"

	"github.com/bancore/backend/internal/repo"
	"github.com/bancore/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages the local customer snapshots and their dedup markers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindSnapshotByID(ctx context.Context, customerID uuid.UUID) (*models.ClientSnapshot, error)
	FindSnapshotByIdentification(ctx context.Context, identification string) (*models.ClientSnapshot, error)
	SaveSnapshot(ctx context.Context, snapshot *models.ClientSnapshot) error
	IsEventProcessed(ctx context.Context, eventID uuid.UUID) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID uuid.UUID) error
}

type repository struct {
	base repo.Base
}

// NewRepository returns a customer snapshot repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) FindSnapshotByID(ctx context.Context, customerID uuid.UUID) (*models.ClientSnapshot, error) {
	var snapshot models.ClientSnapshot
	err := r.base.DB(ctx).
		Where("customer_id = ?", customerID).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

func (r *repository) FindSnapshotByIdentification(ctx context.Context, identification string) (*models.ClientSnapshot, error) {
	var snapshot models.ClientSnapshot
	err := r.base.DB(ctx).
		Where("identification = ?", identification).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

func (r *repository) SaveSnapshot(ctx context.Context, snapshot *models.ClientSnapshot) error {
	return r.base.DB(ctx).Save(snapshot).Error
}

func (r *repository) IsEventProcessed(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var count int64
	err := r.base.DB(ctx).
		Model(&models.ProcessedEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) MarkEventProcessed(ctx context.Context, eventID uuid.UUID) error {
	return r.base.DB(ctx).Create(&models.ProcessedEvent{EventID: eventID}).Error
}
