package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bancore/backend/internal/repo"
	"github.com/bancore/backend/pkg/db"
	"github.com/bancore/backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerEvent is the wire shape of a customer lifecycle event. Delivery is
// at-least-once and unordered; events are applied in arrival order.
type CustomerEvent struct {
	EventID    string               `json:"event_id"`
	EventType  string               `json:"event_type"`
	OccurredAt *time.Time           `json:"occurred_at"`
	Payload    CustomerEventPayload `json:"payload"`
}

// CustomerEventPayload carries the customer fields mirrored into the snapshot.
type CustomerEventPayload struct {
	CustomerID         string  `json:"customer_id"`
	Identification     string  `json:"identification"`
	IdentificationType *string `json:"identification_type"`
	Name               string  `json:"name"`
	Active             bool    `json:"active"`
}

// ApplyOutcome classifies what Apply did with an event.
type ApplyOutcome string

const (
	OutcomeApplied   ApplyOutcome = "applied"
	OutcomeDuplicate ApplyOutcome = "duplicate"
	OutcomeMalformed ApplyOutcome = "malformed"
)

// Service applies customer lifecycle events idempotently.
type Service interface {
	Apply(ctx context.Context, event CustomerEvent) (ApplyOutcome, error)
	GetSnapshot(ctx context.Context, customerID uuid.UUID) (*models.ClientSnapshot, error)
	GetSnapshotByIdentification(ctx context.Context, identification string) (*models.ClientSnapshot, error)
}

type service struct {
	db   repo.TxRunner
	repo Repository
}

// NewService wires the event processing service.
func NewService(runner repo.TxRunner, repository Repository) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repository == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{db: runner, repo: repository}, nil
}

// Apply validates the event, drops duplicates by event id and upserts the
// snapshot together with the write-once dedup marker in one transaction.
// Redelivery after a mid-transaction failure reapplies cleanly because the
// marker only exists once the snapshot write committed.
func (s *service) Apply(ctx context.Context, event CustomerEvent) (ApplyOutcome, error) {
	eventID, customerID, ok := validateEvent(event)
	if !ok {
		return OutcomeMalformed, nil
	}

	processed, err := s.repo.IsEventProcessed(ctx, eventID)
	if err != nil {
		return "", err
	}
	if processed {
		return OutcomeDuplicate, nil
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		snapshot, err := txRepo.FindSnapshotByID(ctx, customerID)
		if err != nil {
			return err
		}
		if snapshot == nil {
			snapshot = &models.ClientSnapshot{CustomerID: customerID}
		}

		snapshot.Identification = event.Payload.Identification
		snapshot.IdentificationType = event.Payload.IdentificationType
		snapshot.Name = event.Payload.Name
		snapshot.Active = event.Payload.Active
		snapshot.LastEventID = &eventID
		snapshot.LastEventAt = event.OccurredAt

		if err := txRepo.SaveSnapshot(ctx, snapshot); err != nil {
			return err
		}
		return txRepo.MarkEventProcessed(ctx, eventID)
	})
	if err != nil {
		// A concurrent delivery of the same event won the marker insert.
		if db.IsUniqueViolation(err, "processed_events_pkey") {
			return OutcomeDuplicate, nil
		}
		return "", err
	}
	return OutcomeApplied, nil
}

func (s *service) GetSnapshot(ctx context.Context, customerID uuid.UUID) (*models.ClientSnapshot, error) {
	return s.repo.FindSnapshotByID(ctx, customerID)
}

func (s *service) GetSnapshotByIdentification(ctx context.Context, identification string) (*models.ClientSnapshot, error) {
	return s.repo.FindSnapshotByIdentification(ctx, identification)
}

func validateEvent(event CustomerEvent) (eventID uuid.UUID, customerID uuid.UUID, ok bool) {
	eventID, err := uuid.Parse(strings.TrimSpace(event.EventID))
	if err != nil || eventID == uuid.Nil {
		return uuid.Nil, uuid.Nil, false
	}
	if strings.TrimSpace(event.EventType) == "" || event.OccurredAt == nil {
		return uuid.Nil, uuid.Nil, false
	}
	customerID, err = uuid.Parse(strings.TrimSpace(event.Payload.CustomerID))
	if err != nil || customerID == uuid.Nil {
		return uuid.Nil, uuid.Nil, false
	}
	if strings.TrimSpace(event.Payload.Identification) == "" || strings.TrimSpace(event.Payload.Name) == "" {
		return uuid.Nil, uuid.Nil, false
	}
	return eventID, customerID, true
}
