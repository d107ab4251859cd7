package customers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bancore/backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCustomersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	snapshotsTable := `
CREATE TABLE IF NOT EXISTS client_snapshots (
  customer_id TEXT PRIMARY KEY,
  identification TEXT NOT NULL UNIQUE,
  identification_type TEXT,
  name TEXT NOT NULL,
  active INTEGER NOT NULL,
  last_event_id TEXT,
  last_event_at DATETIME,
  updated_at DATETIME
);`
	processedTable := `
CREATE TABLE IF NOT EXISTS processed_events (
  event_id TEXT PRIMARY KEY,
  processed_at DATETIME NOT NULL
);`
	require.NoError(t, db.Exec(snapshotsTable).Error)
	require.NoError(t, db.Exec(processedTable).Error)
	return db
}

type txRunner struct {
	db *gorm.DB
}

func (r txRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := setupCustomersTestDB(t)
	svc, err := NewService(txRunner{db: db}, NewRepository(db))
	require.NoError(t, err)
	return svc, db
}

func validEvent() CustomerEvent {
	occurred := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return CustomerEvent{
		EventID:    uuid.NewString(),
		EventType:  "CUSTOMER_CREATED",
		OccurredAt: &occurred,
		Payload: CustomerEventPayload{
			CustomerID:     uuid.NewString(),
			Identification: "CC-1234567890",
			Name:           "Jose Lema",
			Active:         true,
		},
	}
}

func TestApplyCreatesSnapshotAndMarker(t *testing.T) {
	svc, db := newTestService(t)
	event := validEvent()

	outcome, err := svc.Apply(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	var snapshot models.ClientSnapshot
	require.NoError(t, db.Where("customer_id = ?", event.Payload.CustomerID).First(&snapshot).Error)
	assert.Equal(t, event.Payload.Identification, snapshot.Identification)
	assert.Equal(t, event.Payload.Name, snapshot.Name)
	assert.True(t, snapshot.Active)
	require.NotNil(t, snapshot.LastEventID)
	assert.Equal(t, event.EventID, snapshot.LastEventID.String())

	var markers int64
	require.NoError(t, db.Model(&models.ProcessedEvent{}).Count(&markers).Error)
	assert.EqualValues(t, 1, markers)
}

func TestApplySameEventTwiceIsNoOp(t *testing.T) {
	svc, db := newTestService(t)
	event := validEvent()

	outcome, err := svc.Apply(context.Background(), event)
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, outcome)

	var before models.ClientSnapshot
	require.NoError(t, db.Where("customer_id = ?", event.Payload.CustomerID).First(&before).Error)

	// Redelivery carries the same event id; a changed payload must not win.
	event.Payload.Name = "Someone Else"
	outcome, err = svc.Apply(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)

	var after models.ClientSnapshot
	require.NoError(t, db.Where("customer_id = ?", event.Payload.CustomerID).First(&after).Error)
	assert.Equal(t, before.Name, after.Name)
	require.NotNil(t, after.LastEventID)
	assert.Equal(t, event.EventID, after.LastEventID.String())

	var snapshots, markers int64
	require.NoError(t, db.Model(&models.ClientSnapshot{}).Count(&snapshots).Error)
	require.NoError(t, db.Model(&models.ProcessedEvent{}).Count(&markers).Error)
	assert.EqualValues(t, 1, snapshots)
	assert.EqualValues(t, 1, markers)
}

func TestApplyNewEventUpdatesExistingSnapshot(t *testing.T) {
	svc, db := newTestService(t)
	first := validEvent()

	outcome, err := svc.Apply(context.Background(), first)
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, outcome)

	second := validEvent()
	second.EventType = "CUSTOMER_UPDATED"
	second.Payload.CustomerID = first.Payload.CustomerID
	second.Payload.Identification = first.Payload.Identification
	second.Payload.Name = "Jose A. Lema"
	second.Payload.Active = false

	outcome, err = svc.Apply(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	var snapshot models.ClientSnapshot
	require.NoError(t, db.Where("customer_id = ?", first.Payload.CustomerID).First(&snapshot).Error)
	assert.Equal(t, "Jose A. Lema", snapshot.Name)
	assert.False(t, snapshot.Active)
	require.NotNil(t, snapshot.LastEventID)
	assert.Equal(t, second.EventID, snapshot.LastEventID.String())

	var snapshots, markers int64
	require.NoError(t, db.Model(&models.ClientSnapshot{}).Count(&snapshots).Error)
	require.NoError(t, db.Model(&models.ProcessedEvent{}).Count(&markers).Error)
	assert.EqualValues(t, 1, snapshots)
	assert.EqualValues(t, 2, markers)
}

func TestApplyMalformedEventLeavesNoTrace(t *testing.T) {
	svc, db := newTestService(t)

	cases := map[string]func(e *CustomerEvent){
		"missing event id":    func(e *CustomerEvent) { e.EventID = "" },
		"garbage event id":    func(e *CustomerEvent) { e.EventID = "not-a-uuid" },
		"missing event type":  func(e *CustomerEvent) { e.EventType = "  " },
		"missing occurred at": func(e *CustomerEvent) { e.OccurredAt = nil },
		"bad customer id":     func(e *CustomerEvent) { e.Payload.CustomerID = "42" },
		"blank identification": func(e *CustomerEvent) {
			e.Payload.Identification = ""
		},
		"blank name": func(e *CustomerEvent) { e.Payload.Name = "   " },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			event := validEvent()
			mutate(&event)

			outcome, err := svc.Apply(context.Background(), event)
			require.NoError(t, err)
			assert.Equal(t, OutcomeMalformed, outcome)
		})
	}

	var snapshots, markers int64
	require.NoError(t, db.Model(&models.ClientSnapshot{}).Count(&snapshots).Error)
	require.NoError(t, db.Model(&models.ProcessedEvent{}).Count(&markers).Error)
	assert.EqualValues(t, 0, snapshots)
	assert.EqualValues(t, 0, markers)
}

func TestApplyIdentificationCollisionIsAnError(t *testing.T) {
	svc, _ := newTestService(t)

	first := validEvent()
	outcome, err := svc.Apply(context.Background(), first)
	require.NoError(t, err)
	require.Equal(t, OutcomeApplied, outcome)

	// a different customer claiming the same identification violates the
	// snapshot unique index; that is a real failure, not a duplicate event
	second := validEvent()
	second.Payload.Identification = first.Payload.Identification

	outcome, err = svc.Apply(context.Background(), second)
	require.Error(t, err)
	assert.NotEqual(t, OutcomeDuplicate, outcome)
}

// racingRepo hides an existing dedup marker from the fast check so the insert
// inside the transaction collides, the way two concurrent deliveries would.
type racingRepo struct {
	Repository
}

func (r racingRepo) IsEventProcessed(ctx context.Context, eventID uuid.UUID) (bool, error) {
	return false, nil
}

func (r racingRepo) WithTx(tx *gorm.DB) Repository {
	return racingRepo{Repository: r.Repository.WithTx(tx)}
}

func TestApplyLostMarkerRaceIsDuplicate(t *testing.T) {
	db := setupCustomersTestDB(t)
	svc, err := NewService(txRunner{db: db}, racingRepo{Repository: NewRepository(db)})
	require.NoError(t, err)

	event := validEvent()
	eventID := uuid.MustParse(event.EventID)
	require.NoError(t, db.Create(&models.ProcessedEvent{EventID: eventID}).Error)

	outcome, err := svc.Apply(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
}

func TestGetSnapshotByIdentification(t *testing.T) {
	svc, _ := newTestService(t)
	event := validEvent()

	_, err := svc.Apply(context.Background(), event)
	require.NoError(t, err)

	snapshot, err := svc.GetSnapshotByIdentification(context.Background(), event.Payload.Identification)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, event.Payload.CustomerID, snapshot.CustomerID.String())

	missing, err := svc.GetSnapshotByIdentification(context.Background(), "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
