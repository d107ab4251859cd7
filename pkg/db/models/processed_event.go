package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessedEvent is a write-once dedup marker. It is inserted in the same
// transaction as the snapshot update it guards and never touched again.
type ProcessedEvent struct {
	EventID     uuid.UUID `gorm:"column:event_id;type:uuid;primaryKey"`
	ProcessedAt time.Time `gorm:"column:processed_at;not null;autoCreateTime"`
}

// TableName overrides the default pluralization.
func (ProcessedEvent) TableName() string {
	return "processed_events"
}
