package models

import (
	"time"

	"github.com/google/uuid"
)

// ClientSnapshot is the local, eventually consistent copy of a customer
// record owned by the external customer service. It always reflects the most
// recently applied event in arrival order.
type ClientSnapshot struct {
	CustomerID         uuid.UUID  `gorm:"column:customer_id;type:uuid;primaryKey"`
	Identification     string     `gorm:"column:identification;not null;unique"`
	IdentificationType *string    `gorm:"column:identification_type"`
	Name               string     `gorm:"column:name;not null"`
	Active             bool       `gorm:"column:active;not null"`
	LastEventID        *uuid.UUID `gorm:"column:last_event_id;type:uuid"`
	LastEventAt        *time.Time `gorm:"column:last_event_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default pluralization.
func (ClientSnapshot) TableName() string {
	return "client_snapshots"
}
