package indexer

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventRow stores one committed event.
type EventRow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Op         string    `gorm:"index"`
	Caller     string    `gorm:"index"`
	Height     uint64    `gorm:"index"`
	Time       int64
	Sequence   int
	Type       string `gorm:"index"`
	Attributes string
	Addresses  []EventAddress `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time      `gorm:"index"`
}

// EventAddress links an event to every address appearing in its attributes so
// history can be filtered per participant, pool or token.
type EventAddress struct {
	ID      uint      `gorm:"primaryKey"`
	EventID uuid.UUID `gorm:"type:uuid;index"`
	Address string    `gorm:"index"`
}

// BeforeCreate assigns a UUID primary key.
func (e *EventRow) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
