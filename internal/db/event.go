package db

import (
	"time"

	"gorm.io/datatypes"
)

// Event is the audit copy of an envelope broadcast to a room.
type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomID    uint           `gorm:"index;not null"`
	Type      string         `gorm:"size:32;not null"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null;index"`
}
