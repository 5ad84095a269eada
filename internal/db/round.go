package db

import "time"

const (
	RoundStatusCollecting = "collecting"
	RoundStatusDiscussion = "discussion"
)

type Round struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"not null;index;uniqueIndex:idx_rounds_room_collecting,where:status = 'collecting'"`
	Question  string    `gorm:"size:200;not null"`
	Status    string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Answers   []Answer
}
