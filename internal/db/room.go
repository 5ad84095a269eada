package db

import "time"

const (
	RoomStatusActive = "active"
	RoomStatusClosed = "closed"
)

type Room struct {
	ID          uint      `gorm:"primaryKey"`
	Code        string    `gorm:"size:6;uniqueIndex;not null"`
	OwnerUserID uint      `gorm:"index;not null"`
	Owner       User      `gorm:"foreignKey:OwnerUserID;constraint:OnDelete:RESTRICT"`
	Status      string    `gorm:"size:16;not null;default:'active'"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Memberships []Membership
	Rounds      []Round
	Events      []Event
}
