package db

import "time"

type Answer struct {
	ID               uint       `gorm:"primaryKey"`
	RoundID          uint       `gorm:"not null;index;uniqueIndex:idx_answers_round_author"`
	AuthorUserID     uint       `gorm:"not null;uniqueIndex:idx_answers_round_author"`
	Author           User       `gorm:"foreignKey:AuthorUserID;constraint:OnDelete:RESTRICT"`
	Text             string     `gorm:"size:300;not null"`
	Revealed         bool       `gorm:"not null;default:false"`
	RevealedByUserID *uint      `gorm:"index"`
	RevealedBy       *User      `gorm:"foreignKey:RevealedByUserID;constraint:OnDelete:RESTRICT"`
	RevealedAt       *time.Time
	CreatedAt        time.Time `gorm:"not null"`
}
