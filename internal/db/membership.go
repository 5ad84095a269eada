package db

import "time"

// Membership is a player's seat in a room. SuperCards has no column default
// here so an explicit zero survives the insert.
type Membership struct {
	ID         uint      `gorm:"primaryKey"`
	RoomID     uint      `gorm:"not null;uniqueIndex:idx_memberships_room_user"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_memberships_room_user"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	SuperCards int       `gorm:"not null;check:chk_memberships_super_cards,super_cards >= 0"`
	JoinedAt   time.Time `gorm:"not null;index"`
}
