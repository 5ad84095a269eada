package game

import (
	"encoding/json"
	"time"

	"who-said-that/internal/db"
)

const (
	RoomActive = db.RoomStatusActive
	RoomClosed = db.RoomStatusClosed

	RoundCollecting = db.RoundStatusCollecting
	RoundDiscussion = db.RoundStatusDiscussion
)

type User struct {
	ID         uint
	ExternalID string
	Name       string
}

type Room struct {
	ID          uint
	Code        string
	OwnerUserID uint
	Status      string
	CreatedAt   time.Time
}

type Membership struct {
	ID         uint
	RoomID     uint
	UserID     uint
	SuperCards int
	JoinedAt   time.Time
}

type Player struct {
	MembershipID uint
	UserID       uint
	Name         string
	SuperCards   int
	JoinedAt     time.Time
}

type Round struct {
	ID        uint
	RoomID    uint
	Question  string
	Status    string
	CreatedAt time.Time
}

type Answer struct {
	ID           uint
	RoundID      uint
	RoomID       uint
	AuthorUserID uint
	Text         string
	Revealed     bool
	CreatedAt    time.Time
}

// AnswerView is the public shape of an answer. AuthorName is nil until the
// answer has been revealed.
type AnswerView struct {
	ID         uint
	Text       string
	Revealed   bool
	AuthorName *string
}

type RoomState struct {
	Room         Room
	Players      []Player
	CurrentRound *Round
}

type JoinResult struct {
	Room       Room
	Membership Membership
	User       User
	// Joined is false when the membership already existed.
	Joined bool
}

type Reveal struct {
	AnswerID       uint
	RoundID        uint
	RoomID         uint
	ActorUserID    uint
	AuthorName     string
	SuperCardsLeft int
}

type StoredEvent struct {
	ID        uint
	RoomID    uint
	Type      string
	Payload   json.RawMessage
	CreatedAt time.Time
}

func toUser(record db.User) User {
	return User{ID: record.ID, ExternalID: record.ExternalID, Name: record.DisplayName}
}

func toRoom(record db.Room) Room {
	return Room{
		ID:          record.ID,
		Code:        record.Code,
		OwnerUserID: record.OwnerUserID,
		Status:      record.Status,
		CreatedAt:   record.CreatedAt,
	}
}

func toMembership(record db.Membership) Membership {
	return Membership{
		ID:         record.ID,
		RoomID:     record.RoomID,
		UserID:     record.UserID,
		SuperCards: record.SuperCards,
		JoinedAt:   record.JoinedAt,
	}
}

func toRound(record db.Round) Round {
	return Round{
		ID:        record.ID,
		RoomID:    record.RoomID,
		Question:  record.Question,
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
	}
}

func toAnswer(record db.Answer, roomID uint) Answer {
	return Answer{
		ID:           record.ID,
		RoundID:      record.RoundID,
		RoomID:       roomID,
		AuthorUserID: record.AuthorUserID,
		Text:         record.Text,
		Revealed:     record.Revealed,
		CreatedAt:    record.CreatedAt,
	}
}
