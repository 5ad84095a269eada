package server

import (
	"encoding/json"
	"time"
)

const (
	eventPlayerJoined   = "player_joined"
	eventQuestionSet    = "question_set"
	eventRoundClosed    = "round_closed"
	eventAnswerAdded    = "answer_added"
	eventAnswerRevealed = "answer_revealed"
	eventRoomClosed     = "room_closed"
)

// Envelope is the message pushed to every subscriber of a room.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type playerJoinedPayload struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
}

// questionPayload doubles as the current-question response, where an idle
// room reports null round and text.
type questionPayload struct {
	RoundID *uint   `json:"round_id"`
	Text    *string `json:"text"`
	Status  string  `json:"status"`
}

type roundClosedPayload struct{}

type answerAddedPayload struct {
	AnswerID uint   `json:"answer_id"`
	Text     string `json:"text"`
}

type answerRevealedPayload struct {
	AnswerID      uint   `json:"answer_id"`
	AuthorDisplay string `json:"author_display"`
}

type roomClosedPayload struct {
	RoomID uint `json:"room_id"`
}

type storedEnvelope struct {
	ID        uint            `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
