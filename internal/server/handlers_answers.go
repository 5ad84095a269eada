package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type answerRequest struct {
	RoundID  uint   `json:"round_id" binding:"required"`
	AuthorID uint   `json:"author_id" binding:"required"`
	Text     string `json:"text" binding:"required"`
}

type revealRequest struct {
	RoundID  uint `json:"round_id" binding:"required"`
	AnswerID uint `json:"answer_id" binding:"required"`
	ActorID  uint `json:"actor_id" binding:"required"`
}

type roundQuery struct {
	RoundID uint `form:"round_id" binding:"required,min=1"`
}

type answerResponse struct {
	AnswerID      uint    `json:"answer_id"`
	Text          string  `json:"text"`
	Revealed      bool    `json:"revealed"`
	AuthorDisplay *string `json:"author_display"`
}

func (s *Server) handleSubmitAnswer(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req answerRequest
	if !bindJSON(c, &req, answerMessages, "invalid answer") {
		return
	}
	ctx := c.Request.Context()
	answer, err := s.coord.SubmitAnswer(ctx, req.RoundID, req.AuthorID, req.Text)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	s.warnRoomMismatch(uri.RoomID, answer.RoomID, "answer")
	s.publish(ctx, answer.RoomID, eventAnswerAdded, answerAddedPayload{
		AnswerID: answer.ID,
		Text:     answer.Text,
	})
	c.JSON(http.StatusOK, gin.H{"answer_id": answer.ID})
}

func (s *Server) handleListAnswers(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var query roundQuery
	if !bindQuery(c, &query, roundQueryMessages, "round_id is required") {
		return
	}
	views, err := s.coord.ListAnswers(c.Request.Context(), query.RoundID)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	resp := make([]answerResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, answerResponse{
			AnswerID:      v.ID,
			Text:          v.Text,
			Revealed:      v.Revealed,
			AuthorDisplay: v.AuthorName,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleReveal(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req revealRequest
	if !bindJSON(c, &req, revealMessages, "invalid reveal") {
		return
	}
	ctx := c.Request.Context()
	reveal, err := s.coord.RevealAnswer(ctx, req.RoundID, req.AnswerID, req.ActorID)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	s.warnRoomMismatch(uri.RoomID, reveal.RoomID, "reveal")
	payload := answerRevealedPayload{AnswerID: reveal.AnswerID, AuthorDisplay: reveal.AuthorName}
	s.publish(ctx, reveal.RoomID, eventAnswerRevealed, payload)
	c.JSON(http.StatusOK, gin.H{
		"answer_id":      payload.AnswerID,
		"author_display": payload.AuthorDisplay,
		"super_cards":    reveal.SuperCardsLeft,
	})
}

// The round id decides the room; the path id is informational.
func (s *Server) warnRoomMismatch(pathRoomID, roomID uint, action string) {
	if pathRoomID == roomID {
		return
	}
	s.logger.Warn("round belongs to another room",
		zap.String("action", action),
		zap.Uint("path_room_id", pathRoomID),
		zap.Uint("room_id", roomID),
	)
}
