package server

import (
	"net/http"

	"who-said-that/internal/game"

	"github.com/gin-gonic/gin"
)

type questionRequest struct {
	Text string `json:"text" binding:"required"`
}

func roundPayload(round game.Round) questionPayload {
	id, text := round.ID, round.Question
	return questionPayload{RoundID: &id, Text: &text, Status: round.Status}
}

func (s *Server) handleSetQuestion(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req questionRequest
	if !bindJSON(c, &req, questionMessages, "invalid question") {
		return
	}
	ctx := c.Request.Context()
	round, err := s.coord.SetQuestion(ctx, uri.RoomID, req.Text)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	payload := roundPayload(round)
	s.publish(ctx, round.RoomID, eventQuestionSet, payload)
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleCurrentQuestion(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	round, err := s.coord.GetCurrentQuestion(c.Request.Context(), uri.RoomID)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	if round == nil {
		c.JSON(http.StatusOK, questionPayload{Status: "idle"})
		return
	}
	c.JSON(http.StatusOK, roundPayload(*round))
}

func (s *Server) handleCloseRound(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	ctx := c.Request.Context()
	closed, err := s.coord.CloseRound(ctx, uri.RoomID)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	s.publish(ctx, uri.RoomID, eventRoundClosed, roundClosedPayload{})
	c.JSON(http.StatusOK, gin.H{"ok": true, "closed": closed})
}
