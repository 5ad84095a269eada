package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type eventQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

func (s *Server) handleRoomEvents(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var query eventQuery
	if !bindQuery(c, &query, eventQueryMessages, "invalid limit") {
		return
	}
	events, err := s.coord.RecentEvents(c.Request.Context(), uri.RoomID, query.Limit)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	resp := make([]storedEnvelope, 0, len(events))
	for _, e := range events {
		resp = append(resp, storedEnvelope{
			ID:        e.ID,
			Type:      e.Type,
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}
