package server

import (
	"net/http"

	"who-said-that/internal/game"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func statusForKind(kind game.Kind) int {
	switch kind {
	case game.KindValidation:
		return http.StatusBadRequest
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindInvalidState, game.KindConflict:
		return http.StatusConflict
	case game.KindForbidden:
		return http.StatusForbidden
	case game.KindResourceExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, kind game.Kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
		"kind":  string(kind),
	})
}

func (s *Server) writeGameError(c *gin.Context, err error) {
	kind := game.KindOf(err)
	if kind == game.KindInternal {
		s.logger.Error("request failed",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
	writeError(c, statusForKind(kind), kind, game.PublicMessage(err))
}
