package server

import (
	"context"

	"go.uber.org/zap"
)

// publish appends the event to the room's audit log and pushes it to live
// subscribers. Neither step can fail the request that triggered it.
func (s *Server) publish(ctx context.Context, roomID uint, eventType string, payload any) {
	if err := s.coord.RecordEvent(context.WithoutCancel(ctx), roomID, eventType, payload); err != nil {
		s.logger.Warn("record event failed",
			zap.Uint("room_id", roomID),
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
	delivered := s.hub.Publish(roomID, Envelope{Type: eventType, Payload: payload})
	s.logger.Debug("event published",
		zap.Uint("room_id", roomID),
		zap.String("type", eventType),
		zap.Int("delivered", delivered),
	)
}
