package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebsocket(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	if _, err := s.coord.GetRoom(c.Request.Context(), uri.RoomID); err != nil {
		s.writeGameError(c, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Debug("ws upgrade failed", zap.Uint("room_id", uri.RoomID), zap.Error(err))
		return
	}
	sub := s.hub.Subscribe(uri.RoomID, conn)
	s.logger.Info("ws connected", zap.Uint("room_id", uri.RoomID), zap.String("subscriber", sub.ID), zap.String("remote", c.Request.RemoteAddr))
	go s.readWS(uri.RoomID, sub, conn)
}

// readWS drains client frames so control messages are processed. Any read
// error means the client is gone.
func (s *Server) readWS(roomID uint, sub *Subscriber, conn *websocket.Conn) {
	defer s.hub.Unsubscribe(roomID, sub)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.logger.Info("ws disconnected", zap.Uint("room_id", roomID), zap.String("subscriber", sub.ID), zap.Error(err))
			return
		}
	}
}
