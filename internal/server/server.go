package server

import (
	"net/http"

	"who-said-that/internal/config"
	"who-said-that/internal/game"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	coord  *game.Coordinator
	hub    *Hub
	cfg    config.Config
	logger *zap.Logger
}

func New(coord *game.Coordinator, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	registerValidators()
	return &Server{
		coord:  coord,
		hub:    NewHub(cfg.WSWriteTimeout, logger),
		cfg:    cfg,
		logger: logger.Named("server"),
	}
}

// Hub exposes the room broadcast hub so the process can close streams on
// shutdown.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(requestID(), accessLog(s.logger), recoverPanics(s.logger))

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	api.POST("/users", s.handleUpsertUser)
	api.GET("/users/:id", s.handleGetUser)

	api.POST("/rooms", s.handleCreateRoom)
	api.POST("/rooms/join", s.handleJoinRoom)
	api.GET("/rooms/:id", s.handleRoomState)
	api.POST("/rooms/:id/close", s.handleCloseRoom)
	api.GET("/rooms/:id/qr", s.handleRoomQR)

	api.POST("/rooms/:id/question", s.handleSetQuestion)
	api.GET("/rooms/:id/question", s.handleCurrentQuestion)
	api.POST("/rooms/:id/round/close", s.handleCloseRound)

	api.POST("/rooms/:id/answers", s.handleSubmitAnswer)
	api.GET("/rooms/:id/answers", s.handleListAnswers)
	api.POST("/rooms/:id/reveal", s.handleReveal)

	api.GET("/rooms/:id/events", s.handleRoomEvents)

	router.GET("/ws/rooms/:id", s.handleWebsocket)
	return router
}
