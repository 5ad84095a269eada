package server

import (
	"net/http"
	"net/url"
	"time"

	"who-said-that/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const qrSize = 320

type roomURI struct {
	RoomID uint `uri:"id" binding:"required,min=1"`
}

type userURI struct {
	UserID uint `uri:"id" binding:"required,min=1"`
}

type identityRequest struct {
	ExternalID string `json:"external_id" binding:"required,notblank,max=64"`
	Name       string `json:"name" binding:"max=64"`
}

type joinRequest struct {
	RoomCode   string `json:"room_code" binding:"required,roomcode"`
	ExternalID string `json:"external_id" binding:"required,notblank,max=64"`
	Name       string `json:"name" binding:"max=64"`
}

type closeRoomRequest struct {
	ActorID uint `json:"actor_id" binding:"required"`
}

type playerResponse struct {
	PlayerID   uint      `json:"player_id"`
	UserID     uint      `json:"user_id"`
	Name       string    `json:"name"`
	SuperCards int       `json:"super_cards"`
	JoinedAt   time.Time `json:"joined_at"`
}

type roundResponse struct {
	RoundID   uint      `json:"round_id"`
	Text      string    `json:"text"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type roomStateResponse struct {
	RoomID       uint             `json:"room_id"`
	RoomCode     string           `json:"room_code"`
	OwnerID      uint             `json:"owner_id"`
	Status       string           `json:"status"`
	Players      []playerResponse `json:"players"`
	CurrentRound *roundResponse   `json:"current_round"`
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.coord.Ping(c.Request.Context()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "streams": len(s.hub.Rooms())})
}

func (s *Server) handleUpsertUser(c *gin.Context) {
	var req identityRequest
	if !bindJSON(c, &req, identityMessages, "invalid user") {
		return
	}
	user, err := s.coord.UpsertUser(c.Request.Context(), req.ExternalID, req.Name)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": user.ID, "name": user.Name})
}

func (s *Server) handleGetUser(c *gin.Context) {
	var uri userURI
	if !bindURI(c, &uri) {
		return
	}
	user, err := s.coord.GetUser(c.Request.Context(), uri.UserID)
	if game.KindOf(err) == game.KindNotFound {
		c.JSON(http.StatusOK, gin.H{"exists": false})
		return
	}
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": true, "user_id": user.ID, "name": user.Name})
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	var req identityRequest
	if !bindJSON(c, &req, identityMessages, "invalid room request") {
		return
	}
	ctx := c.Request.Context()
	owner, err := s.coord.UpsertUser(ctx, req.ExternalID, req.Name)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	room, err := s.coord.CreateRoom(ctx, owner.ID)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"room_id":   room.ID,
		"room_code": room.Code,
		"user_id":   owner.ID,
	})
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	var req joinRequest
	if !bindJSON(c, &req, joinMessages, "invalid join request") {
		return
	}
	ctx := c.Request.Context()
	user, err := s.coord.UpsertUser(ctx, req.ExternalID, req.Name)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	result, err := s.coord.JoinRoom(ctx, req.RoomCode, user.ID)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	if result.Joined {
		s.publish(ctx, result.Room.ID, eventPlayerJoined, playerJoinedPayload{
			UserID: result.User.ID,
			Name:   result.User.Name,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"room_id":     result.Room.ID,
		"player_id":   result.Membership.ID,
		"user_id":     result.User.ID,
		"super_cards": result.Membership.SuperCards,
	})
}

func (s *Server) handleRoomState(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	state, err := s.coord.GetRoomState(c.Request.Context(), uri.RoomID)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	resp := roomStateResponse{
		RoomID:   state.Room.ID,
		RoomCode: state.Room.Code,
		OwnerID:  state.Room.OwnerUserID,
		Status:   state.Room.Status,
		Players:  make([]playerResponse, 0, len(state.Players)),
	}
	for _, p := range state.Players {
		resp.Players = append(resp.Players, playerResponse{
			PlayerID:   p.MembershipID,
			UserID:     p.UserID,
			Name:       p.Name,
			SuperCards: p.SuperCards,
			JoinedAt:   p.JoinedAt,
		})
	}
	if round := state.CurrentRound; round != nil {
		resp.CurrentRound = &roundResponse{
			RoundID:   round.ID,
			Text:      round.Question,
			Status:    round.Status,
			CreatedAt: round.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCloseRoom(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req closeRoomRequest
	if !bindJSON(c, &req, closeRoomMessages, "invalid close request") {
		return
	}
	ctx := c.Request.Context()
	room, err := s.coord.CloseRoom(ctx, uri.RoomID, req.ActorID)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	s.publish(ctx, room.ID, eventRoomClosed, roomClosedPayload{RoomID: room.ID})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleRoomQR(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	room, err := s.coord.GetRoom(c.Request.Context(), uri.RoomID)
	if err != nil {
		s.writeGameError(c, err)
		return
	}
	png, err := qrcode.Encode(s.joinURL(room.Code), qrcode.Medium, qrSize)
	if err != nil {
		s.logger.Error("qr generation failed", zap.Uint("room_id", room.ID), zap.Error(err))
		writeError(c, http.StatusInternalServerError, game.KindInternal, "qr generation failed")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) joinURL(code string) string {
	return s.cfg.PublicURL + "/?room=" + url.QueryEscape(code)
}
