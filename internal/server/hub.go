package server

import (
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Subscriber is one live stream attached to a room. Writes are serialized
// per subscriber since a websocket allows a single concurrent writer.
type Subscriber struct {
	ID string

	conn      Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (sub *Subscriber) write(data []byte, timeout time.Duration) error {
	sub.writeMu.Lock()
	defer sub.writeMu.Unlock()
	if timeout > 0 {
		if err := sub.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	return sub.conn.WriteMessage(websocket.TextMessage, data)
}

func (sub *Subscriber) close() {
	sub.closeOnce.Do(func() {
		_ = sub.conn.Close()
	})
}

type Hub struct {
	mu           sync.Mutex
	rooms        map[uint]map[*Subscriber]struct{}
	writeTimeout time.Duration
	logger       *zap.Logger
}

func NewHub(writeTimeout time.Duration, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:        make(map[uint]map[*Subscriber]struct{}),
		writeTimeout: writeTimeout,
		logger:       logger.Named("hub"),
	}
}

func (h *Hub) Subscribe(roomID uint, conn Conn) *Subscriber {
	sub := &Subscriber{ID: uuid.NewString(), conn: conn}
	h.mu.Lock()
	group := h.rooms[roomID]
	if group == nil {
		group = make(map[*Subscriber]struct{})
		h.rooms[roomID] = group
	}
	group[sub] = struct{}{}
	size := len(group)
	h.mu.Unlock()

	h.logger.Info("subscriber added", zap.Uint("room_id", roomID), zap.String("subscriber", sub.ID), zap.Int("subscribers", size))
	return sub
}

// Unsubscribe removes and closes the subscriber. Calling it again is a no-op.
func (h *Hub) Unsubscribe(roomID uint, sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	group := h.rooms[roomID]
	_, found := group[sub]
	if found {
		delete(group, sub)
		if len(group) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()

	sub.close()
	if found {
		h.logger.Info("subscriber removed", zap.Uint("room_id", roomID), zap.String("subscriber", sub.ID))
	}
}

// Publish sends env to every subscriber of the room and returns how many
// writes succeeded. Subscribers that fail a write are dropped afterwards.
func (h *Hub) Publish(roomID uint, env Envelope) int {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("encode envelope", zap.String("type", env.Type), zap.Error(err))
		return 0
	}

	h.mu.Lock()
	group := h.rooms[roomID]
	subs := make([]*Subscriber, 0, len(group))
	for sub := range group {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	delivered := 0
	var failed []*Subscriber
	for _, sub := range subs {
		if err := sub.write(data, h.writeTimeout); err != nil {
			h.logger.Warn("broadcast write failed",
				zap.Uint("room_id", roomID),
				zap.String("subscriber", sub.ID),
				zap.String("type", env.Type),
				zap.Error(err),
			)
			failed = append(failed, sub)
			continue
		}
		delivered++
	}
	for _, sub := range failed {
		h.Unsubscribe(roomID, sub)
	}
	return delivered
}

func (h *Hub) Count(roomID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[roomID])
}

// Rooms lists rooms with at least one subscriber, in ascending order.
func (h *Hub) Rooms() []uint {
	h.mu.Lock()
	rooms := make([]uint, 0, len(h.rooms))
	for roomID := range h.rooms {
		rooms = append(rooms, roomID)
	}
	h.mu.Unlock()
	slices.Sort(rooms)
	return rooms
}

// Close drops every subscriber. Used on shutdown, when hijacked websocket
// connections are not closed by the HTTP server.
func (h *Hub) Close() {
	h.mu.Lock()
	all := h.rooms
	h.rooms = make(map[uint]map[*Subscriber]struct{})
	h.mu.Unlock()

	for _, group := range all {
		for sub := range group {
			sub.close()
		}
	}
}
