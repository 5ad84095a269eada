package game

import (
	"context"
	"encoding/json"

	"who-said-that/internal/db"

	"gorm.io/datatypes"
)

const (
	DefaultEventLimit = 50
	MaxEventLimit     = 200
)

// RecordEvent appends an entry to the room's audit log.
func (c *Coordinator) RecordEvent(ctx context.Context, roomID uint, eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return internalError("encode event payload", err)
	}
	record := db.Event{RoomID: roomID, Type: eventType, Payload: datatypes.JSON(raw)}
	if err := c.db.WithContext(ctx).Create(&record).Error; err != nil {
		return internalError("record event", err)
	}
	return nil
}

// RecentEvents returns up to limit events for the room, oldest first.
func (c *Coordinator) RecentEvents(ctx context.Context, roomID uint, limit int) ([]StoredEvent, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	if limit > MaxEventLimit {
		limit = MaxEventLimit
	}
	conn := c.db.WithContext(ctx)
	if _, err := findRoom(conn, roomID); err != nil {
		return nil, err
	}
	var records []db.Event
	if err := conn.Where("room_id = ?", roomID).Order("id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, internalError("load events", err)
	}
	events := make([]StoredEvent, len(records))
	for i, r := range records {
		events[len(records)-1-i] = StoredEvent{
			ID:        r.ID,
			RoomID:    r.RoomID,
			Type:      r.Type,
			Payload:   json.RawMessage(r.Payload),
			CreatedAt: r.CreatedAt,
		}
	}
	return events, nil
}
