package game

import (
	"context"

	"who-said-that/internal/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateRoom allocates a fresh code and seats the owner as the first player.
func (c *Coordinator) CreateRoom(ctx context.Context, ownerUserID uint) (Room, error) {
	var room Room
	err := c.tx(ctx, func(tx *gorm.DB) error {
		if _, err := findUser(tx, ownerUserID); err != nil {
			return err
		}
		record, err := c.insertRoom(tx, ownerUserID)
		if err != nil {
			return err
		}
		membership := db.Membership{
			RoomID:     record.ID,
			UserID:     ownerUserID,
			SuperCards: c.cfg.StartingSuperCards,
			JoinedAt:   c.now(),
		}
		if err := tx.Create(&membership).Error; err != nil {
			return internalError("create owner membership", err)
		}
		room = toRoom(record)
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	c.logger.Info("room created", zap.Uint("room_id", room.ID), zap.String("code", room.Code), zap.Uint("owner_id", ownerUserID))
	return room, nil
}

func (c *Coordinator) insertRoom(tx *gorm.DB, ownerUserID uint) (db.Room, error) {
	for attempt := 1; attempt <= c.cfg.RoomCodeAttempts; attempt++ {
		code, err := c.newCode()
		if err != nil {
			return db.Room{}, internalError("generate room code", err)
		}
		var taken int64
		if err := tx.Model(&db.Room{}).Where("code = ?", code).Count(&taken).Error; err != nil {
			return db.Room{}, internalError("check room code", err)
		}
		if taken > 0 {
			c.logger.Debug("room code collision", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}
		record := db.Room{Code: code, OwnerUserID: ownerUserID, Status: RoomActive}
		// Savepoint so a lost race on the code keeps the outer transaction usable.
		err = tx.Transaction(func(inner *gorm.DB) error {
			return inner.Create(&record).Error
		})
		if err == nil {
			return record, nil
		}
		if !db.IsUniqueViolation(err) {
			return db.Room{}, internalError("create room", err)
		}
		c.logger.Debug("room code collision on insert", zap.String("code", code), zap.Int("attempt", attempt))
	}
	c.logger.Warn("room code space exhausted", zap.Int("attempts", c.cfg.RoomCodeAttempts))
	return db.Room{}, newError(KindResourceExhausted, "could not allocate a room code")
}

// JoinRoom seats userID in the room with the given code. Joining twice
// returns the existing membership with Joined set to false.
func (c *Coordinator) JoinRoom(ctx context.Context, code string, userID uint) (JoinResult, error) {
	code = NormalizeRoomCode(code)
	if code == "" {
		return JoinResult{}, newError(KindValidation, "room code is required")
	}

	var result JoinResult
	err := c.tx(ctx, func(tx *gorm.DB) error {
		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}
		var room db.Room
		if err := lock(tx, "SHARE").Where("code = ?", code).First(&room).Error; err != nil {
			if db.IsNotFound(err) {
				return newError(KindNotFound, "room not found")
			}
			return internalError("load room", err)
		}
		if room.Status != RoomActive {
			return newError(KindInvalidState, "room is closed")
		}

		membership := db.Membership{
			RoomID:     room.ID,
			UserID:     userID,
			SuperCards: c.cfg.StartingSuperCards,
			JoinedAt:   c.now(),
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&membership)
		if res.Error != nil {
			return internalError("create membership", res.Error)
		}
		joined := res.RowsAffected == 1
		if !joined {
			membership = db.Membership{}
			if err := tx.Where("room_id = ? AND user_id = ?", room.ID, userID).First(&membership).Error; err != nil {
				return internalError("load membership", err)
			}
		}
		result = JoinResult{
			Room:       toRoom(room),
			Membership: toMembership(membership),
			User:       toUser(user),
			Joined:     joined,
		}
		return nil
	})
	if err != nil {
		return JoinResult{}, err
	}
	if result.Joined {
		c.logger.Info("player joined", zap.Uint("room_id", result.Room.ID), zap.Uint("user_id", userID))
	}
	return result, nil
}

func (c *Coordinator) GetRoom(ctx context.Context, roomID uint) (Room, error) {
	record, err := findRoom(c.db.WithContext(ctx), roomID)
	if err != nil {
		return Room{}, err
	}
	return toRoom(record), nil
}

// GetRoomState returns the room, its players in join order and the most
// recent round.
func (c *Coordinator) GetRoomState(ctx context.Context, roomID uint) (RoomState, error) {
	var state RoomState
	err := c.tx(ctx, func(tx *gorm.DB) error {
		room, err := findRoom(tx, roomID)
		if err != nil {
			return err
		}
		var memberships []db.Membership
		if err := tx.Preload("User").
			Where("room_id = ?", roomID).
			Order("joined_at ASC").Order("id ASC").
			Find(&memberships).Error; err != nil {
			return internalError("load players", err)
		}
		current, err := latestRound(tx, roomID)
		if err != nil {
			return err
		}

		state.Room = toRoom(room)
		state.Players = make([]Player, 0, len(memberships))
		for _, m := range memberships {
			state.Players = append(state.Players, Player{
				MembershipID: m.ID,
				UserID:       m.UserID,
				Name:         m.User.DisplayName,
				SuperCards:   m.SuperCards,
				JoinedAt:     m.JoinedAt,
			})
		}
		state.CurrentRound = current
		return nil
	})
	return state, err
}

// CloseRoom marks the room closed and ends any round still collecting.
// Only the owner may close a room.
func (c *Coordinator) CloseRoom(ctx context.Context, roomID, actorUserID uint) (Room, error) {
	var room Room
	err := c.tx(ctx, func(tx *gorm.DB) error {
		var record db.Room
		if err := lock(tx, "UPDATE").First(&record, roomID).Error; err != nil {
			if db.IsNotFound(err) {
				return newError(KindNotFound, "room not found")
			}
			return internalError("load room", err)
		}
		if record.OwnerUserID != actorUserID {
			return newError(KindForbidden, "only the room owner can close the room")
		}
		if record.Status != RoomActive {
			return newError(KindInvalidState, "room is already closed")
		}
		if err := tx.Model(&record).Update("status", RoomClosed).Error; err != nil {
			return internalError("close room", err)
		}
		if _, err := closeCollecting(tx, roomID); err != nil {
			return err
		}
		record.Status = RoomClosed
		room = toRoom(record)
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	c.logger.Info("room closed", zap.Uint("room_id", roomID), zap.Uint("actor_id", actorUserID))
	return room, nil
}

func findRoom(tx *gorm.DB, roomID uint) (db.Room, error) {
	var record db.Room
	if err := tx.First(&record, roomID).Error; err != nil {
		if db.IsNotFound(err) {
			return db.Room{}, newError(KindNotFound, "room not found")
		}
		return db.Room{}, internalError("load room", err)
	}
	return record, nil
}
