package game

import (
	"context"

	"who-said-that/internal/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetQuestion opens a new collecting round. The previous collecting round,
// if any, moves to discussion in the same transaction.
func (c *Coordinator) SetQuestion(ctx context.Context, roomID uint, text string) (Round, error) {
	text, err := validateQuestion(text)
	if err != nil {
		return Round{}, err
	}

	var round Round
	err = c.tx(ctx, func(tx *gorm.DB) error {
		var room db.Room
		if err := lock(tx, "UPDATE").First(&room, roomID).Error; err != nil {
			if db.IsNotFound(err) {
				return newError(KindNotFound, "room not found")
			}
			return internalError("load room", err)
		}
		if room.Status != RoomActive {
			return newError(KindInvalidState, "room is closed")
		}
		if _, err := closeCollecting(tx, roomID); err != nil {
			return err
		}
		record := db.Round{RoomID: roomID, Question: text, Status: RoundCollecting}
		if err := tx.Create(&record).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return newError(KindConflict, "another question was set at the same time")
			}
			return internalError("create round", err)
		}
		round = toRound(record)
		return nil
	})
	if err != nil {
		return Round{}, err
	}
	c.logger.Info("question set", zap.Uint("room_id", roomID), zap.Uint("round_id", round.ID))
	return round, nil
}

// GetCurrentQuestion returns the most recent round, or nil before the first
// question.
func (c *Coordinator) GetCurrentQuestion(ctx context.Context, roomID uint) (*Round, error) {
	conn := c.db.WithContext(ctx)
	if _, err := findRoom(conn, roomID); err != nil {
		return nil, err
	}
	return latestRound(conn, roomID)
}

// CloseRound stops answer collection. It reports false when no round was
// collecting.
func (c *Coordinator) CloseRound(ctx context.Context, roomID uint) (bool, error) {
	var closed bool
	err := c.tx(ctx, func(tx *gorm.DB) error {
		if _, err := findRoom(tx, roomID); err != nil {
			return err
		}
		n, err := closeCollecting(tx, roomID)
		if err != nil {
			return err
		}
		closed = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	if closed {
		c.logger.Info("round closed", zap.Uint("room_id", roomID))
	}
	return closed, nil
}

func closeCollecting(tx *gorm.DB, roomID uint) (int64, error) {
	res := tx.Model(&db.Round{}).
		Where("room_id = ? AND status = ?", roomID, RoundCollecting).
		Update("status", RoundDiscussion)
	if res.Error != nil {
		return 0, internalError("close round", res.Error)
	}
	return res.RowsAffected, nil
}

func latestRound(tx *gorm.DB, roomID uint) (*Round, error) {
	var rounds []db.Round
	if err := tx.Where("room_id = ?", roomID).Order("id DESC").Limit(1).Find(&rounds).Error; err != nil {
		return nil, internalError("load round", err)
	}
	if len(rounds) == 0 {
		return nil, nil
	}
	round := toRound(rounds[0])
	return &round, nil
}

func findRound(tx *gorm.DB, roundID uint) (db.Round, error) {
	var record db.Round
	if err := tx.First(&record, roundID).Error; err != nil {
		if db.IsNotFound(err) {
			return db.Round{}, newError(KindNotFound, "round not found")
		}
		return db.Round{}, internalError("load round", err)
	}
	return record, nil
}
