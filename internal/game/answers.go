package game

import (
	"context"

	"who-said-that/internal/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmitAnswer stores one anonymous answer per user per round.
func (c *Coordinator) SubmitAnswer(ctx context.Context, roundID, userID uint, text string) (Answer, error) {
	text, err := validateAnswer(text)
	if err != nil {
		return Answer{}, err
	}

	var answer Answer
	err = c.tx(ctx, func(tx *gorm.DB) error {
		var round db.Round
		if err := lock(tx, "SHARE").First(&round, roundID).Error; err != nil {
			if db.IsNotFound(err) {
				return newError(KindNotFound, "round not found")
			}
			return internalError("load round", err)
		}
		if round.Status != RoundCollecting {
			return newError(KindInvalidState, "answers are closed for this round")
		}
		if _, err := findUser(tx, userID); err != nil {
			return err
		}
		record := db.Answer{RoundID: roundID, AuthorUserID: userID, Text: text}
		if err := tx.Create(&record).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return newError(KindConflict, "already answered")
			}
			return internalError("create answer", err)
		}
		answer = toAnswer(record, round.RoomID)
		return nil
	})
	if err != nil {
		return Answer{}, err
	}
	c.logger.Info("answer submitted", zap.Uint("room_id", answer.RoomID), zap.Uint("round_id", roundID), zap.Uint("answer_id", answer.ID))
	return answer, nil
}

// ListAnswers returns the round's answers in submission order. Author names
// are filled in for revealed answers only.
func (c *Coordinator) ListAnswers(ctx context.Context, roundID uint) ([]AnswerView, error) {
	var views []AnswerView
	err := c.tx(ctx, func(tx *gorm.DB) error {
		if _, err := findRound(tx, roundID); err != nil {
			return err
		}
		var records []db.Answer
		if err := tx.Where("round_id = ?", roundID).Order("id ASC").Find(&records).Error; err != nil {
			return internalError("load answers", err)
		}

		var authorIDs []uint
		for _, a := range records {
			if a.Revealed {
				authorIDs = append(authorIDs, a.AuthorUserID)
			}
		}
		names := make(map[uint]string, len(authorIDs))
		if len(authorIDs) > 0 {
			var authors []db.User
			if err := tx.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
				return internalError("load authors", err)
			}
			for _, u := range authors {
				names[u.ID] = u.DisplayName
			}
		}

		views = make([]AnswerView, 0, len(records))
		for _, a := range records {
			view := AnswerView{ID: a.ID, Text: a.Text, Revealed: a.Revealed}
			if a.Revealed {
				name := names[a.AuthorUserID]
				view.AuthorName = &name
			}
			views = append(views, view)
		}
		return nil
	})
	return views, err
}
