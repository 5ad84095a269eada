package game

import (
	"context"

	"who-said-that/internal/db"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RevealAnswer spends one of the actor's super-cards to unmask an answer's
// author. The card is only spent if the answer flips to revealed; both
// writes are guarded so concurrent reveals cannot overdraw or double-reveal.
func (c *Coordinator) RevealAnswer(ctx context.Context, roundID, answerID, actorUserID uint) (Reveal, error) {
	var reveal Reveal
	err := c.tx(ctx, func(tx *gorm.DB) error {
		var answer db.Answer
		if err := lock(tx, "UPDATE").
			Where("id = ? AND round_id = ?", answerID, roundID).
			First(&answer).Error; err != nil {
			if db.IsNotFound(err) {
				return newError(KindNotFound, "answer not found")
			}
			return internalError("load answer", err)
		}
		if answer.Revealed {
			return newError(KindConflict, "answer already revealed")
		}
		round, err := findRound(tx, roundID)
		if err != nil {
			return err
		}
		if answer.AuthorUserID == actorUserID {
			return newError(KindForbidden, "cannot reveal your own answer")
		}

		var membership db.Membership
		if err := tx.Where("room_id = ? AND user_id = ?", round.RoomID, actorUserID).First(&membership).Error; err != nil {
			if db.IsNotFound(err) {
				return newError(KindForbidden, "not a player in this room")
			}
			return internalError("load membership", err)
		}
		if membership.SuperCards <= 0 {
			return newError(KindForbidden, "no super-cards left")
		}

		spent := tx.Model(&db.Membership{}).
			Where("id = ? AND super_cards > 0", membership.ID).
			Update("super_cards", gorm.Expr("super_cards - 1"))
		if spent.Error != nil {
			return internalError("spend super-card", spent.Error)
		}
		if spent.RowsAffected == 0 {
			return newError(KindForbidden, "no super-cards left")
		}

		flipped := tx.Model(&db.Answer{}).
			Where("id = ? AND revealed = ?", answer.ID, false).
			Updates(map[string]any{
				"revealed":            true,
				"revealed_by_user_id": actorUserID,
				"revealed_at":         c.now(),
			})
		if flipped.Error != nil {
			return internalError("reveal answer", flipped.Error)
		}
		if flipped.RowsAffected == 0 {
			return newError(KindConflict, "answer already revealed")
		}

		author, err := findUser(tx, answer.AuthorUserID)
		if err != nil {
			return internalError("load author", err)
		}
		reveal = Reveal{
			AnswerID:       answer.ID,
			RoundID:        round.ID,
			RoomID:         round.RoomID,
			ActorUserID:    actorUserID,
			AuthorName:     author.DisplayName,
			SuperCardsLeft: membership.SuperCards - 1,
		}
		return nil
	})
	if err != nil {
		return Reveal{}, err
	}
	c.logger.Info("answer revealed",
		zap.Uint("room_id", reveal.RoomID),
		zap.Uint("answer_id", reveal.AnswerID),
		zap.Uint("actor_id", actorUserID),
		zap.Int("cards_left", reveal.SuperCardsLeft),
	)
	return reveal, nil
}
