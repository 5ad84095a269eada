// Package game holds the session rules for rooms, rounds, answers and
// reveals. Every operation runs in one database transaction and returns
// either a value or a *Error.
package game

import (
	"context"
	"time"

	"who-said-that/internal/config"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Coordinator struct {
	db     *gorm.DB
	cfg    config.Config
	logger *zap.Logger

	newCode func() (string, error)
	now     func() time.Time
}

func New(conn *gorm.DB, cfg config.Config, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RoomCodeAttempts <= 0 {
		cfg.RoomCodeAttempts = config.Default().RoomCodeAttempts
	}
	return &Coordinator{
		db:      conn,
		cfg:     cfg,
		logger:  logger.Named("game"),
		newCode: NewRoomCode,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *Coordinator) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.db.WithContext(ctx).Transaction(fn)
}

// lock adds a row lock on Postgres. SQLite runs with a single connection so
// transactions are already serialized there.
func lock(tx *gorm.DB, strength string) *gorm.DB {
	if tx.Dialector.Name() != config.DriverPostgres {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: strength})
}

// Ping reports whether the database answers.
func (c *Coordinator) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return internalError("database handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return internalError("database ping", err)
	}
	return nil
}
