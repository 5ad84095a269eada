package game

import (
	"context"

	"who-said-that/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertUser finds or creates the user for externalID. A non-empty name that
// differs from the stored one replaces it.
func (c *Coordinator) UpsertUser(ctx context.Context, externalID, name string) (User, error) {
	externalID, err := validateExternalID(externalID)
	if err != nil {
		return User{}, err
	}
	name, err = validateDisplayName(name)
	if err != nil {
		return User{}, err
	}

	var user User
	err = c.tx(ctx, func(tx *gorm.DB) error {
		record, err := upsertUserTx(tx, externalID, name)
		if err != nil {
			return err
		}
		user = toUser(record)
		return nil
	})
	return user, err
}

func upsertUserTx(tx *gorm.DB, externalID, name string) (db.User, error) {
	var record db.User
	err := tx.Where("external_id = ?", externalID).First(&record).Error
	if err != nil && !db.IsNotFound(err) {
		return db.User{}, internalError("load user", err)
	}
	if err != nil {
		record = db.User{ExternalID: externalID, DisplayName: defaultDisplayName(externalID, name)}
		res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "external_id"}}, DoNothing: true}).Create(&record)
		if res.Error != nil {
			return db.User{}, internalError("create user", res.Error)
		}
		if res.RowsAffected == 1 {
			return record, nil
		}
		// Another request created the same user first.
		record = db.User{}
		if err := tx.Where("external_id = ?", externalID).First(&record).Error; err != nil {
			return db.User{}, internalError("reload user", err)
		}
	}
	if name != "" && record.DisplayName != name {
		if err := tx.Model(&record).Update("display_name", name).Error; err != nil {
			return db.User{}, internalError("rename user", err)
		}
		record.DisplayName = name
	}
	return record, nil
}

func defaultDisplayName(externalID, name string) string {
	if name != "" {
		return name
	}
	fallback := []rune("User" + externalID)
	if len(fallback) > MaxNameLength {
		fallback = fallback[:MaxNameLength]
	}
	return string(fallback)
}

func (c *Coordinator) GetUser(ctx context.Context, userID uint) (User, error) {
	record, err := findUser(c.db.WithContext(ctx), userID)
	if err != nil {
		return User{}, err
	}
	return toUser(record), nil
}

func findUser(tx *gorm.DB, userID uint) (db.User, error) {
	var record db.User
	if err := tx.First(&record, userID).Error; err != nil {
		if db.IsNotFound(err) {
			return db.User{}, newError(KindNotFound, "user not found")
		}
		return db.User{}, internalError("load user", err)
	}
	return record, nil
}
