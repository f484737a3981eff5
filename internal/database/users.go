package database

import (
	"errors"

	"github.com/dlomaxw/shinebebright-sub001/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// UserCredentials looks admin accounts up in the users table
type UserCredentials struct {
	db *gorm.DB
}

func (gdb *GormDB) UserCredentials() *UserCredentials {
	return &UserCredentials{db: gdb.db}
}

// PasswordHash returns the stored bcrypt hash of username
func (u *UserCredentials) PasswordHash(username string) (string, bool) {
	var user models.User
	err := u.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error().Err(err).Str("component", "database").Msg("failed to look up user")
		}
		return "", false
	}
	return user.PasswordHash, true
}

// SetUserPassword creates the user or replaces its password hash
func (gdb *GormDB) SetUserPassword(username, passwordHash string) (*models.User, error) {
	var user models.User
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("username = ?", username).First(&user)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			user = models.User{Username: username, PasswordHash: passwordHash}
			return tx.Create(&user).Error
		} else if result.Error != nil {
			return result.Error
		}
		user.PasswordHash = passwordHash
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
