package database

import (
	"fmt"

	"github.com/altairhq/usermanagement/internal/model"
	"gorm.io/gorm"
)

// Migrate runs schema auto-migration for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.UserProfile{},
		&model.Role{},
		&model.UserRole{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	return nil
}
