package database

import (
	"errors"
	"strings"

	"github.com/altairhq/usermanagement/internal/constants"
	"github.com/altairhq/usermanagement/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultAdmin defines the bootstrap administrator credentials.
type DefaultAdmin struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// GetDefaultAdmin returns the default admin account created on first start.
func GetDefaultAdmin() DefaultAdmin {
	return DefaultAdmin{
		FirstName: "System",
		LastName:  "Administrator",
		Email:     "admin@usermanagement.local",
		Password:  "Admin@123", // Change this in production!
		Phone:     "+12025550100",
	}
}

// Seed creates the roles and the default admin account when missing.
func Seed(db *gorm.DB) error {
	if err := SeedRoles(db); err != nil {
		return err
	}
	return SeedAdmin(db)
}

// SeedRoles makes sure the built-in roles exist.
func SeedRoles(db *gorm.DB) error {
	for _, name := range []string{constants.RoleUser, constants.RoleAdmin} {
		var role model.Role
		err := db.Where("name = ?", name).First(&role).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&model.Role{Name: name}).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the default admin user if it does not exist yet.
func SeedAdmin(db *gorm.DB) error {
	admin := GetDefaultAdmin()
	email := strings.ToLower(admin.Email)

	var existing model.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		FirstName:    admin.FirstName,
		LastName:     admin.LastName,
		Username:     email,
		Email:        email,
		Phone:        admin.Phone,
		PasswordHash: string(hashed),
		Role:         constants.RoleAdmin,
		IsActive:     true,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		var role model.Role
		if err := tx.Where("name = ?", constants.RoleAdmin).First(&role).Error; err != nil {
			return err
		}
		return tx.Create(&model.UserRole{UserID: user.ID, RoleID: role.ID}).Error
	})
}
