package identity

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/altairhq/usermanagement/internal/errors"
	"github.com/altairhq/usermanagement/internal/model"
	ctxutil "github.com/altairhq/usermanagement/pkg/context"
	"github.com/altairhq/usermanagement/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Store owns user credentials and role membership. It validates passwords,
// hashes them with bcrypt and keeps the users, roles and user_roles tables
// consistent.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindByEmail looks a user up case-insensitively. Returns nil when absent.
func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	var user model.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = ?", normalized).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByID looks a user up by primary key. Returns nil when absent.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create validates the password, hashes it and inserts the user. The email
// is normalized to lower case and doubles as the username.
func (s *Store) Create(ctx context.Context, user *model.User, password string) error {
	ctx = ctxutil.WithOperation(ctx, "identity", "Create")

	if err := ValidatePassword(password); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrPersistence, err)
	}

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Username = user.Email
	user.PasswordHash = string(hashed)

	start := time.Now()
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to create user").
			String("email", user.Email).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrPersistence, err)
	}

	logger.InfoWithContext(ctx, "User created").
		String("user_id", user.ID.String()).
		String("email", user.Email).
		Duration(time.Since(start)).
		Log()

	return nil
}

// AddToRole links the user to a named role and stamps it on the user record.
func (s *Store) AddToRole(ctx context.Context, user *model.User, roleName string) error {
	ctx = ctxutil.WithOperation(ctx, "identity", "AddToRole")

	var role model.Role
	err := s.db.WithContext(ctx).Where("name = ?", roleName).First(&role).Error
	if err != nil {
		logger.ErrorWithContext(ctx, "Role lookup failed").
			String("role", roleName).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrPersistence, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model.UserRole{UserID: user.ID, RoleID: role.ID}).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", user.ID).Update("role", roleName).Error
	})
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to assign role").
			String("user_id", user.ID.String()).
			String("role", roleName).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrPersistence, err)
	}

	user.Role = roleName
	return nil
}

// Update persists changes to an existing user record.
func (s *Store) Update(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "identity", "Update")

	result := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"phone":         user.Phone,
		"is_active":     user.IsActive,
		"refresh_token": user.RefreshToken,
	})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to update user").
			String("user_id", user.ID.String()).
			Err(result.Error).
			Log()
		return apperrors.WrapError(apperrors.ErrPersistence, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes the user, their role links and their profile.
func (s *Store) Delete(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithOperation(ctx, "identity", "Delete")

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&model.UserProfile{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.User{}, "id = ?", user.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		logger.ErrorWithContext(ctx, "Failed to delete user").
			String("user_id", user.ID.String()).
			Err(err).
			Log()
		return apperrors.WrapError(apperrors.ErrPersistence, err)
	}

	logger.InfoWithContext(ctx, "User deleted").
		String("user_id", user.ID.String()).
		Log()

	return nil
}

// CheckPassword compares a candidate password against the stored hash.
func (s *Store) CheckPassword(user *model.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// ValidatePassword enforces the account password policy: at least 8
// characters with at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.NewValidationError("password must contain at least one letter and one digit")
	}
	return nil
}
