package repository

import (
	"context"
	"time"

	"github.com/altairhq/usermanagement/internal/model"
	ctxutil "github.com/altairhq/usermanagement/pkg/context"
	"github.com/altairhq/usermanagement/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository manages the profile sub-records through the generic
// change-set contract.
type ProfileRepository struct {
	*GormRepository[model.UserProfile]
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{GormRepository: NewGormRepository[model.UserProfile](db)}
}

// ByUserID matches the owning user.
func ByUserID(userID uuid.UUID) Spec {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// GetByUserID fetches the profile for a user. Returns nil when the user has
// no profile yet.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByUserID")

	start := time.Now()
	profile, err := r.Get(ctx, ByUserID(userID))
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to get profile").
			String("user_id", userID.String()).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "Profile lookup finished").
		String("user_id", userID.String()).
		Bool("found", profile != nil).
		Duration(time.Since(start)).
		Log()

	return profile, nil
}
