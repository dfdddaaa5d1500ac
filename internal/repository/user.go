package repository

import (
	"context"
	"strings"
	"time"

	"github.com/altairhq/usermanagement/internal/model"
	ctxutil "github.com/altairhq/usermanagement/pkg/context"
	"github.com/altairhq/usermanagement/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository provides the user-specific queries on top of the generic
// repository contract.
type UserRepository struct {
	*GormRepository[model.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{GormRepository: NewGormRepository[model.User](db)}
}

// WithProfile preloads the profile sub-record.
func WithProfile() Spec {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload("Profile")
	}
}

// ByEmail matches on the lower-cased email column.
func ByEmail(email string) Spec {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(email) = ?", normalized)
	}
}

// ByID matches the primary key.
func ByID(id uuid.UUID) Spec {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

// escapeLike neutralizes LIKE wildcards in a user-supplied keyword so it only
// ever matches literally.
func escapeLike(keyword string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(keyword)
}

// MatchingKeyword filters on first name, last name or email, case
// insensitively, anywhere in the value.
func MatchingKeyword(keyword string) Spec {
	pattern := "%" + escapeLike(keyword) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?",
			pattern, pattern, pattern,
		)
	}
}

// Paginated orders by first name and applies the page window.
func Paginated(page, pageSize int) Spec {
	offset := (page - 1) * pageSize
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("first_name").Offset(offset).Limit(pageSize)
	}
}

// GetByID fetches a user with their profile. Returns nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByID")

	start := time.Now()
	user, err := r.Get(ctx, ByID(id), WithProfile())
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to get user by ID").
			String("user_id", id.String()).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "User lookup by ID finished").
		String("user_id", id.String()).
		Bool("found", user != nil).
		Duration(time.Since(start)).
		Log()

	return user, nil
}

// GetByEmail fetches a user by email, case insensitively. Returns nil when
// absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetByEmail")

	start := time.Now()
	user, err := r.Get(ctx, ByEmail(email), WithProfile())
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to get user by email").
			String("email", email).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, err
	}

	logger.DebugWithContext(ctx, "User lookup by email finished").
		String("email", email).
		Bool("found", user != nil).
		Duration(time.Since(start)).
		Log()

	return user, nil
}

// GetAll returns one page of users with their profiles plus the total count.
func (r *UserRepository) GetAll(ctx context.Context, page, pageSize int) ([]model.User, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "GetAll")

	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return nil, 0, err
	}

	start := time.Now()

	total, err := r.Count(ctx)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to count users").
			Err(err).
			Log()
		return nil, 0, err
	}

	users, err := r.List(ctx, Paginated(page, pageSize), WithProfile())
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch users").
			Int("page", page).
			Int("page_size", pageSize).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.InfoWithContext(ctx, "Users retrieved successfully").
		Int("page", page).
		Int("page_size", pageSize).
		Int64("total", total).
		Int("returned_count", len(users)).
		Duration(time.Since(start)).
		Log()

	return users, total, nil
}

// Search returns the page of users matching keyword plus the total number of
// matches across all pages.
func (r *UserRepository) Search(ctx context.Context, keyword string, page, pageSize int) ([]model.User, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "repository", "Search")

	if err := ctx.Err(); err != nil {
		logger.WarnWithContext(ctx, "Context cancelled before query").
			Err(err).
			Log()
		return nil, 0, err
	}

	start := time.Now()

	total, err := r.Count(ctx, MatchingKeyword(keyword))
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to count search matches").
			String("keyword", keyword).
			Err(err).
			Log()
		return nil, 0, err
	}

	users, err := r.List(ctx, MatchingKeyword(keyword), Paginated(page, pageSize), WithProfile())
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to search users").
			String("keyword", keyword).
			Int("page", page).
			Int("page_size", pageSize).
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.InfoWithContext(ctx, "User search finished").
		String("keyword", keyword).
		Int("page", page).
		Int("page_size", pageSize).
		Int64("total", total).
		Int("returned_count", len(users)).
		Duration(time.Since(start)).
		Log()

	return users, total, nil
}
