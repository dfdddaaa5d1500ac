package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/altairhq/usermanagement/internal/constants"
	"github.com/altairhq/usermanagement/internal/dto"
	apperrors "github.com/altairhq/usermanagement/internal/errors"
	"github.com/altairhq/usermanagement/internal/imagestore"
	"github.com/altairhq/usermanagement/internal/model"
	"github.com/altairhq/usermanagement/internal/repository"
	ctxutil "github.com/altairhq/usermanagement/pkg/context"
	"github.com/altairhq/usermanagement/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityStore owns credentials and role membership.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, user *model.User, password string) error
	AddToRole(ctx context.Context, user *model.User, roleName string) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, user *model.User) error
	CheckPassword(user *model.User, password string) bool
}

// UserReader serves the read-side queries.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetAll(ctx context.Context, page, pageSize int) ([]model.User, int64, error)
	Search(ctx context.Context, keyword string, page, pageSize int) ([]model.User, int64, error)
}

// ProfileStore manages profile sub-records through isolated change-sets.
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error)
	Session() repository.Repository[model.UserProfile]
}

// TokenIssuer creates and checks the token pair.
type TokenIssuer interface {
	GenerateToken(user *model.User, ttlMinutes int) (string, error)
	GenerateRefreshToken() (string, error)
	ValidatePossiblyExpiredToken(tokenString string) (jwt.MapClaims, error)
}

// UserCache is an optional read-through cache for user responses and search
// result pages.
type UserCache interface {
	GetUser(ctx context.Context, id string) (*dto.UserResponse, bool)
	SetUser(ctx context.Context, user *dto.UserResponse)
	GetSearch(ctx context.Context, keyword string, page, pageSize int) ([]dto.UserResponse, int64, bool)
	SetSearch(ctx context.Context, keyword string, page, pageSize int, users []dto.UserResponse, total int64)
	InvalidateUser(ctx context.Context, id string)
	InvalidateSearches(ctx context.Context)
}

// UserService runs the account workflows: registration, reads, profile
// updates, bulk deletion and the token flows.
type UserService struct {
	identity IdentityStore
	users    UserReader
	profiles ProfileStore
	images   imagestore.Store
	tokens   TokenIssuer
	cache    UserCache
	tokenTTL int
}

func NewUserService(
	identity IdentityStore,
	users UserReader,
	profiles ProfileStore,
	images imagestore.Store,
	tokens TokenIssuer,
	cache UserCache,
	tokenTTLMinutes int,
) *UserService {
	if tokenTTLMinutes <= 0 {
		tokenTTLMinutes = constants.DefaultAccessTokenMinutes
	}
	return &UserService{
		identity: identity,
		users:    users,
		profiles: profiles,
		images:   images,
		tokens:   tokens,
		cache:    cache,
		tokenTTL: tokenTTLMinutes,
	}
}

// Register provisions a new account: credential record, role membership,
// optional profile picture upload and the initial token pair. A failed
// picture upload never fails the registration; the profile is stored without
// a picture instead.
func (s *UserService) Register(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user_service", "Register")

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.identity.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrPersistence, err)
	}
	if existing != nil {
		logger.WarnWithContext(ctx, "Registration rejected, email already in use").
			String("email", email).
			Log()
		return nil, apperrors.ErrEmailExists
	}

	gender, err := parseGender(req.Gender)
	if err != nil {
		return nil, err
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	roleName, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if req.ProfilePic != nil && !imagestore.IsValidImage(req.ProfilePic.Filename) {
		return nil, apperrors.NewValidationError("profile picture must be a jpg, jpeg, png or gif image")
	}

	user := &model.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(req.PhoneNumber),
		Role:      roleName,
		IsActive:  true,
	}

	if err := s.identity.Create(ctx, user, req.Password); err != nil {
		return nil, err
	}

	// A failed role assignment leaves the credential record in place, the
	// caller sees a persistence failure.
	if err := s.identity.AddToRole(ctx, user, roleName); err != nil {
		return nil, err
	}

	var picURL string
	if req.ProfilePic != nil {
		picURL, err = s.images.SaveImage(ctx, req.ProfilePic)
		if err != nil {
			logger.WarnWithContext(ctx, "Profile picture upload failed, continuing without picture").
				String("user_id", user.ID.String()).
				Err(err).
				Log()
			picURL = ""
		}
	}

	profile := &model.UserProfile{
		UserID:      user.ID,
		Gender:      gender,
		DateOfBirth: dob,
		Nationality: strings.TrimSpace(req.Nationality),
		ProfilePic:  picURL,
	}

	session := s.profiles.Session()
	session.Add(profile)
	if err := session.SaveChanges(ctx); err != nil {
		logger.ErrorWithContext(ctx, "Failed to persist profile").
			String("user_id", user.ID.String()).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrPersistence, err)
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "User registered").
		String("user_id", user.ID.String()).
		String("email", user.Email).
		String("role", user.Role).
		Bool("has_picture", picURL != "").
		Log()

	response := buildUserResponse(user, profile)
	response.AccessToken = accessToken
	response.RefreshToken = refreshToken

	if s.cache != nil {
		s.cache.InvalidateSearches(ctx)
	}

	return response, nil
}

// GetByID returns one user with their profile.
func (s *UserService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user_service", "GetByID")

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NewValidationError("id must be a valid UUID")
	}

	if s.cache != nil {
		if cached, ok := s.cache.GetUser(ctx, id); ok {
			logger.DebugWithContext(ctx, "User served from cache").
				String("user_id", id).
				Log()
			return cached, nil
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrPersistence, err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	response := buildUserResponse(user, user.Profile)

	if s.cache != nil {
		s.cache.SetUser(ctx, response)
	}

	return response, nil
}

// GetAll returns one page of users plus the total count.
func (s *UserService) GetAll(ctx context.Context, page, pageSize int) ([]dto.UserResponse, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "user_service", "GetAll")

	users, total, err := s.users.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrPersistence, err)
	}

	return buildUserResponses(users), total, nil
}

// Search returns the page of users matching keyword. An empty page is a
// normal result, not an error.
func (s *UserService) Search(ctx context.Context, keyword string, page, pageSize int) ([]dto.UserResponse, int64, error) {
	ctx = ctxutil.WithOperation(ctx, "user_service", "Search")

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, 0, apperrors.NewValidationError("keyword must not be blank")
	}

	if s.cache != nil {
		if cached, total, ok := s.cache.GetSearch(ctx, keyword, page, pageSize); ok {
			logger.DebugWithContext(ctx, "Search page served from cache").
				String("keyword", keyword).
				Int("page", page).
				Log()
			return cached, total, nil
		}
	}

	users, total, err := s.users.Search(ctx, keyword, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrPersistence, err)
	}

	responses := buildUserResponses(users)
	if s.cache != nil {
		s.cache.SetSearch(ctx, keyword, page, pageSize, responses, total)
	}

	return responses, total, nil
}

// UpdateProfile merges a sparse patch onto the user and their profile. The
// profile record is created on first write. A new picture replaces the old
// one; the old object is removed before the upload.
func (s *UserService) UpdateProfile(ctx context.Context, id string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user_service", "UpdateProfile")

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NewValidationError("id must be a valid UUID")
	}

	user, err := s.identity.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrPersistence, err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	if req.ProfilePic != nil && !imagestore.IsValidImage(req.ProfilePic.Filename) {
		return nil, apperrors.NewValidationError("profile picture must be a jpg, jpeg, png or gif image")
	}

	// The user record is always re-persisted so updated_at reflects the
	// update, even when the patch only touches profile fields.
	applyUserPatch(user, req)
	if err := s.identity.Update(ctx, user); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrPersistence, err)
	}
	isNew := profile == nil
	if isNew {
		profile = &model.UserProfile{UserID: userID}
	}

	changed, err := applyProfilePatch(profile, req)
	if err != nil {
		return nil, err
	}

	if req.ProfilePic != nil {
		if profile.ProfilePic != "" {
			// Remove the replaced object first so a successful upload never
			// leaves two pictures behind. Losing the old picture on a failed
			// upload is the accepted trade-off.
			if err := s.images.DeleteImage(ctx, profile.ProfilePic); err != nil {
				logger.WarnWithContext(ctx, "Failed to delete previous profile picture").
					String("user_id", id).
					Err(err).
					Log()
			}
		}

		url, err := s.images.SaveImage(ctx, req.ProfilePic)
		if err != nil {
			return nil, err
		}
		profile.ProfilePic = url
		changed = true
	}

	if changed || isNew {
		session := s.profiles.Session()
		if isNew {
			session.Add(profile)
		} else {
			session.Update(profile)
		}
		if err := session.SaveChanges(ctx); err != nil {
			logger.ErrorWithContext(ctx, "Failed to persist profile update").
				String("user_id", id).
				Err(err).
				Log()
			return nil, apperrors.WrapError(apperrors.ErrPersistence, err)
		}
	}

	logger.InfoWithContext(ctx, "Profile updated").
		String("user_id", id).
		Bool("profile_created", isNew).
		Log()

	if s.cache != nil {
		s.cache.InvalidateUser(ctx, id)
		s.cache.InvalidateSearches(ctx)
	}

	return buildUserResponse(user, profile), nil
}

// DeleteUsers removes every listed user. Failures do not stop the batch;
// successful deletions stay deleted and the aggregate error lists one
// message per failed id.
func (s *UserService) DeleteUsers(ctx context.Context, req *dto.DeleteUsersRequest) error {
	ctx = ctxutil.WithOperation(ctx, "user_service", "DeleteUsers")

	var failures []string
	for _, id := range req.IDs {
		userID, err := uuid.Parse(id)
		if err != nil {
			failures = append(failures, fmt.Sprintf("User with ID %s not found.", id))
			continue
		}

		user, err := s.identity.FindByID(ctx, userID)
		if err != nil {
			failures = append(failures, fmt.Sprintf("User %s: %s", id, err.Error()))
			continue
		}
		if user == nil {
			failures = append(failures, fmt.Sprintf("User with ID %s not found.", id))
			continue
		}

		if err := s.identity.Delete(ctx, user); err != nil {
			failures = append(failures, fmt.Sprintf("User %s: %s", id, apperrors.GetErrorMessage(err)))
			continue
		}

		if s.cache != nil {
			s.cache.InvalidateUser(ctx, id)
		}
	}

	if s.cache != nil {
		s.cache.InvalidateSearches(ctx)
	}

	if len(failures) > 0 {
		logger.WarnWithContext(ctx, "Bulk deletion finished with failures").
			Int("requested", len(req.IDs)).
			Int("failed", len(failures)).
			Log()
		return apperrors.NewBulkError(failures)
	}

	logger.InfoWithContext(ctx, "Bulk deletion finished").
		Int("deleted", len(req.IDs)).
		Log()

	return nil
}

// Login checks the credentials and issues a fresh token pair.
func (s *UserService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user_service", "Login")

	user, err := s.identity.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrPersistence, err)
	}
	if user == nil || !s.identity.CheckPassword(user, req.Password) {
		logger.WarnWithContext(ctx, "Login rejected").
			String("email", strings.ToLower(req.Email)).
			Log()
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "User logged in").
		String("user_id", user.ID.String()).
		Log()

	return s.tokenResponse(user, accessToken, refreshToken), nil
}

// Refresh exchanges an expired access token plus the stored refresh token
// for a fresh pair. The refresh token rotates on every exchange.
func (s *UserService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	ctx = ctxutil.WithOperation(ctx, "user_service", "Refresh")

	claims, err := s.tokens.ValidatePossiblyExpiredToken(req.AccessToken)
	if err != nil {
		return nil, err
	}

	sid, err := SubjectFromClaims(claims)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(sid)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.identity.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrPersistence, err)
	}
	if user == nil || user.RefreshToken == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(req.RefreshToken)) != 1 {
		logger.WarnWithContext(ctx, "Refresh token mismatch").
			String("user_id", sid).
			Log()
		return nil, apperrors.ErrInvalidRefreshToken
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.InfoWithContext(ctx, "Token pair refreshed").
		String("user_id", sid).
		Log()

	return s.tokenResponse(user, accessToken, refreshToken), nil
}

// issueTokens creates a fresh pair and stores the rotated refresh token on
// the user record.
func (s *UserService) issueTokens(ctx context.Context, user *model.User) (string, string, error) {
	accessToken, err := s.tokens.GenerateToken(user, s.tokenTTL)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user.RefreshToken = refreshToken
	if err := s.identity.Update(ctx, user); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *UserService) tokenResponse(user *model.User, accessToken, refreshToken string) *dto.TokenResponse {
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.tokenTTL * 60,
		User:         *buildUserResponse(user, user.Profile),
	}
}

func buildUserResponses(users []model.User) []dto.UserResponse {
	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *buildUserResponse(&users[i], users[i].Profile))
	}
	return responses
}

func buildUserResponse(user *model.User, profile *model.UserProfile) *dto.UserResponse {
	response := &dto.UserResponse{
		ID:          user.ID.String(),
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		PhoneNumber: user.Phone,
		AccountType: user.Role,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}

	if profile != nil {
		var dob *string
		if profile.DateOfBirth != nil {
			formatted := time.Time(*profile.DateOfBirth).Format(constants.DateOnlyFormat)
			dob = &formatted
		}
		response.Profile = &dto.ProfileResponse{
			FirstName:     user.FirstName,
			LastName:      user.LastName,
			PhoneNumber:   user.Phone,
			Gender:        profile.Gender,
			DateOfBirth:   dob,
			Address:       profile.Address,
			StateOfOrigin: profile.StateOfOrigin,
			Nationality:   profile.Nationality,
			ProfilePic:    profile.ProfilePic,
			FacebookLink:  profile.FacebookLink,
			TwitterLink:   profile.TwitterLink,
			LinkedinLink:  profile.LinkedinLink,
			InstagramLink: profile.InstagramLink,
		}
	}

	return response
}
