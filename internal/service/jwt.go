package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/altairhq/usermanagement/internal/constants"
	apperrors "github.com/altairhq/usermanagement/internal/errors"
	"github.com/altairhq/usermanagement/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// JWTService issues and validates HS256 access tokens and opaque refresh
// tokens.
type JWTService struct {
	secretKey []byte
	issuer    string

	// now is replaceable in tests.
	now func() time.Time
}

func NewJWTService(secretKey, issuer string) (*JWTService, error) {
	if secretKey == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		now:       time.Now,
	}, nil
}

// GenerateToken creates an access token for the user. A non-positive
// ttlMinutes falls back to the default lifetime.
func (s *JWTService) GenerateToken(user *model.User, ttlMinutes int) (string, error) {
	if ttlMinutes <= 0 {
		ttlMinutes = constants.DefaultAccessTokenMinutes
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sid":   user.ID.String(),
		"email": user.Email,
		"name":  user.DisplayName(),
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Duration(ttlMinutes) * time.Minute).Unix(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// GenerateRefreshToken creates an opaque 64-byte random token.
func (s *JWTService) GenerateRefreshToken() (string, error) {
	bytes := make([]byte, constants.RefreshTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return base64.StdEncoding.EncodeToString(bytes), nil
}

// ValidateToken parses and fully validates an access token, including its
// expiry, and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	token, err := parser.Parse(tokenString, s.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.WrapError(apperrors.ErrTokenExpired, err)
		}
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}

// ValidatePossiblyExpiredToken verifies the signature and signing method of
// an access token but ignores its expiry. The refresh flow uses it to read
// the identity out of a token that has already run out.
func (s *JWTService) ValidatePossiblyExpiredToken(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.Parse(tokenString, s.keyFunc)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}

// SubjectFromClaims extracts the user id claim.
func SubjectFromClaims(claims jwt.MapClaims) (string, error) {
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", apperrors.ErrInvalidToken
	}
	return sid, nil
}

func (s *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secretKey, nil
}
