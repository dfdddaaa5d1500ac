package service

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	apperrors "github.com/altairhq/usermanagement/internal/errors"
	"github.com/altairhq/usermanagement/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService("test-secret-key", "usermanagement-test")
	if err != nil {
		t.Fatalf("failed to build jwt service: %v", err)
	}
	return svc
}

func testUser() *model.User {
	return &model.User{
		ID:        uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Role:      "User",
	}
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	if _, err := NewJWTService("", ""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWTService(t)
	user := testUser()

	token, err := svc.GenerateToken(user, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claims["sid"] != user.ID.String() {
		t.Errorf("expected sid %q, got %v", user.ID, claims["sid"])
	}
	if claims["email"] != user.Email {
		t.Errorf("expected email %q, got %v", user.Email, claims["email"])
	}
	if claims["name"] != user.FirstName {
		t.Errorf("expected name %q, got %v", user.FirstName, claims["name"])
	}
}

func TestJWTService_ExpiredTokenRejected(t *testing.T) {
	svc := newTestJWTService(t)
	user := testUser()

	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateToken(user, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	if !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTService_ExpiredTokenAcceptedForRefresh(t *testing.T) {
	svc := newTestJWTService(t)
	user := testUser()

	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	token, err := svc.GenerateToken(user, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.now = time.Now
	claims, err := svc.ValidatePossiblyExpiredToken(token)
	if err != nil {
		t.Fatalf("expected expired token to pass signature check, got %v", err)
	}

	sid, err := SubjectFromClaims(claims)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sid != user.ID.String() {
		t.Errorf("expected sid %q, got %q", user.ID, sid)
	}
}

func TestJWTService_RejectsWrongAlgorithm(t *testing.T) {
	svc := newTestJWTService(t)

	// Unsigned token claiming alg "none".
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sid": uuid.NewString(),
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	if _, err := svc.ValidateToken(tokenString); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("ValidateToken accepted alg=none token: %v", err)
	}
	if _, err := svc.ValidatePossiblyExpiredToken(tokenString); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("ValidatePossiblyExpiredToken accepted alg=none token: %v", err)
	}
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.GenerateToken(testUser(), 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tampered := token[:len(token)-4] + "AAAA"
	if _, err := svc.ValidateToken(tampered); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestJWTService_DefaultTTLFallback(t *testing.T) {
	svc := newTestJWTService(t)
	user := testUser()

	fixed := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	token, err := svc.GenerateToken(user, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidatePossiblyExpiredToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatalf("missing exp claim: %v", claims)
	}
	want := fixed.Add(20 * time.Minute).Unix()
	if int64(exp) != want {
		t.Errorf("expected default 20 minute lifetime, exp = %d, want %d", int64(exp), want)
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	svc := newTestJWTService(t)

	token, err := svc.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("refresh token is not valid base64: %v", err)
	}
	if len(raw) != 64 {
		t.Errorf("expected 64 random bytes, got %d", len(raw))
	}

	other, err := svc.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == other {
		t.Error("expected unique refresh tokens")
	}
}
