package identity

import (
	"errors"
	"testing"

	apperrors "github.com/altairhq/usermanagement/internal/errors"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "passw0rd", false},
		{"valid mixed", "Str0ngPassword", false},
		{"too short", "pa55", true},
		{"no digit", "passwords", true},
		{"no letter", "12345678", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr && err == nil {
				t.Errorf("ValidatePassword(%q) = nil, want error", tt.password)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidatePassword(%q) = %v, want nil", tt.password, err)
			}
			if tt.wantErr && !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("ValidatePassword(%q) error is not a validation error: %v", tt.password, err)
			}
		})
	}
}
