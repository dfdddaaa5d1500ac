package service

import (
	"errors"
	"testing"
	"time"

	"github.com/altairhq/usermanagement/internal/dto"
	apperrors "github.com/altairhq/usermanagement/internal/errors"
	"github.com/altairhq/usermanagement/internal/model"
	"gorm.io/datatypes"
)

func TestParseGender(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantNil bool
		wantErr bool
	}{
		{"Male", "Male", false, false},
		{"male", "Male", false, false},
		{"FEMALE", "Female", false, false},
		{"other", "Other", false, false},
		{"  Male  ", "Male", false, false},
		{"", "", true, false},
		{"   ", "", true, false},
		{"attack-helicopter", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseGender(tt.input)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidInput) {
					t.Fatalf("parseGender(%q) err = %v, want validation error", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGender(%q) unexpected error: %v", tt.input, err)
			}
			if tt.wantNil {
				if got != nil {
					t.Errorf("parseGender(%q) = %q, want nil", tt.input, *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("parseGender(%q) = %v, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "User", false},
		{"   ", "User", false},
		{"User", "User", false},
		{"user", "User", false},
		{"Admin", "Admin", false},
		{"ADMIN", "Admin", false},
		{"  admin  ", "Admin", false},
		{"Superuser", "", true},
		{"root", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseRole(tt.input)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidInput) {
					t.Fatalf("parseRole(%q) err = %v, want validation error", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRole(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDateOfBirth(t *testing.T) {
	got, err := parseDateOfBirth("1990-06-15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected parsed date")
	}
	if time.Time(*got).Format("2006-01-02") != "1990-06-15" {
		t.Errorf("unexpected date %v", time.Time(*got))
	}

	if _, err := parseDateOfBirth("15/06/1990"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("expected validation error for wrong format, got %v", err)
	}

	got, err = parseDateOfBirth("")
	if err != nil || got != nil {
		t.Errorf("expected nil for blank input, got %v, %v", got, err)
	}
}

func TestApplyUserPatch(t *testing.T) {
	user := &model.User{FirstName: "Ada", LastName: "Lovelace", Phone: "+12025550101"}

	changed := applyUserPatch(user, &dto.UpdateProfileRequest{
		FirstName: "  Augusta ",
		LastName:  "",
	})
	if !changed {
		t.Error("expected change")
	}
	if user.FirstName != "Augusta" {
		t.Errorf("expected trimmed first name, got %q", user.FirstName)
	}
	if user.LastName != "Lovelace" {
		t.Errorf("expected last name untouched, got %q", user.LastName)
	}

	if applyUserPatch(user, &dto.UpdateProfileRequest{}) {
		t.Error("expected no change for empty patch")
	}
}

func TestApplyProfilePatch(t *testing.T) {
	existing := datatypes.Date(time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC))
	profile := &model.UserProfile{
		Address:     "Old Address",
		DateOfBirth: &existing,
	}

	changed, err := applyProfilePatch(profile, &dto.UpdateProfileRequest{
		Nationality:  "British",
		TwitterLink:  "https://twitter.com/ada",
		Address:      "  ",
		FacebookLink: "",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected change")
	}
	if profile.Address != "Old Address" {
		t.Errorf("expected blank field to keep stored value, got %q", profile.Address)
	}
	if profile.Nationality != "British" {
		t.Errorf("expected nationality set, got %q", profile.Nationality)
	}
	if profile.DateOfBirth == nil {
		t.Error("expected untouched date of birth")
	}

	changed, err = applyProfilePatch(profile, &dto.UpdateProfileRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected no change for empty patch")
	}
}
