package service

import (
	"strings"
	"time"

	"github.com/altairhq/usermanagement/internal/constants"
	"github.com/altairhq/usermanagement/internal/dto"
	apperrors "github.com/altairhq/usermanagement/internal/errors"
	"github.com/altairhq/usermanagement/internal/model"
	"gorm.io/datatypes"
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// parseGender normalizes the accepted gender values.
func parseGender(raw string) (*string, error) {
	if isBlank(raw) {
		return nil, nil
	}

	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "male":
		g := "Male"
		return &g, nil
	case "female":
		g := "Female"
		return &g, nil
	case "other":
		g := "Other"
		return &g, nil
	default:
		return nil, apperrors.NewValidationError("gender must be one of Male, Female or Other")
	}
}

// parseRole normalizes the accepted role values. Blank means a regular user;
// anything outside the known set is rejected.
func parseRole(raw string) (string, error) {
	if isBlank(raw) {
		return constants.RoleUser, nil
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "user":
		return constants.RoleUser, nil
	case "admin":
		return constants.RoleAdmin, nil
	default:
		return "", apperrors.NewValidationError("role must be either User or Admin")
	}
}

// parseDateOfBirth accepts date-only values.
func parseDateOfBirth(raw string) (*datatypes.Date, error) {
	if isBlank(raw) {
		return nil, nil
	}

	parsed, err := time.Parse(constants.DateOnlyFormat, strings.TrimSpace(raw))
	if err != nil {
		return nil, apperrors.NewValidationError("date_of_birth must use the YYYY-MM-DD format")
	}

	dob := datatypes.Date(parsed)
	return &dob, nil
}

// applyUserPatch merges the non-blank identity fields of the patch onto the
// user. Blank fields leave the stored values unchanged.
func applyUserPatch(user *model.User, req *dto.UpdateProfileRequest) bool {
	changed := false
	if !isBlank(req.FirstName) {
		user.FirstName = strings.TrimSpace(req.FirstName)
		changed = true
	}
	if !isBlank(req.LastName) {
		user.LastName = strings.TrimSpace(req.LastName)
		changed = true
	}
	if !isBlank(req.PhoneNumber) {
		user.Phone = strings.TrimSpace(req.PhoneNumber)
		changed = true
	}
	return changed
}

// applyProfilePatch merges the non-blank profile fields of the patch onto the
// profile. Returns whether anything changed; parse failures reject the whole
// patch.
func applyProfilePatch(profile *model.UserProfile, req *dto.UpdateProfileRequest) (bool, error) {
	changed := false

	gender, err := parseGender(req.Gender)
	if err != nil {
		return false, err
	}
	if gender != nil {
		profile.Gender = gender
		changed = true
	}

	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return false, err
	}
	if dob != nil {
		profile.DateOfBirth = dob
		changed = true
	}

	stringFields := []struct {
		value  string
		target *string
	}{
		{req.Address, &profile.Address},
		{req.StateOfOrigin, &profile.StateOfOrigin},
		{req.Nationality, &profile.Nationality},
		{req.FacebookLink, &profile.FacebookLink},
		{req.TwitterLink, &profile.TwitterLink},
		{req.LinkedinLink, &profile.LinkedinLink},
		{req.InstagramLink, &profile.InstagramLink},
	}
	for _, f := range stringFields {
		if !isBlank(f.value) {
			*f.target = strings.TrimSpace(f.value)
			changed = true
		}
	}

	return changed, nil
}
