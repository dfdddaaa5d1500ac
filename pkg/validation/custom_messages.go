package validation

// CustomMessage returns field-specific messages that override the
// tag defaults. Keys are struct field names.
func CustomMessage(field string) map[string]string {
	var customValidationMessages = map[string]map[string]string{
		"Email": {
			"required": "email is required",
			"email":    "email must be a valid email address",
		},
		"Phone": {
			"required": "phone number is required",
			"e164":     "phone number must be in international format",
		},
		"Password": {
			"required": "password is required",
			"min":      "password must be at least 8 characters",
		},
		"FirstName": {
			"required": "first name is required",
			"max":      "first name must be at most 55 characters",
		},
		"LastName": {
			"required": "last name is required",
			"max":      "last name must be at most 55 characters",
		},
		"IDs": {
			"required": "at least one user id is required",
			"min":      "at least one user id is required",
		},
		"RefreshToken": {
			"required": "refresh token is required",
		},
		"AccessToken": {
			"required": "access token is required",
		},
	}
	return customValidationMessages[field]
}
