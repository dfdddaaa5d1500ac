package constants

// Field Length Limits
const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MaxNameLength     = 55
	MinPhoneLength    = 10
	MaxPhoneLength    = 15
	MaxEmailLength    = 255
	MaxURLLength      = 2048
)

// Token Settings
const (
	DefaultAccessTokenMinutes = 20 // fallback when no ttl is requested
	RefreshTokenBytes         = 64
)

// Validation Patterns
const (
	PhonePattern = `^\+?[1-9]\d{1,14}$` // E.164 format
)

// Date-only format accepted for date_of_birth fields.
const DateOnlyFormat = "2006-01-02"
