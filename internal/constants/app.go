package constants

// Application Information
const (
	AppName    = "User Management Service"
	AppVersion = "1.0.0"
)

// Environment Types
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Default Application Settings
const (
	DefaultPort        = "8080"
	DefaultEnvironment = EnvDevelopment
)

// Cache Key Prefixes
const (
	CacheKeyPrefix = "usermgmt:"
	CacheKeyUser   = CacheKeyPrefix + "user:"
	CacheKeySearch = CacheKeyPrefix + "search:"
)

// Role Names
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// Log Levels
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"
)
