package constants

// Pagination Query Parameters
const (
	QueryParamPage     = "page"
	QueryParamPageSize = "page_size"
	QueryParamKeyword  = "keyword"
)

// Default Pagination Values (as strings for query parsing)
const (
	DefaultPage     = "1"
	DefaultPageSize = "10"
)

// Pagination Limits
const (
	MinPage     = 1
	MinPageSize = 1
	MaxPageSize = 100
)
