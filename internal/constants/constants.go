package constants

// Context keys
const (
	ContextKeyUser = "current_user"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
	BearerPrefix      = "Bearer "
)
