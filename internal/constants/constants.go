package constants

// Session / context keys
const (
	SessionCookieName = "worklog_session"
	ContextKeyUserID  = "user_id"
	ContextKeyRole    = "user_role"
)

// Pagination bounds
const (
	MinPage         = 1
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Validation bounds
const (
	MinPasswordLength = 8
	MaxDetailsLength  = 1000
	MaxSearchLength   = 500
	MaxBatchSize      = 50
	MaxHoursPerLog    = 168
)

// DateFormat is the wire format for work-log dates.
const DateFormat = "2006-01-02"
