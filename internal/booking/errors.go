package booking

// Validation error codes surfaced to API clients.
const (
	CodeInvalidDateFormat = "invalid-date-format"
	CodeInvalidDate       = "invalid-date"
	CodeDateUnavailable   = "date-unavailable"
	CodeScheduleConflict  = "schedule-conflict"
	CodeNotFound          = "not-found"
)

// Error is a booking validation failure with a stable machine code and a
// human-readable message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}
