package tournament

const (
	// INVALID_ARGUMENT_ERROR_CODE represents an error for invalid input arguments.
	INVALID_ARGUMENT_ERROR_CODE = 3
	// NOT_FOUND_ERROR_CODE represents an error for a resource not being found.
	NOT_FOUND_ERROR_CODE = 5
	// FAILED_PRECONDITION_ERROR_CODE represents an error for a failed precondition.
	FAILED_PRECONDITION_ERROR_CODE = 9
	// INTERNAL_ERROR_CODE represents an internal server error.
	INTERNAL_ERROR_CODE = 13
)

// Error carries a message together with a gRPC-style status code so callers
// embedding the core behind a transport can map failures directly.
type Error struct {
	Message string
	Code    int
}

func (e *Error) Error() string {
	return e.Message
}

// NewError returns an Error with the given message and status code.
func NewError(message string, code int) *Error {
	return &Error{Message: message, Code: code}
}

var (
	ErrInternal           = NewError("internal error occurred", INTERNAL_ERROR_CODE)
	ErrBadInput           = NewError("bad input", INVALID_ARGUMENT_ERROR_CODE)
	ErrEventTypeInvalid   = NewError("event type must be a non-empty string", INVALID_ARGUMENT_ERROR_CODE)
	ErrCallbackNil        = NewError("callback must not be nil", INVALID_ARGUMENT_ERROR_CODE)
	ErrGameUnknown        = NewError("unknown game id", NOT_FOUND_ERROR_CODE)
	ErrScoreInvalid       = NewError("score must be a finite number", INVALID_ARGUMENT_ERROR_CODE)
	ErrConfigInvalid      = NewError("config is invalid", INVALID_ARGUMENT_ERROR_CODE)
	ErrPayloadDecode      = NewError("cannot decode json", INTERNAL_ERROR_CODE)
	ErrPayloadEncode      = NewError("cannot encode json", INTERNAL_ERROR_CODE)
	ErrNoTournament       = NewError("no active tournament", FAILED_PRECONDITION_ERROR_CODE)
	ErrSystemNotAvailable = NewError("system not available", INTERNAL_ERROR_CODE)
	ErrSystemNotFound     = NewError("system not found", INTERNAL_ERROR_CODE)
)
