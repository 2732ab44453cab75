package geolocation

import "fmt"

// ErrorCode classifies a PositionError.
type ErrorCode int

// Error codes delivered to error callbacks.
const (
	PermissionDenied    ErrorCode = 1
	PositionUnavailable ErrorCode = 2
	Timeout             ErrorCode = 3
	// UnknownError replaces a native failure that carried no code.
	UnknownError ErrorCode = -999
)

func (c ErrorCode) String() string {
	switch c {
	case PermissionDenied:
		return "PERMISSION_DENIED"
	case PositionUnavailable:
		return "POSITION_UNAVAILABLE"
	case Timeout:
		return "TIMEOUT"
	case UnknownError:
		return "UNKNOWN_ERROR"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// Messages used for errors raised by the coordinator itself.
const (
	msgTimedOut      = "Position retrieval timed out."
	msgZeroTimeout   = "timeout value in PositionOptions set to 0 and no cached Position object available, or cached Position object's age exceeds provided PositionOptions' maximumAge parameter."
	msgIllegalAccess = "Illegal Access"
	msgUnknown       = "unknown error"
	msgMalformedFix  = "malformed location payload"
)

// PositionError is delivered to error callbacks. It is terminal for the request.
type PositionError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// NewPositionError builds a PositionError.
func NewPositionError(code ErrorCode, message string) *PositionError {
	return &PositionError{Code: code, Message: message}
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("geolocation: %s: %s", e.Code, e.Message)
}

// Is matches another *PositionError with the same code, so
// errors.Is(err, ErrTimeout) works regardless of the message.
func (e *PositionError) Is(target error) bool {
	t, ok := target.(*PositionError)
	return ok && t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrPermissionDenied    = &PositionError{Code: PermissionDenied}
	ErrPositionUnavailable = &PositionError{Code: PositionUnavailable}
	ErrTimeout             = &PositionError{Code: Timeout}
	ErrUnknown             = &PositionError{Code: UnknownError}
)

// RawError holds the fields of a native failure payload.
type RawError struct {
	Code    int
	Message string
}

// positionErrorFromRaw keeps the native code and message when present and
// substitutes UnknownError / "unknown error" otherwise.
func positionErrorFromRaw(raw RawError) *PositionError {
	code := ErrorCode(raw.Code)
	if raw.Code == 0 {
		code = UnknownError
	}
	message := raw.Message
	if message == "" {
		message = msgUnknown
	}
	return NewPositionError(code, message)
}
