package ocpp

// Request message
type Request interface {
	// GetFeatureName Returns the unique name of the feature, to which this request belongs to.
	GetFeatureName() string
	// Summary Returns a compact one-line description for the feature log.
	Summary() string
}

// Response message
type Response interface {
	// GetFeatureName Returns the unique name of the feature, to which this request belongs to.
	GetFeatureName() string
}

type ErrorCode string

const (
	FormationViolation          ErrorCode = "FormationViolation"
	PropertyConstraintViolation ErrorCode = "PropertyConstraintViolation"
	FieldTypeError              ErrorCode = "FieldTypeError"
	NotSupported                ErrorCode = "NotSupported"
)

// Error is a validation failure that is answered with a CALLERROR frame.
// Frame-shape violations with no recoverable unique id terminate the
// connection instead.
type Error struct {
	Code        ErrorCode
	Description string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Description
}

func NewError(code ErrorCode, description string) *Error {
	return &Error{Code: code, Description: description}
}
