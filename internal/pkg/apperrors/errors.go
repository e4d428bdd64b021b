package apperrors

import "errors"

// Common error categories. Domain errors below wrap one of these so the HTTP
// layer can pick a status code with errors.Is.
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// ErrPartialMembershipUpdate marks a join/leave (or event cascade) where the
	// first write committed and the second did not.
	ErrPartialMembershipUpdate = errors.New("partial membership update")

	// ErrVersionConflict is returned by repositories when a save races with
	// another writer of the same document.
	ErrVersionConflict = errors.New("document version conflict")
)

// Chat errors
var (
	ErrChatNotFound        = NewCustomError(ErrResourceNotFound, "chat not found").WithCode("CHAT_404")
	ErrMessageNotFound     = NewCustomError(ErrResourceNotFound, "message not found in chat").WithCode("CHAT_405")
	ErrMemberNotFound      = NewCustomError(ErrResourceNotFound, "user is not a member of this chat").WithCode("CHAT_406")
	ErrInvalidParticipants = NewCustomError(ErrBadRequest, "chat requires at least two existing users").WithCode("CHAT_001")
	ErrNotAGroupChat       = NewCustomError(ErrBadRequest, "operation is only allowed on group chats").WithCode("CHAT_002")
	ErrNotChatMember       = NewCustomError(ErrPermissionDenied, "sender is not a member of this chat").WithCode("CHAT_403")
)

// Event errors
var (
	ErrEventNotFound    = NewCustomError(ErrResourceNotFound, "event not found").WithCode("EVT_404")
	ErrSelfJoinRejected = NewCustomError(ErrBadRequest, "event creator cannot join their own event").WithCode("EVT_001")
	ErrAlreadyAttending = NewCustomError(ErrBadRequest, "user is already attending this event").WithCode("EVT_002")
	ErrNotAttending     = NewCustomError(ErrBadRequest, "user is not attending this event").WithCode("EVT_003")
	ErrNotEventOwner    = NewCustomError(ErrPermissionDenied, "only the event creator can modify this event").WithCode("EVT_403")
)

// User errors
var (
	ErrUserNotFound       = NewCustomError(ErrResourceNotFound, "user not found").WithCode("USR_404")
	ErrUsernameTaken      = NewCustomError(ErrResourceAlreadyExists, "username already exists").WithCode("USR_001")
	ErrEmailAlreadyExists = NewCustomError(ErrResourceAlreadyExists, "email already exists").WithCode("USR_002")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError reports a missing or malformed input field.
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// NewPartialMembershipUpdateError wraps the cause of a failed second write.
func NewPartialMembershipUpdateError(message string, cause error) error {
	return &CustomError{
		Err:     ErrPartialMembershipUpdate,
		Message: message,
		Code:    "MEM_001",
		Details: map[string]interface{}{"cause": cause.Error()},
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
