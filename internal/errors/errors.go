package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation marks malformed or disallowed input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrAuthentication marks bad credentials or an invalid, absent or revoked token.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotFound marks a missing record or one the caller does not own.
	ErrNotFound = errors.New("not found")
)

var (
	// ErrInvalidUpdates is returned when an update carries a field outside the allow-list.
	ErrInvalidUpdates = Validation("invalid updates")
	// ErrUnableToLogin is returned for any failed credential check.
	ErrUnableToLogin = Authentication("unable to login")
	// ErrPleaseAuthenticate is returned for any failed session check.
	ErrPleaseAuthenticate = Authentication("please authenticate")
	// ErrEmailTaken is returned when an email already belongs to another user.
	ErrEmailTaken = Conflict("email already in use")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = NotFound("user not found")
	// ErrTaskNotFound is returned when a task does not exist or is owned by someone else.
	ErrTaskNotFound = NotFound("task not found")
	// ErrAvatarNotFound is returned when a user has no avatar.
	ErrAvatarNotFound = NotFound("avatar not found")
)

// DomainError carries a client-facing message and the kind it belongs to.
type DomainError struct {
	kind    error
	message string
}

func (e *DomainError) Error() string {
	return e.message
}

// Is reports whether target is the kind of this error.
func (e *DomainError) Is(target error) bool {
	return target == e.kind
}

// Validation creates a validation error with the given message.
func Validation(message string) error {
	return &DomainError{kind: ErrValidation, message: message}
}

// Conflict creates a conflict error with the given message.
func Conflict(message string) error {
	return &DomainError{kind: ErrConflict, message: message}
}

// Authentication creates an authentication error with the given message.
func Authentication(message string) error {
	return &DomainError{kind: ErrAuthentication, message: message}
}

// NotFound creates a not-found error with the given message.
func NotFound(message string) error {
	return &DomainError{kind: ErrNotFound, message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// Override replaces the status code a given kind maps to. Routes use it to
// express their own status policy without picking codes ad hoc.
type Override struct {
	Kind       error
	StatusCode int
}

// StatusFor builds an Override for kind.
func StatusFor(kind error, statusCode int) Override {
	return Override{Kind: kind, StatusCode: statusCode}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a
// domain error becomes a generic internal error so backend detail never leaks.
func MapErrorToHTTP(err error, overrides ...Override) *HTTPError {
	var httpErr *HTTPError
	switch {
	case errors.Is(err, ErrValidation):
		httpErr = NewHTTPError(http.StatusBadRequest, messageOf(err), "VALIDATION_ERROR")
	case errors.Is(err, ErrConflict):
		httpErr = NewHTTPError(http.StatusConflict, messageOf(err), "CONFLICT")
	case errors.Is(err, ErrAuthentication):
		httpErr = NewHTTPError(http.StatusUnauthorized, messageOf(err), "UNAUTHENTICATED")
	case errors.Is(err, ErrNotFound):
		httpErr = NewHTTPError(http.StatusNotFound, messageOf(err), "NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}

	for _, o := range overrides {
		if errors.Is(err, o.Kind) {
			httpErr.StatusCode = o.StatusCode
		}
	}
	return httpErr
}

// IsInternal reports whether err falls outside the expected domain kinds.
func IsInternal(err error) bool {
	return !errors.Is(err, ErrValidation) &&
		!errors.Is(err, ErrConflict) &&
		!errors.Is(err, ErrAuthentication) &&
		!errors.Is(err, ErrNotFound)
}

// messageOf returns the outermost domain message, dropping any wrapping context.
func messageOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.message
	}
	return err.Error()
}
