package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when input is malformed or out of range.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCoordinates is returned when latitude or longitude is outside its range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrStatusNotSettable is returned when a status transition targets PENDING.
	ErrStatusNotSettable = errors.New("status must be CERTIFIED or DECLINED")
	// ErrNotCertified is returned when a certificate is requested for a farmer that is not certified.
	ErrNotCertified = errors.New("farmer is not certified")

	// ErrUnauthenticated is returned when no valid session token accompanies a request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidToken is returned when a session token is malformed, forged or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrForbidden is returned when an authenticated caller may not perform an operation.
	ErrForbidden = errors.New("access denied")

	// ErrFarmerNotFound is returned when a farmer record does not exist.
	ErrFarmerNotFound = errors.New("farmer not found")
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering with an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
)

// ErrorResponse is the failure form of the response envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
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
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are
// matched with errors.Is; anything unclassified becomes a 500.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, ErrInvalidCoordinates):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidCoordinates.Error(), "INVALID_COORDINATES")
	case errors.Is(err, ErrStatusNotSettable):
		return NewHTTPError(http.StatusBadRequest, ErrStatusNotSettable.Error(), "INVALID_STATUS")
	case errors.Is(err, ErrNotCertified):
		return NewHTTPError(http.StatusBadRequest, ErrNotCertified.Error(), "NOT_CERTIFIED")
	case errors.Is(err, ErrEmailTaken):
		// Duplicate registration is reported as a bad request, not 409.
		return NewHTTPError(http.StatusBadRequest, ErrEmailTaken.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrFarmerNotFound):
		return NewHTTPError(http.StatusNotFound, ErrFarmerNotFound.Error(), "FARMER_NOT_FOUND")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// Validation wraps a human-readable validation message so that it maps to 400
// while keeping the message visible to the client.
func Validation(message string) error {
	return &validationError{msg: message}
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }
