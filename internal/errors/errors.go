package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrDuplicateEmail is returned when registering or updating to an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotFound is returned when a user record does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned by the store when a unique constraint is violated.
	ErrConflict = errors.New("conflicting record")
	// ErrIDMismatch is returned when the path id and the body id differ.
	ErrIDMismatch = errors.New("id mismatch")
	// ErrForbidden is returned when the requester may not act on the target record.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated is returned when no verified requester is present.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrEmptyUpload is returned when an upload carries no bytes.
	ErrEmptyUpload = errors.New("no file uploaded")
	// ErrUnsupportedMedia is returned when an upload is not a recognized image.
	ErrUnsupportedMedia = errors.New("unsupported file type")
	// ErrInvalidPassword is returned when a password is empty or longer than the hasher accepts.
	ErrInvalidPassword = errors.New("password must be between 1 and 72 bytes")

	// ErrTokenExpired is returned when a session token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenBadSignature is returned when a session token signature does not verify.
	ErrTokenBadSignature = errors.New("token signature is invalid")
	// ErrTokenMalformed is returned when a session token cannot be decoded or lacks required claims.
	ErrTokenMalformed = errors.New("token is malformed")
)

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

// MapErrorToHTTP maps domain errors to HTTP errors.
// Anything unrecognised is an infrastructure failure and is reported opaquely.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusConflict, ErrDuplicateEmail.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), "NOT_FOUND")
	case errors.Is(err, ErrIDMismatch):
		return NewHTTPError(http.StatusBadRequest, ErrIDMismatch.Error(), "ID_MISMATCH")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrEmptyUpload):
		return NewHTTPError(http.StatusBadRequest, ErrEmptyUpload.Error(), "EMPTY_UPLOAD")
	case errors.Is(err, ErrUnsupportedMedia):
		return NewHTTPError(http.StatusUnsupportedMediaType, ErrUnsupportedMedia.Error(), "UNSUPPORTED_MEDIA_TYPE")
	case errors.Is(err, ErrInvalidPassword):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidPassword.Error(), "INVALID_PASSWORD")
	case errors.Is(err, ErrTokenExpired):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenExpired.Error(), "EXPIRED_TOKEN")
	case errors.Is(err, ErrTokenBadSignature):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenBadSignature.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrTokenMalformed):
		return NewHTTPError(http.StatusUnauthorized, ErrTokenMalformed.Error(), "MALFORMED_TOKEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
