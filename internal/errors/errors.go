package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrBugNotFound is returned when no bug exists with the given ID.
	ErrBugNotFound = errors.New("bug not found")
	// ErrPostNotFound is returned when no post exists with the given ID.
	ErrPostNotFound = errors.New("post not found")
	// ErrInvalidBugID is returned when a bug identifier is malformed.
	ErrInvalidBugID = errors.New("invalid bug ID")
	// ErrInvalidPostID is returned when a post identifier is malformed.
	ErrInvalidPostID = errors.New("invalid post ID")
	// ErrNotBugReporter is returned when a caller mutates a bug they do not own.
	ErrNotBugReporter = errors.New("not the bug reporter")
	// ErrNotPostAuthor is returned when a caller mutates a post they do not own.
	ErrNotPostAuthor = errors.New("not the post author")
	// ErrEmailTaken is returned when a registration reuses an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken is returned when a registration reuses an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ValidationError aggregates field-level validation messages into a single
// client-facing message.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// FromValidator converts validator failures into a ValidationError with
// readable per-field messages. Non-validator errors pass through unchanged.
func FromValidator(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return &ValidationError{Messages: messages}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
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

// MapErrorToHTTP maps domain errors to HTTP errors. Handlers never inspect
// store errors directly; everything funnels through this switch.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusBadRequest, validationErr.Error(), "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrBugNotFound):
		return NewHTTPError(http.StatusNotFound, "Bug not found", "BUG_NOT_FOUND")
	case errors.Is(err, ErrPostNotFound):
		return NewHTTPError(http.StatusNotFound, "Post not found", "POST_NOT_FOUND")
	case errors.Is(err, ErrInvalidBugID):
		return NewHTTPError(http.StatusBadRequest, "Invalid bug ID", "INVALID_ID")
	case errors.Is(err, ErrInvalidPostID):
		return NewHTTPError(http.StatusBadRequest, "Invalid post ID", "INVALID_ID")
	case errors.Is(err, ErrNotBugReporter):
		return NewHTTPError(http.StatusForbidden, "Access denied. You can only modify your own bugs.", "FORBIDDEN")
	case errors.Is(err, ErrNotPostAuthor):
		return NewHTTPError(http.StatusForbidden, "Access denied. You can only modify your own posts.", "FORBIDDEN")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusBadRequest, "Email already registered", "EMAIL_TAKEN")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusBadRequest, "Username already taken", "USERNAME_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
	}
}
