package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes returned by the façade.
const (
	CodeNotAuthenticated    = "NOT_AUTHENTICATED"
	CodeNotFound            = "NOT_FOUND"
	CodeRemoteFailure       = "REMOTE_FAILURE"
	CodeValidation          = "VALIDATION_ERROR"
	CodeDuplicateConstraint = "DUPLICATE_CONSTRAINT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternal            = "INTERNAL_ERROR"
	CodeRateLimited         = "RATE_LIMITED"
)

// ErrorBody is the error half of a response envelope.
type ErrorBody struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Envelope is the uniform { data, error } response shape.
type Envelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewNotAuthenticatedError() *AppError {
	return &AppError{
		Code:    CodeNotAuthenticated,
		Message: "Not authenticated",
	}
}

// NewRemoteError wraps a failure reported by the data store or object storage.
func NewRemoteError(message string, err error) *AppError {
	return &AppError{
		Code:    CodeRemoteFailure,
		Message: message,
		Err:     err,
	}
}

func NewDuplicateError(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeDuplicateConstraint,
		Message: fmt.Sprintf("%s already exists", resource),
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrorCode returns the AppError code carried by err, or "" when err is not an AppError.
func ErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given AppError code.
func HasCode(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

// StatusFor maps an error code onto an HTTP status.
func StatusFor(err error) int {
	switch ErrorCode(err) {
	case CodeNotAuthenticated:
		return fiber.StatusUnauthorized
	case CodeUnauthorized:
		return fiber.StatusForbidden
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeDuplicateConstraint:
		return fiber.StatusConflict
	case CodeRemoteFailure:
		return fiber.StatusBadGateway
	case CodeRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes an error envelope with a status derived from the error code.
func RespondWithError(c *fiber.Ctx, err error) error {
	body := &ErrorBody{Message: err.Error()}

	var appErr *AppError
	if errors.As(err, &appErr) {
		body = &ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		}
		if appErr.Err != nil && appErr.Code != CodeInternal {
			body.Details = appErr.Err.Error()
		}
	}

	return c.Status(StatusFor(err)).JSON(Envelope{Error: body})
}

// RespondWithData writes a success envelope.
func RespondWithData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(Envelope{Data: data})
}
