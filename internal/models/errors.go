package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the API.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeNotificationFailed = "NOTIFICATION_DELIVERY_FAILED"
	CodeInternal           = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
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

// NewStoreUnavailableError wraps a persistence-layer failure. Operations that
// return it must leave no partial state behind.
func NewStoreUnavailableError(op string, err error) *AppError {
	return &AppError{
		Code:    CodeStoreUnavailable,
		Message: fmt.Sprintf("store unavailable during %s", op),
		Err:     err,
	}
}

// NewNotificationFailedError wraps a mail-transport failure. The post the
// notification was about has already been committed by the time this is
// raised, so it never unwinds the write.
func NewNotificationFailedError(err error) *AppError {
	return &AppError{
		Code:    CodeNotificationFailed,
		Message: "notification delivery failed",
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

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
