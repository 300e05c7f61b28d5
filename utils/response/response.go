package response

import (
	"github.com/gofiber/fiber/v2"
)

// Response represents a standardized API response
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Notice is a toast-style outcome shown to the user after a form submit
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CloseDialog bool   `json:"close_dialog"`
}

// ErrorPanel replaces the whole view after an unexpected failure
type ErrorPanel struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	HomeURL     string `json:"home_url"`
	RequestID   string `json:"request_id,omitempty"`
}

// Error codes shared by handlers and clients
const (
	CodeBadRequest  = "BAD_REQUEST"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "CONFLICT"
	CodeValidation  = "VALIDATION_ERROR"
	CodeFetchFailed = "FETCH_FAILED"
	CodeInternal    = "INTERNAL_ERROR"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeRateLimited = "TOO_MANY_REQUESTS"
	CodeUnexpected  = "UNEXPECTED_ERROR"
)

// Success returns a successful response
func Success(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWithMessage returns a successful response with a message
func SuccessWithMessage(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created returns a 201 Created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Accepted returns a 202 for work finished in the background
func Accepted(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusAccepted).JSON(Response{
		Success: true,
		Message: message,
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, statusCode int, message string, code string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// ErrorWithDetails returns an error response with details
func ErrorWithDetails(c *fiber.Ctx, statusCode int, message string, code string, details string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// ErrorWithData returns an error response that still carries a payload,
// e.g. the notice of a rejected subscription
func ErrorWithData(c *fiber.Ctx, statusCode int, message string, code string, data interface{}) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Data:    data,
		Error: &ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message, CodeBadRequest)
}

// NotFound returns a 404 Not Found response
func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return Error(c, fiber.StatusNotFound, message, CodeNotFound)
}

// TooManyRequests returns a 429 Too Many Requests response
func TooManyRequests(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Too many requests"
	}
	return Error(c, fiber.StatusTooManyRequests, message, CodeRateLimited)
}

// FetchFailed reports a failed catalog load. It is deliberately not an
// empty 200 so clients can tell a broken backend from an empty level.
func FetchFailed(c *fiber.Ctx, message string, reason string) error {
	if message == "" {
		message = "Failed to load data"
	}
	return ErrorWithDetails(c, fiber.StatusInternalServerError, message, CodeFetchFailed, reason)
}

// InternalServerError returns a 500 Internal Server Error response
func InternalServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return Error(c, fiber.StatusInternalServerError, message, CodeInternal)
}

// Panel renders the generic error panel with a return-to-home action
func Panel(c *fiber.Ctx, statusCode int, requestID string) error {
	return c.Status(statusCode).JSON(Response{
		Success: false,
		Data: ErrorPanel{
			Title:       "Something went wrong",
			Description: "An unexpected error occurred. Please return to the home page and try again.",
			HomeURL:     "/",
			RequestID:   requestID,
		},
		Error: &ErrorDetail{
			Code:    CodeUnexpected,
			Message: "Unexpected error",
		},
	})
}
