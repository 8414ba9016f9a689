package utils

import "github.com/gofiber/fiber/v2"

// APIResponse describes the common structure for API responses. Error is a
// stable machine-readable kind; Message stays human-readable and never
// exposes internals.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message"`
}

// Stable error kinds surfaced to API clients.
const (
	ErrKindValidation = "validation_error"
	ErrKindPolicy     = "policy_violation"
	ErrKindNotFound   = "not_found"
	ErrKindExternal   = "external_dependency_failure"
	ErrKindInternal   = "internal"
)

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code and kind.
func SendError(c *fiber.Ctx, status int, kind, message string) error {
	if message == "" {
		message = "error"
	}
	if kind == "" {
		kind = ErrKindInternal
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Error:   kind,
		Message: message,
	})
}
