package rest

import "github.com/gofiber/fiber/v2"

// FieldError points a validation failure at the input field that caused it.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// envelope is the response shape shared by every endpoint.
type envelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func respondOK(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(envelope{Success: true, Message: message, Data: data})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(envelope{Success: false, Message: message})
}

func respondFieldErrors(c *fiber.Ctx, errs []FieldError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(envelope{
		Success: false,
		Message: "Validation failed",
		Errors:  errs,
	})
}
