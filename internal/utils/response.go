package utils

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Detail string `json:"detail"`
}

// MessageResponseStruct defines the schema for acknowledgement responses
type MessageResponseStruct struct {
	Message string `json:"message"`
}

// ErrorResponse sends status with a {"detail": message} body
func ErrorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponseStruct{Detail: message})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, fiber.StatusNotFound, message)
}
