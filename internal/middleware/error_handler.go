package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/types"
	"github.com/localnerve/shopdb/internal/utils"
	"gorm.io/gorm"
)

// DuplicateMessage answers a write that hit a unique constraint
const DuplicateMessage = "A record with the same unique value already exists"

// ErrorStatus maps a known error to its response status and detail.
// ok is false for anything else, which the caller reports as a 500.
func ErrorStatus(err error) (code int, message string, ok bool) {
	var fiberErr *fiber.Error
	var customErr *types.CustomError
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound, err.Error(), true
	case errors.As(err, &customErr):
		return customErr.Code, customErr.Message, true
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fiber.StatusBadRequest, DuplicateMessage, true
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message, true
	}
	return fiber.StatusInternalServerError, "", false
}

// ErrorHandler renders errors that escape handlers and middleware as {"detail": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, message, ok := ErrorStatus(err)
	if !ok {
		log.Printf("Unhandled error [request %v] %s %s: %v", c.Locals("requestid"), c.Method(), c.OriginalURL(), err)
		message = "Internal server error"
	}
	return utils.ErrorResponse(c, code, message)
}

// NotFound answers routes that matched nothing
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "Not Found")
}
