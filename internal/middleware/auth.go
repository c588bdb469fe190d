package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/shopdb/internal/types"
)

// SessionValidator checks a session cookie for the given roles
type SessionValidator interface {
	ValidateSession(origin, cookie string, roles []string) (map[string]interface{}, error)
}

// AuthAdmin validates that the request has admin role authorization
func AuthAdmin(validator SessionValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authorize(c, validator, []string{"admin"}, "orders.authorization.admin")
	}
}

// authorize performs the authorization check
func authorize(c *fiber.Ctx, validator SessionValidator, roles []string, errorType string) error {
	session := c.Cookies("cookie_session")
	if session == "" {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: "Authorizer cookie \"cookie_session\" not found",
			Type:    errorType,
		}
	}

	origin := fmt.Sprintf("%s://%s", c.Protocol(), c.Hostname())
	data, err := validator.ValidateSession(origin, session, roles)
	if err != nil {
		return &types.CustomError{
			Code:    fiber.StatusForbidden,
			Message: fmt.Sprintf("Invalid session: %v", err),
			Type:    errorType,
		}
	}

	if user, ok := data["user"]; ok {
		c.Locals("user", user)
	}

	return c.Next()
}
