package middleware_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/localnerve/shopdb/internal/middleware"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/testutil"
	"github.com/localnerve/shopdb/internal/types"
	"github.com/localnerve/shopdb/internal/utils"
	"gorm.io/gorm"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(fmt.Sprint(c.Locals("requestid")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	generated := resp.Header.Get(middleware.RequestIDHeader)
	if _, err := uuid.Parse(generated); err != nil {
		t.Errorf("Expected a generated uuid, got %q", generated)
	}

	incoming := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(middleware.RequestIDHeader, incoming)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if got := resp.Header.Get(middleware.RequestIDHeader); got != incoming {
		t.Errorf("Expected the incoming id %s, got %s", incoming, got)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "not-a-uuid")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	if got := resp.Header.Get(middleware.RequestIDHeader); got == "not-a-uuid" {
		t.Error("Expected a malformed id to be replaced")
	}
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Get("/custom", func(c *fiber.Ctx) error {
		return types.BadRequest("test", "bad input")
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "conflict")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("database exploded")
	})
	db := testutil.SetupTestDB(t)
	app.Get("/missing", func(c *fiber.Ctx) error {
		_, err := services.GetOrder(db, 99)
		return err
	})
	app.Get("/duplicate", func(c *fiber.Ctx) error {
		return fmt.Errorf("insert category: %w", gorm.ErrDuplicatedKey)
	})

	tests := []struct {
		path   string
		status int
		detail string
	}{
		{"/custom", 400, "bad input"},
		{"/fiber", 409, "conflict"},
		{"/plain", 500, "Internal server error"},
		{"/missing", 404, "Order not found"},
		{"/duplicate", 400, middleware.DuplicateMessage},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			if err != nil {
				t.Fatalf("Failed to execute request: %v", err)
			}
			testutil.AssertStatus(t, resp, tt.status)
			var body utils.ErrorResponseStruct
			testutil.ParseJSON(t, resp, &body)
			if body.Detail != tt.detail {
				t.Errorf("Expected detail %q, got %q", tt.detail, body.Detail)
			}
		})
	}
}

type stubValidator struct {
	err    error
	cookie string
	roles  []string
}

func (s *stubValidator) ValidateSession(_, cookie string, roles []string) (map[string]interface{}, error) {
	s.cookie = cookie
	s.roles = roles
	if s.err != nil {
		return nil, s.err
	}
	return map[string]interface{}{"is_valid": true, "user": "admin@example.com"}, nil
}

func TestAuthAdmin(t *testing.T) {
	setup := func(v middleware.SessionValidator) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
		app.Get("/admin", middleware.AuthAdmin(v), func(c *fiber.Ctx) error {
			return c.SendString(fmt.Sprint(c.Locals("user")))
		})
		return app
	}

	t.Run("missing cookie", func(t *testing.T) {
		resp, err := setup(&stubValidator{}).Test(httptest.NewRequest("GET", "/admin", nil))
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		testutil.AssertStatus(t, resp, 403)
	})

	t.Run("rejected session", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "cookie_session", Value: "expired"})
		resp, err := setup(&stubValidator{err: errors.New("expired")}).Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		testutil.AssertStatus(t, resp, 403)
	})

	t.Run("admin session", func(t *testing.T) {
		stub := &stubValidator{}
		req := httptest.NewRequest("GET", "/admin", nil)
		req.AddCookie(&http.Cookie{Name: "cookie_session", Value: "good"})
		resp, err := setup(stub).Test(req)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
		testutil.AssertStatus(t, resp, 200)
		if stub.cookie != "good" {
			t.Errorf("Expected the cookie to reach the validator, got %q", stub.cookie)
		}
		if len(stub.roles) != 1 || stub.roles[0] != "admin" {
			t.Errorf("Expected the admin role, got %v", stub.roles)
		}
	})
}
