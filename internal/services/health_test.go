package services_test

import (
	"context"
	"testing"

	"github.com/localnerve/shopdb/internal/config"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/testutil"
)

func TestHealthCheck(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := &config.Config{DBType: "sqlite-pure", DBDatabase: ":memory:"}

	result := services.HealthCheck(context.Background(), cfg, db)
	if result.Status != "healthy" {
		t.Errorf("Expected healthy, got %s (%s)", result.Status, result.ErrorMessage)
	}
	if result.Database != "ok" {
		t.Errorf("Expected database ok, got %s", result.Database)
	}
	if result.Authorizer != "disabled" {
		t.Errorf("Expected authorizer disabled, got %s", result.Authorizer)
	}
}

func TestHealthCheckUnreachableAuthorizer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := &config.Config{
		DBType:        "sqlite-pure",
		DBDatabase:    ":memory:",
		AuthzURL:      "http://127.0.0.1:1",
		AuthzClientID: "client",
	}

	result := services.HealthCheck(context.Background(), cfg, db)
	if result.Authorizer != "unreachable" {
		t.Errorf("Expected authorizer unreachable, got %s", result.Authorizer)
	}
	if result.Status != "unhealthy" {
		t.Errorf("Expected unhealthy, got %s", result.Status)
	}
	if result.Database != "ok" {
		t.Errorf("Expected database ok, got %s", result.Database)
	}
}
