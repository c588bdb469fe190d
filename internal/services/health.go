package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/localnerve/shopdb/internal/config"
	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

func (r *HealthCheckResult) fail(component, message string) {
	r.Status = "unhealthy"
	if r.ErrorMessage == "" {
		r.ErrorMessage = message
	} else {
		r.ErrorMessage += "; " + message
	}
	log.Printf("Health check failed - %s: %s", component, message)
}

// HealthCheck pings the database, confirms the schema is migrated and pings the authorizer when one is configured
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:     "healthy",
		Authorizer: "disabled",
		Details:    make(map[string]string),
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.fail("database connection", fmt.Sprintf("Database connection error: %v", err))
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.Details["database_ping_error"] = err.Error()
		result.fail("database ping", fmt.Sprintf("Database ping failed: %v", err))
	} else if !db.WithContext(ctx).Migrator().HasTable(&models.Order{}) {
		result.Database = "unmigrated"
		result.fail("database schema", "Database schema is missing, run migrations")
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	if cfg.AuthzEnabled() {
		if err := utils.PingAuthorizer(cfg.AuthzURL); err != nil {
			result.Authorizer = "unreachable"
			result.Details["authorizer_error"] = err.Error()
			result.fail("authorizer ping", fmt.Sprintf("Authorizer ping failed: %v", err))
		} else {
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
		}
	}

	return result
}
