package database_test

import (
	"context"
	"testing"

	"github.com/localnerve/shopdb/internal/config"
	"github.com/localnerve/shopdb/internal/database"
	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/testutil"
	"github.com/localnerve/shopdb/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		dbType  string
		name    string
		wantErr bool
	}{
		{"mysql", "mysql", false},
		{"mariadb", "mysql", false},
		{"postgres", "postgres", false},
		{"sqlite", "sqlite", false},
		{"sqlite-pure", "sqlite", false},
		{"sqlserver", "sqlserver", false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			cfg := &config.Config{
				DBType:     tt.dbType,
				DBHost:     "localhost",
				DBPort:     "3306",
				DBDatabase: "shop",
				DBUser:     "shop",
			}
			dialector, err := database.Dialector(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Dialector() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && dialector.Name() != tt.name {
				t.Errorf("Expected dialect %s, got %s", tt.name, dialector.Name())
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	if database.LogLevel("silent") != logger.Silent || database.LogLevel("info") != logger.Info || database.LogLevel("bogus") != logger.Warn {
		t.Error("Unexpected log level mapping")
	}
}

func TestConnectSQLiteFile(t *testing.T) {
	cfg := &config.Config{
		DBType:            "sqlite-pure",
		DBDatabase:        t.TempDir() + "/shop.db",
		DBConnectionLimit: 5,
		DBLogLevel:        "silent",
	}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer database.Close(db)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying SQL DB: %v", err)
	}
	if open := sqlDB.Stats().MaxOpenConnections; open != 1 {
		t.Errorf("Expected a single sqlite connection, got %d", open)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	for _, model := range models.All() {
		if !db.Migrator().HasTable(model) {
			t.Errorf("Expected table for %T", model)
		}
	}
}

// TestWithDatabaseContainer runs the order flow against the database image from the environment
func TestWithDatabaseContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	containers, err := testutil.StartDatabase(t)
	if err != nil {
		t.Fatalf("Failed to start database container: %v", err)
	}
	defer containers.Terminate(t)

	db, err := database.Connect(containers.DBConfig)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Run("HealthCheck", func(t *testing.T) {
		result := services.HealthCheck(context.Background(), containers.DBConfig, db)
		if result.Status != "healthy" {
			t.Errorf("Expected healthy, got %+v", result)
		}
	})

	t.Run("CheckoutFlow", func(t *testing.T) {
		testCheckoutFlow(t, db)
	})

	t.Run("DuplicateCategory", func(t *testing.T) {
		if _, err := services.CreateCategory(db, services.CategoryInput{Name: "Containers"}); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}
		if _, err := services.CreateCategory(db, services.CategoryInput{Name: "Containers"}); err == nil {
			t.Error("Expected a duplicate category to fail")
		}
	})
}

func testCheckoutFlow(t *testing.T, db *gorm.DB) {
	testutil.CreateTestUser(t, db, "container-user")
	product := testutil.CreateTestProduct(t, db, "Container Product", "12.50")

	if _, err := services.AddItemToCart(db, "container-user", product.ID, 2); err != nil {
		t.Fatalf("AddItemToCart failed: %v", err)
	}
	cart, err := services.AddItemToCart(db, "container-user", product.ID, 1)
	if err != nil {
		t.Fatalf("AddItemToCart failed: %v", err)
	}
	if !cart.TotalAmount.Equal(decimal.RequireFromString("37.50")) {
		t.Errorf("Expected total 37.5, got %s", cart.TotalAmount)
	}

	address, err := services.CreateShippingAddress(db, "container-user", services.AddressInput{Address: "1 Dock St"})
	if err != nil {
		t.Fatalf("CreateShippingAddress failed: %v", err)
	}
	addressID := types.FlexID(address.ID)
	if _, err := services.UpdateOrder(db, cart.ID, services.OrderUpdate{ShippingAddressID: &addressID}); err != nil {
		t.Fatalf("UpdateOrder failed: %v", err)
	}
	placed, err := services.UpdateOrderStatus(db, cart.ID, models.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}
	if placed.ShippingAddress == nil || *placed.ShippingAddress != "1 Dock St" {
		t.Errorf("Expected the dock address on the order, got %v", placed.ShippingAddress)
	}
}
