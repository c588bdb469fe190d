//go:build ignore

// Prints the sqlite schema that AutoMigrate creates for the shopdb models.
//
//	go run tools/inspect_schema.go
package main

import (
	"fmt"
	"log"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/localnerve/shopdb/internal/database"
	"gorm.io/gorm/logger"
)

func main() {
	db, err := database.Open(puresqlite.Open(":memory:"), logger.Silent)
	if err != nil {
		log.Fatal(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw("SELECT sql FROM sqlite_master WHERE name = ?", table).Scan(&schema)
		fmt.Println(schema)

		var indexes []string
		db.Raw("SELECT sql FROM sqlite_master WHERE type='index' AND tbl_name = ? AND sql IS NOT NULL", table).Scan(&indexes)
		for _, index := range indexes {
			fmt.Println(index)
		}
	}
}
