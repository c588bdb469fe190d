package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/localnerve/shopdb/data"
	"github.com/localnerve/shopdb/internal/config"
	"github.com/localnerve/shopdb/internal/database"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

func main() {
	cmd := &cli.Command{
		Name:  "shopctl",
		Usage: "Administer the shopdb database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"f"},
				Usage:   "path to the .env file",
				Sources: cli.EnvVars("ENV_FILE"),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			envFile := c.String("env-file")
			if envFile == "" {
				return ctx, nil
			}
			if err := godotenv.Load(envFile); err != nil {
				return ctx, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			return ctx, os.Setenv("ENV_FILE", envFile)
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Create or update the database schema",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withDB(func(db *gorm.DB) error {
						if err := database.AutoMigrate(db); err != nil {
							return err
						}
						log.Println("Migration complete")
						return nil
					})
				},
			},
			{
				Name:      "seed",
				Usage:     "Load a starter catalog of categories and products",
				ArgsUsage: "[catalog.json]",
				Action: func(ctx context.Context, c *cli.Command) error {
					raw := data.SeedCatalog
					if path := c.Args().First(); path != "" {
						var err error
						if raw, err = os.ReadFile(path); err != nil {
							return fmt.Errorf("failed to read %s: %w", path, err)
						}
					}

					return withDB(func(db *gorm.DB) error {
						if err := database.AutoMigrate(db); err != nil {
							return err
						}
						result, err := services.SeedCatalogJSON(db.WithContext(ctx), raw)
						if err != nil {
							return err
						}
						log.Printf("Seed complete: %d categories, %d products added", result.Categories, result.Products)
						return nil
					})
				},
			},
			{
				Name:      "export-products",
				Usage:     "Write the active catalog to an xlsx workbook",
				ArgsUsage: "<products.xlsx>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "currency",
						Value: "$",
						Usage: "currency symbol for prices",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					path := c.Args().First()
					if path == "" {
						return cli.Exit("output path is required", 2)
					}
					out, err := os.Create(path)
					if err != nil {
						return err
					}
					defer out.Close()

					return withDB(func(db *gorm.DB) error {
						count, err := services.ExportProducts(db.WithContext(ctx), out, c.String("currency"))
						if err != nil {
							return err
						}
						log.Printf("Exported %d products to %s", count, path)
						return nil
					})
				},
			},
			{
				Name:      "hash-password",
				Usage:     "Print the stored hash for a password with the configured PASSWORD_SALT",
				ArgsUsage: "<password>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "salt",
						Usage: "salt to use instead of PASSWORD_SALT",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					password := c.Args().First()
					if password == "" {
						return cli.Exit("password argument is required", 2)
					}
					salt := c.String("salt")
					if salt == "" {
						salt = os.Getenv("PASSWORD_SALT")
					}
					if salt == "" {
						salt = config.DefaultPasswordSalt
					}
					fmt.Println(services.HashPassword(password, salt))
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func withDB(fn func(db *gorm.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return fn(db)
}
