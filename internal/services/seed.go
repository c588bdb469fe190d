package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedCategory is a catalog file category
type SeedCategory struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// SeedProduct is a catalog file product; categories are referenced by name
type SeedProduct struct {
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	ImageURL      *string          `json:"image_url"`
	Price         decimal.Decimal  `json:"price"`
	Rating        *decimal.Decimal `json:"rating"`
	ReviewCount   int              `json:"review_count"`
	DeliveryInfo  *string          `json:"delivery_info"`
	SellerInfo    *string          `json:"seller_info"`
	StockQuantity int              `json:"stock_quantity"`
	Categories    []string         `json:"categories"`
}

// SeedCatalog is the catalog file layout
type SeedCatalog struct {
	Categories []SeedCategory `json:"categories"`
	Products   []SeedProduct  `json:"products"`
}

// SeedResult counts the rows a seed run inserted
type SeedResult struct {
	Categories int
	Products   int
}

// SeedCatalogJSON loads a catalog file. Categories and products whose names already exist are skipped,
// so seeding twice changes nothing.
func SeedCatalogJSON(db *gorm.DB, raw []byte) (SeedResult, error) {
	var result SeedResult

	var catalog SeedCatalog
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return result, fmt.Errorf("invalid catalog: %w", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		categoryIDs := make(map[string]uint, len(catalog.Categories))

		for _, seed := range catalog.Categories {
			var category models.Category
			err := tx.Where("name = ?", seed.Name).First(&category).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				category = models.Category{Name: seed.Name, Description: seed.Description, IsActive: true}
				err = tx.Create(&category).Error
				result.Categories++
			}
			if err != nil {
				return fmt.Errorf("category %s: %w", seed.Name, err)
			}
			categoryIDs[seed.Name] = category.ID
		}

		for _, seed := range catalog.Products {
			var count int64
			if err := tx.Model(&models.Product{}).Where("name = ?", seed.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			ids := make(types.FlexIDs, 0, len(seed.Categories))
			for _, name := range seed.Categories {
				id, ok := categoryIDs[name]
				if !ok {
					return fmt.Errorf("product %s: unknown category %s", seed.Name, name)
				}
				ids = append(ids, types.FlexID(id))
			}

			_, err := CreateProduct(tx, ProductInput{
				Name:          seed.Name,
				Description:   seed.Description,
				ImageURL:      seed.ImageURL,
				Price:         seed.Price,
				Rating:        seed.Rating,
				ReviewCount:   seed.ReviewCount,
				DeliveryInfo:  seed.DeliveryInfo,
				SellerInfo:    seed.SellerInfo,
				StockQuantity: seed.StockQuantity,
				CategoryIDs:   ids,
			})
			if err != nil {
				return fmt.Errorf("product %s: %w", seed.Name, err)
			}
			result.Products++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	return result, nil
}
