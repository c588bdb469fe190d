package models

import (
	"time"

	"github.com/localnerve/shopdb/internal/types"
	"github.com/shopspring/decimal"
)

// Category groups products; deactivated rather than deleted
type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a catalog item. Price is exact decimal money.
type Product struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"size:255;not null;index" json:"name"`
	Description   *string         `gorm:"type:text" json:"description"`
	ImageURL      *string         `gorm:"size:1024" json:"image_url"`
	Price         types.Money     `gorm:"type:decimal(12,2);not null" json:"price"`
	SoldCount     int             `gorm:"not null" json:"sold_count"`
	Rating        decimal.Decimal `gorm:"type:decimal(3,1);not null" json:"rating"`
	ReviewCount   int             `gorm:"not null" json:"review_count"`
	DeliveryInfo  *string         `gorm:"type:text" json:"delivery_info"`
	SellerInfo    *string         `gorm:"type:text" json:"seller_info"`
	StockQuantity int             `gorm:"not null" json:"stock_quantity"`
	IsActive      bool            `gorm:"not null;index" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductCategory links a product to a category
type ProductCategory struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_product_category" json:"product_id"`
	CategoryID uint      `gorm:"not null;uniqueIndex:idx_product_category;index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

func (Product) TableName() string {
	return "products"
}

func (ProductCategory) TableName() string {
	return "product_categories"
}
