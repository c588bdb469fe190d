package services

import (
	"strings"

	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var maxRating = decimal.NewFromInt(5)

// ProductInput creates a product
type ProductInput struct {
	Name          string           `json:"name" validate:"required,min=1,max=255"`
	Description   *string          `json:"description"`
	ImageURL      *string          `json:"image_url" validate:"omitempty,max=1024"`
	Price         decimal.Decimal  `json:"price"`
	SoldCount     int              `json:"sold_count" validate:"min=0"`
	Rating        *decimal.Decimal `json:"rating"`
	ReviewCount   int              `json:"review_count" validate:"min=0"`
	DeliveryInfo  *string          `json:"delivery_info"`
	SellerInfo    *string          `json:"seller_info"`
	StockQuantity int              `json:"stock_quantity" validate:"min=0"`
	IsActive      *bool            `json:"is_active"`
	CategoryIDs   types.FlexIDs    `json:"category_ids"`
}

// ProductUpdate changes the supplied product fields. A non-nil CategoryIDs replaces the links.
type ProductUpdate struct {
	Name          *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description   *string          `json:"description"`
	ImageURL      *string          `json:"image_url" validate:"omitempty,max=1024"`
	Price         *decimal.Decimal `json:"price"`
	SoldCount     *int             `json:"sold_count" validate:"omitempty,min=0"`
	Rating        *decimal.Decimal `json:"rating"`
	ReviewCount   *int             `json:"review_count" validate:"omitempty,min=0"`
	DeliveryInfo  *string          `json:"delivery_info"`
	SellerInfo    *string          `json:"seller_info"`
	StockQuantity *int             `json:"stock_quantity" validate:"omitempty,min=0"`
	IsActive      *bool            `json:"is_active"`
	CategoryIDs   types.FlexIDs    `json:"category_ids"`
}

// ProductFilter narrows a product listing
type ProductFilter struct {
	CategoryID *uint
	Query      string
	Page       Page
}

// ProductView is a product with its active categories
type ProductView struct {
	models.Product
	Categories []models.Category `json:"categories"`
}

// CreateProduct inserts a product and links it to existing categories
func CreateProduct(db *gorm.DB, in ProductInput) (*ProductView, error) {
	if err := checkMoney(in.Price, in.Rating); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		Price:         types.NewMoney(in.Price),
		SoldCount:     in.SoldCount,
		Rating:        decimal.Zero,
		ReviewCount:   in.ReviewCount,
		DeliveryInfo:  in.DeliveryInfo,
		SellerInfo:    in.SellerInfo,
		StockQuantity: in.StockQuantity,
		IsActive:      true,
	}
	if in.Rating != nil {
		product.Rating = in.Rating.Round(1)
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}

	var view *ProductView
	err := db.Transaction(func(tx *gorm.DB) error {
		categoryIDs := in.CategoryIDs.Uints()
		if err := checkCategoriesExist(tx, categoryIDs); err != nil {
			return err
		}
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if err := linkCategories(tx, product.ID, categoryIDs); err != nil {
			return err
		}

		var err error
		view, err = productView(tx, product)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// GetProduct loads a product by id with its categories
func GetProduct(db *gorm.DB, id uint) (*ProductView, error) {
	var product models.Product
	if err := firstOr(tagged(db, "get_product").Where("id = ?", id), &product, "Product not found"); err != nil {
		return nil, err
	}
	return productView(db, product)
}

// ListProducts returns a page of active products, optionally in one category and matching a search term
func ListProducts(db *gorm.DB, filter ProductFilter) ([]ProductView, error) {
	products := []models.Product{}

	query := tagged(db, "list_products").
		Model(&models.Product{}).
		Where("products.is_active = ?", true)

	if filter.CategoryID != nil {
		query = query.
			Joins("JOIN product_categories ON product_categories.product_id = products.id").
			Where("product_categories.category_id = ?", *filter.CategoryID)
	}

	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("(LOWER(products.name) LIKE ? OR LOWER(COALESCE(products.description, '')) LIKE ?)", like, like)
	}

	if err := filter.Page.apply(query.Order("products.id")).Find(&products).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	categories, err := ProductCategoriesFor(db, ids)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{Product: p, Categories: categories[p.ID]}
		if views[i].Categories == nil {
			views[i].Categories = []models.Category{}
		}
	}
	return views, nil
}

// ListProductsByCategory lists active products in an existing category
func ListProductsByCategory(db *gorm.DB, categoryID uint, page Page) ([]ProductView, error) {
	if _, err := GetCategory(db, categoryID); err != nil {
		return nil, err
	}
	return ListProducts(db, ProductFilter{CategoryID: &categoryID, Page: page})
}

// ProductCategoriesFor loads the active categories of many products with a single join
func ProductCategoriesFor(db *gorm.DB, productIDs []uint) (map[uint][]models.Category, error) {
	result := make(map[uint][]models.Category, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	type productCategoryRow struct {
		ProductID uint
		models.Category
	}
	var rows []productCategoryRow

	err := tagged(db, "product_categories").
		Table("product_categories").
		Select("product_categories.product_id, categories.*").
		Joins("JOIN categories ON categories.id = product_categories.category_id").
		Where("product_categories.product_id IN ? AND categories.is_active = ?", productIDs, true).
		Order("categories.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ProductID] = append(result[row.ProductID], row.Category)
	}
	return result, nil
}

// UpdateProduct applies the supplied fields and replaces category links when given
func UpdateProduct(db *gorm.DB, id uint, in ProductUpdate) (*ProductView, error) {
	var price decimal.Decimal
	if in.Price != nil {
		price = *in.Price
	}
	if err := checkMoney(price, in.Rating); err != nil {
		return nil, err
	}

	var view *ProductView
	err := db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := firstOr(tx.Where("id = ?", id), &product, "Product not found"); err != nil {
			return err
		}

		applyProductUpdate(&product, in)
		if err := tx.Save(&product).Error; err != nil {
			return err
		}

		if in.CategoryIDs != nil {
			categoryIDs := in.CategoryIDs.Uints()
			if err := checkCategoriesExist(tx, categoryIDs); err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductCategory{}).Error; err != nil {
				return err
			}
			if err := linkCategories(tx, product.ID, categoryIDs); err != nil {
				return err
			}
		}

		var err error
		view, err = productView(tx, product)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// DeactivateProduct hides a product from listings
func DeactivateProduct(db *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := firstOr(tx.Where("id = ?", id), &product, "Product not found"); err != nil {
			return err
		}
		product.IsActive = false
		return tx.Model(&product).Update("is_active", false).Error
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func applyProductUpdate(product *models.Product, in ProductUpdate) {
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = in.Description
	}
	if in.ImageURL != nil {
		product.ImageURL = in.ImageURL
	}
	if in.Price != nil {
		product.Price = types.NewMoney(*in.Price)
	}
	if in.SoldCount != nil {
		product.SoldCount = *in.SoldCount
	}
	if in.Rating != nil {
		product.Rating = in.Rating.Round(1)
	}
	if in.ReviewCount != nil {
		product.ReviewCount = *in.ReviewCount
	}
	if in.DeliveryInfo != nil {
		product.DeliveryInfo = in.DeliveryInfo
	}
	if in.SellerInfo != nil {
		product.SellerInfo = in.SellerInfo
	}
	if in.StockQuantity != nil {
		product.StockQuantity = *in.StockQuantity
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
}

func productView(tx *gorm.DB, product models.Product) (*ProductView, error) {
	categories, err := ProductCategoriesFor(tx, []uint{product.ID})
	if err != nil {
		return nil, err
	}
	view := &ProductView{Product: product, Categories: categories[product.ID]}
	if view.Categories == nil {
		view.Categories = []models.Category{}
	}
	return view, nil
}

func checkMoney(price decimal.Decimal, rating *decimal.Decimal) error {
	if price.IsNegative() {
		return types.BadRequest("products", "price must not be negative")
	}
	if rating != nil && (rating.IsNegative() || rating.GreaterThan(maxRating)) {
		return types.BadRequest("products", "rating must be between 0 and 5")
	}
	return nil
}

func checkCategoriesExist(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	if err := tx.Model(&models.Category{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	if len(found) == len(ids) {
		return nil
	}

	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return types.BadRequest("products", "Category %d not found", id)
		}
	}
	return nil
}

func linkCategories(tx *gorm.DB, productID uint, categoryIDs []uint) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]models.ProductCategory, len(categoryIDs))
	for i, categoryID := range categoryIDs {
		links[i] = models.ProductCategory{ProductID: productID, CategoryID: categoryID}
	}
	return tx.Create(&links).Error
}
