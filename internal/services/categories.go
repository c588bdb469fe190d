package services

import (
	"errors"
	"strings"

	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/types"
	"gorm.io/gorm"
)

// CategoryInput creates a category
type CategoryInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CategoryUpdate changes the supplied category fields
type CategoryUpdate struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CreateCategory inserts a category with a unique name
func CreateCategory(db *gorm.DB, in CategoryInput) (*models.Category, error) {
	category := models.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		IsActive:    true,
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := checkCategoryName(tx, category.Name, 0); err != nil {
			return err
		}
		if err := tx.Create(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return duplicateCategory(category.Name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}

// ListCategories returns a page of active categories
func ListCategories(db *gorm.DB, page Page) ([]models.Category, error) {
	categories := []models.Category{}
	err := page.apply(tagged(db, "list_categories")).
		Where("is_active = ?", true).
		Order("id").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory loads a category by id, active or not
func GetCategory(db *gorm.DB, id uint) (*models.Category, error) {
	var category models.Category
	if err := firstOr(db.Where("id = ?", id), &category, "Category not found"); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory applies the supplied fields
func UpdateCategory(db *gorm.DB, id uint, in CategoryUpdate) (*models.Category, error) {
	var category models.Category

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := firstOr(tx.Where("id = ?", id), &category, "Category not found"); err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if err := checkCategoryName(tx, name, id); err != nil {
				return err
			}
			category.Name = name
		}
		if in.Description != nil {
			category.Description = in.Description
		}
		if in.IsActive != nil {
			category.IsActive = *in.IsActive
		}
		return tx.Save(&category).Error
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}

// DeactivateCategory hides a category from listings. Product links are kept.
func DeactivateCategory(db *gorm.DB, id uint) (*models.Category, error) {
	var category models.Category

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := firstOr(tx.Where("id = ?", id), &category, "Category not found"); err != nil {
			return err
		}
		category.IsActive = false
		return tx.Model(&category).Update("is_active", false).Error
	})
	if err != nil {
		return nil, err
	}

	return &category, nil
}

func checkCategoryName(tx *gorm.DB, name string, exceptID uint) error {
	if name == "" {
		return types.BadRequest("categories", "Category name must not be empty")
	}
	var count int64
	query := tx.Model(&models.Category{}).Where("name = ?", name)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return duplicateCategory(name)
	}
	return nil
}

func duplicateCategory(name string) error {
	return types.BadRequest("categories", "Category with name '%s' already exists", name)
}
