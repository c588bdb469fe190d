// catalog.go
//
// A shopping application data service for catalog, cart and order management
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of shopdb.
// shopdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// shopdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with shopdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/utils"
	"gorm.io/gorm"
)

// CatalogHandler handles category and product routes
type CatalogHandler struct {
	DB     *gorm.DB
	Paging Paging
}

// CreateCategory handles POST /categories/
// @Summary Create a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param category body services.CategoryInput true "Category"
// @Success 200 {object} models.Category
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /categories/ [post]
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var in services.CategoryInput
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err, "createCategory")
	}

	category, err := services.CreateCategory(h.DB.WithContext(c.UserContext()), in)
	if err != nil {
		return handleError(c, err, "createCategory")
	}
	return c.JSON(category)
}

// ListCategories handles GET /categories/
// @Summary List active categories
// @Tags Categories
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} models.Category
// @Router /categories/ [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	page, err := h.Paging.parsePage(c)
	if err != nil {
		return handleError(c, err, "listCategories")
	}

	categories, err := services.ListCategories(h.DB.WithContext(c.UserContext()), page)
	if err != nil {
		return handleError(c, err, "listCategories")
	}
	return c.JSON(categories)
}

// GetCategory handles GET /categories/:id
// @Summary Get a category
// @Tags Categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Category
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /categories/{id} [get]
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "getCategory")
	}

	category, err := services.GetCategory(h.DB.WithContext(c.UserContext()), id)
	if err != nil {
		return handleError(c, err, "getCategory")
	}
	return c.JSON(category)
}

// UpdateCategory handles PUT /categories/:id
// @Summary Update a category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body services.CategoryUpdate true "Fields to change"
// @Success 200 {object} models.Category
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "updateCategory")
	}
	var in services.CategoryUpdate
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err, "updateCategory")
	}

	category, err := services.UpdateCategory(h.DB.WithContext(c.UserContext()), id, in)
	if err != nil {
		return handleError(c, err, "updateCategory")
	}
	return c.JSON(category)
}

// DeleteCategory handles DELETE /categories/:id
// @Summary Deactivate a category
// @Tags Categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "deleteCategory")
	}

	if _, err := services.DeactivateCategory(h.DB.WithContext(c.UserContext()), id); err != nil {
		return handleError(c, err, "deleteCategory")
	}
	return c.JSON(utils.MessageResponseStruct{Message: "Category deleted successfully"})
}

// CreateProduct handles POST /products/
// @Summary Create a product
// @Description Creates a product linked to existing categories
// @Tags Products
// @Accept json
// @Produce json
// @Param product body services.ProductInput true "Product"
// @Success 200 {object} services.ProductView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /products/ [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err, "createProduct")
	}

	product, err := services.CreateProduct(h.DB.WithContext(c.UserContext()), in)
	if err != nil {
		return handleError(c, err, "createProduct")
	}
	return c.JSON(product)
}

// ListProducts handles GET /products/
// @Summary List active products
// @Tags Products
// @Produce json
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows"
// @Param category_id query int false "Only products in this category"
// @Param q query string false "Case-insensitive match on name or description"
// @Success 200 {array} services.ProductView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /products/ [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	page, err := h.Paging.parsePage(c)
	if err != nil {
		return handleError(c, err, "listProducts")
	}
	categoryID, err := optionalQueryInt(c, "category_id")
	if err != nil {
		return handleError(c, err, "listProducts")
	}

	filter := services.ProductFilter{Query: c.Query("q"), Page: page}
	if categoryID != nil {
		id := uint(max(*categoryID, 0))
		filter.CategoryID = &id
	}

	products, err := services.ListProducts(h.DB.WithContext(c.UserContext()), filter)
	if err != nil {
		return handleError(c, err, "listProducts")
	}
	return c.JSON(products)
}

// GetProduct handles GET /products/:id
// @Summary Get a product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} services.ProductView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "getProduct")
	}

	product, err := services.GetProduct(h.DB.WithContext(c.UserContext()), id)
	if err != nil {
		return handleError(c, err, "getProduct")
	}
	return c.JSON(product)
}

// UpdateProduct handles PUT /products/:id
// @Summary Update a product
// @Description Partial update. category_ids, when present, replaces the product's categories.
// @Tags Products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body services.ProductUpdate true "Fields to change"
// @Success 200 {object} services.ProductView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "updateProduct")
	}
	var in services.ProductUpdate
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err, "updateProduct")
	}

	product, err := services.UpdateProduct(h.DB.WithContext(c.UserContext()), id, in)
	if err != nil {
		return handleError(c, err, "updateProduct")
	}
	return c.JSON(product)
}

// DeleteProduct handles DELETE /products/:id
// @Summary Deactivate a product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "deleteProduct")
	}

	if _, err := services.DeactivateProduct(h.DB.WithContext(c.UserContext()), id); err != nil {
		return handleError(c, err, "deleteProduct")
	}
	return c.JSON(utils.MessageResponseStruct{Message: "Product deleted successfully"})
}

// ListProductsByCategory handles GET /products/category/:id
// @Summary List active products in a category
// @Tags Products
// @Produce json
// @Param id path int true "Category ID"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} services.ProductView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /products/category/{id} [get]
func (h *CatalogHandler) ListProductsByCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "listProductsByCategory")
	}
	page, err := h.Paging.parsePage(c)
	if err != nil {
		return handleError(c, err, "listProductsByCategory")
	}

	products, err := services.ListProductsByCategory(h.DB.WithContext(c.UserContext()), id, page)
	if err != nil {
		return handleError(c, err, "listProductsByCategory")
	}
	return c.JSON(products)
}
