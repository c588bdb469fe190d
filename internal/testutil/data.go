// data.go
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

package testutil

import (
	"testing"

	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateTestUser creates an active user
func CreateTestUser(t *testing.T, db *gorm.DB, uid string) models.User {
	t.Helper()
	user := models.User{
		UID:        uid,
		Provider:   "test",
		Identifier: uid + "@example.com",
		IsActive:   true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", uid, err)
	}
	return user
}

// CreateTestCategory creates an active category
func CreateTestCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	category := models.Category{Name: name, IsActive: true}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("Failed to create category %s: %v", name, err)
	}
	return category
}

// CreateTestProduct creates an active product at price and links it to the categories
func CreateTestProduct(t *testing.T, db *gorm.DB, name, price string, categoryIDs ...uint) models.Product {
	t.Helper()
	product := models.Product{
		Name:          name,
		Price:         types.NewMoney(decimal.RequireFromString(price)),
		Rating:        decimal.Zero,
		StockQuantity: 10,
		IsActive:      true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("Failed to create product %s: %v", name, err)
	}
	for _, id := range categoryIDs {
		link := models.ProductCategory{ProductID: product.ID, CategoryID: id}
		if err := db.Create(&link).Error; err != nil {
			t.Fatalf("Failed to link product %s to category %d: %v", name, id, err)
		}
	}
	return product
}

// CreateTestAddress creates a shipping address row directly, bypassing the default rules
func CreateTestAddress(t *testing.T, db *gorm.DB, uid, text string, isDefault bool) models.ShippingAddress {
	t.Helper()
	address := models.ShippingAddress{UserUID: uid, Address: text, IsDefault: isDefault}
	if err := db.Create(&address).Error; err != nil {
		t.Fatalf("Failed to create address for %s: %v", uid, err)
	}
	return address
}
