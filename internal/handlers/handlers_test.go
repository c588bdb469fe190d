// handlers_test.go
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

package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/shopdb/internal/config"
	"github.com/localnerve/shopdb/internal/handlers"
	"github.com/localnerve/shopdb/internal/middleware"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/testutil"
	"github.com/localnerve/shopdb/internal/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		DBType:           "sqlite-pure",
		DBDatabase:       ":memory:",
		PasswordSalt:     "pepper",
		DefaultPageLimit: 2,
		MaxPageLimit:     3,
	}
}

// setupApp wires every route onto a fresh in-memory database
func setupApp(t *testing.T, admin fiber.Handler) (*fiber.App, *gorm.DB) {
	db := testutil.SetupTestDB(t)
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	handlers.New(db, testConfig()).Register(app, admin)
	app.Use(middleware.NotFound)
	return app, db
}

func do(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	return resp
}

func assertDetail(t *testing.T, resp *http.Response, status int, detail string) {
	t.Helper()
	testutil.AssertStatus(t, resp, status)
	var body utils.ErrorResponseStruct
	testutil.ParseJSON(t, resp, &body)
	if detail != "" && body.Detail != detail {
		t.Errorf("Expected detail %q, got %q", detail, body.Detail)
	}
}

func TestRootAndHealth(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp := do(t, app, httptest.NewRequest("GET", "/", nil))
	testutil.AssertStatus(t, resp, 200)
	var root map[string]string
	testutil.ParseJSON(t, resp, &root)
	if root["status"] != "API is running" {
		t.Errorf("Unexpected root body: %v", root)
	}

	resp = do(t, app, httptest.NewRequest("GET", "/health", nil))
	testutil.AssertStatus(t, resp, 200)
	var health services.HealthCheckResult
	testutil.ParseJSON(t, resp, &health)
	if health.Status != "healthy" {
		t.Errorf("Expected healthy, got %+v", health)
	}

	resp = do(t, app, httptest.NewRequest("GET", "/nowhere", nil))
	assertDetail(t, resp, 404, "Not Found")
}

func TestUserEndpoints(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp := do(t, app, testutil.NewJSONRequest(t, "POST", "/users/", map[string]interface{}{
		"uid":          "u1",
		"provider":     "local",
		"identifier":   "u1@example.com",
		"display_name": "User One",
		"password":     "Secret123",
	}))
	testutil.AssertStatus(t, resp, 200)
	var user map[string]interface{}
	testutil.ParseJSON(t, resp, &user)
	if user["uid"] != "u1" {
		t.Errorf("Expected uid u1, got %v", user["uid"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("Expected the password hash to stay private")
	}

	resp = do(t, app, testutil.NewJSONRequest(t, "POST", "/users/", map[string]interface{}{
		"uid":      "u2",
		"password": "weak",
	}))
	testutil.AssertStatus(t, resp, 400)

	resp = do(t, app, httptest.NewRequest("GET", "/users/u1", nil))
	testutil.AssertStatus(t, resp, 200)

	resp = do(t, app, httptest.NewRequest("GET", "/users/ghost", nil))
	assertDetail(t, resp, 404, "User not found")

	resp = do(t, app, testutil.NewJSONRequest(t, "POST", "/users/verify-password", map[string]string{
		"uid":      "u1",
		"password": "Secret123",
	}))
	testutil.AssertStatus(t, resp, 200)
	var verified map[string]bool
	testutil.ParseJSON(t, resp, &verified)
	if !verified["valid"] {
		t.Error("Expected the password to verify")
	}

	resp = do(t, app, httptest.NewRequest("POST", "/users/verify-password?uid=u1&password=Wrong1234", nil))
	testutil.AssertStatus(t, resp, 200)
	testutil.ParseJSON(t, resp, &verified)
	if verified["valid"] {
		t.Error("Expected the wrong password to fail")
	}

	resp = do(t, app, httptest.NewRequest("POST", "/users/verify-password", nil))
	testutil.AssertStatus(t, resp, 400)
}

func TestCatalogEndpoints(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp := do(t, app, testutil.NewJSONRequest(t, "POST", "/categories/", map[string]string{"name": "Books"}))
	testutil.AssertStatus(t, resp, 200)
	var books map[string]interface{}
	testutil.ParseJSON(t, resp, &books)
	booksID := uint(books["id"].(float64))

	resp = do(t, app, testutil.NewJSONRequest(t, "POST", "/categories/", map[string]string{"name": "Books"}))
	assertDetail(t, resp, 400, "Category with name 'Books' already exists")

	resp = do(t, app, testutil.NewJSONRequest(t, "POST", "/categories/", map[string]string{}))
	testutil.AssertStatus(t, resp, 400)

	// category_ids accepts a single id given as a string
	resp = do(t, app, testutil.NewJSONRequest(t, "POST", "/products/", map[string]interface{}{
		"name":         "Go Book",
		"price":        "39.95",
		"category_ids": fmt.Sprintf("%d", booksID),
	}))
	testutil.AssertStatus(t, resp, 200)
	var product services.ProductView
	testutil.ParseJSON(t, resp, &product)
	if len(product.Categories) != 1 || product.Categories[0].ID != booksID {
		t.Errorf("Expected the product in Books, got %+v", product.Categories)
	}
	if !product.Price.Equal(decimal.RequireFromString("39.95")) {
		t.Errorf("Expected price 39.95, got %s", product.Price)
	}

	for _, name := range []string{"Rust Book", "Zig Book", "Lamp"} {
		resp = do(t, app, testutil.NewJSONRequest(t, "POST", "/products/", map[string]interface{}{
			"name":         name,
			"price":        10,
			"category_ids": []uint{booksID},
		}))
		testutil.AssertStatus(t, resp, 200)
	}

	// default page limit is 2 and limit is capped at 3
	var list []services.ProductView
	resp = do(t, app, httptest.NewRequest("GET", "/products/", nil))
	testutil.ParseJSON(t, resp, &list)
	if len(list) != 2 {
		t.Errorf("Expected 2 products on the default page, got %d", len(list))
	}
	resp = do(t, app, httptest.NewRequest("GET", "/products/?limit=50", nil))
	testutil.ParseJSON(t, resp, &list)
	if len(list) != 3 {
		t.Errorf("Expected the limit capped at 3, got %d", len(list))
	}
	resp = do(t, app, httptest.NewRequest("GET", "/products/?q=book&limit=3&skip=1", nil))
	testutil.ParseJSON(t, resp, &list)
	if len(list) != 2 {
		t.Errorf("Expected 2 books after skipping one, got %d", len(list))
	}
	resp = do(t, app, httptest.NewRequest(fiber.MethodGet, fmt.Sprintf("/products/category/%d", booksID), nil))
	testutil.AssertStatus(t, resp, 200)

	resp = do(t, app, httptest.NewRequest("GET", "/products/?skip=-1", nil))
	testutil.AssertStatus(t, resp, 400)
	resp = do(t, app, httptest.NewRequest("GET", "/products/abc", nil))
	testutil.AssertStatus(t, resp, 400)
	resp = do(t, app, httptest.NewRequest("GET", "/products/999", nil))
	assertDetail(t, resp, 404, "Product not found")

	resp = do(t, app, httptest.NewRequest("DELETE", fmt.Sprintf("/products/%d", product.ID), nil))
	testutil.AssertStatus(t, resp, 200)
	var message utils.MessageResponseStruct
	testutil.ParseJSON(t, resp, &message)
	if message.Message != "Product deleted successfully" {
		t.Errorf("Unexpected message: %s", message.Message)
	}

	resp = do(t, app, httptest.NewRequest("DELETE", fmt.Sprintf("/categories/%d", booksID), nil))
	testutil.AssertStatus(t, resp, 200)
	testutil.ParseJSON(t, resp, &message)
	if message.Message != "Category deleted successfully" {
		t.Errorf("Unexpected message: %s", message.Message)
	}

	var categories []map[string]interface{}
	resp = do(t, app, httptest.NewRequest("GET", "/categories/", nil))
	testutil.ParseJSON(t, resp, &categories)
	if len(categories) != 0 {
		t.Errorf("Expected no active categories, got %d", len(categories))
	}
}

func TestCheckoutFlow(t *testing.T) {
	app, db := setupApp(t, nil)
	testutil.CreateTestUser(t, db, "u1")
	p1 := testutil.CreateTestProduct(t, db, "P1", "10.00")

	cartURL := fmt.Sprintf("/users/u1/cart/items/?product_id=%d&quantity=2", p1.ID)
	resp := do(t, app, httptest.NewRequest("POST", cartURL, nil))
	testutil.AssertStatus(t, resp, 200)
	var added handlers.CartItemResponseStruct
	testutil.ParseJSON(t, resp, &added)
	if added.Message != "Item added to cart" {
		t.Errorf("Unexpected message: %s", added.Message)
	}

	resp = do(t, app, testutil.NewJSONRequest(t, "POST", "/orders/", map[string]interface{}{
		"user_uid": "u1",
		"items":    []map[string]interface{}{{"product_id": fmt.Sprintf("%d", p1.ID), "quantity": 1}},
	}))
	testutil.AssertStatus(t, resp, 200)
	var cart services.OrderView
	testutil.ParseJSON(t, resp, &cart)
	if cart.ID != added.CartID {
		t.Errorf("Expected cart %d, got %d", added.CartID, cart.ID)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Errorf("Expected one line of 3, got %+v", cart.Items)
	}
	if !cart.TotalAmount.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("Expected total 30.00, got %s", cart.TotalAmount)
	}

	statusURL := fmt.Sprintf("/orders/%d/status/2", cart.ID)
	resp = do(t, app, httptest.NewRequest("PUT", statusURL, nil))
	assertDetail(t, resp, 400, services.ShippingRequiredMessage)

	resp = do(t, app, testutil.NewJSONRequest(t, "POST", "/user/u1/addresses/", map[string]string{"address": "1 Main St"}))
	testutil.AssertStatus(t, resp, 200)
	var address map[string]interface{}
	testutil.ParseJSON(t, resp, &address)
	if address["is_default"] != true {
		t.Errorf("Expected the first address to be default, got %v", address["is_default"])
	}

	// the default address is not applied on its own
	resp = do(t, app, httptest.NewRequest("PUT", statusURL, nil))
	assertDetail(t, resp, 400, services.ShippingRequiredMessage)

	orderURL := fmt.Sprintf("/orders/%d", cart.ID)
	resp = do(t, app, testutil.NewJSONRequest(t, "PUT", orderURL, map[string]interface{}{"shipping_address_id": address["id"]}))
	testutil.AssertStatus(t, resp, 200)

	resp = do(t, app, httptest.NewRequest("PUT", statusURL, nil))
	testutil.AssertStatus(t, resp, 200)
	var status handlers.StatusResponseStruct
	testutil.ParseJSON(t, resp, &status)
	if status.NewStatus != 2 || status.OrderID != cart.ID {
		t.Errorf("Unexpected status response: %+v", status)
	}

	resp = do(t, app, httptest.NewRequest("GET", fmt.Sprintf("/orders/%d", cart.ID), nil))
	testutil.AssertStatus(t, resp, 200)
	var placed services.OrderView
	testutil.ParseJSON(t, resp, &placed)
	if placed.ShippingAddress == nil || *placed.ShippingAddress != "1 Main St" {
		t.Errorf("Expected shipping address text, got %v", placed.ShippingAddress)
	}

	resp = do(t, app, httptest.NewRequest("GET", "/users/u1/cart/", nil))
	assertDetail(t, resp, 404, "Cart not found")

	resp = do(t, app, httptest.NewRequest("PUT", fmt.Sprintf("/orders/%d/status/x", cart.ID), nil))
	testutil.AssertStatus(t, resp, 400)

	var orders []services.OrderView
	resp = do(t, app, httptest.NewRequest("GET", "/users/u1/orders/", nil))
	testutil.ParseJSON(t, resp, &orders)
	if len(orders) != 1 {
		t.Errorf("Expected 1 order for u1, got %d", len(orders))
	}

	resp = do(t, app, httptest.NewRequest("GET", "/orders/?status=2", nil))
	testutil.ParseJSON(t, resp, &orders)
	if len(orders) != 1 {
		t.Errorf("Expected 1 processing order, got %d", len(orders))
	}

	resp = do(t, app, httptest.NewRequest("DELETE", fmt.Sprintf("/user/u1/addresses/%v", address["id"]), nil))
	testutil.AssertStatus(t, resp, 400)
}

func TestOrderItemAndDeleteEndpoints(t *testing.T) {
	app, db := setupApp(t, nil)
	testutil.CreateTestUser(t, db, "u1")
	p1 := testutil.CreateTestProduct(t, db, "P1", "10.00")
	p2 := testutil.CreateTestProduct(t, db, "P2", "1.50")

	resp := do(t, app, testutil.NewJSONRequest(t, "POST", "/orders/", map[string]interface{}{
		"user_uid": "u1",
		"items": []map[string]interface{}{
			{"product_id": p1.ID, "quantity": 1},
			{"product_id": p2.ID, "quantity": 2},
		},
	}))
	testutil.AssertStatus(t, resp, 200)
	var order services.OrderView
	testutil.ParseJSON(t, resp, &order)

	resp = do(t, app, httptest.NewRequest("DELETE", fmt.Sprintf("/order-items/%d", order.Items[0].ID), nil))
	testutil.AssertStatus(t, resp, 200)
	var after services.OrderView
	testutil.ParseJSON(t, resp, &after)
	if !after.TotalAmount.Equal(decimal.RequireFromString("3.00")) {
		t.Errorf("Expected total 3.00, got %s", after.TotalAmount)
	}

	resp = do(t, app, testutil.NewJSONRequest(t, "PUT", fmt.Sprintf("/orders/%d", order.ID), map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": p1.ID, "quantity": 0}},
	}))
	testutil.AssertStatus(t, resp, 400)

	resp = do(t, app, httptest.NewRequest("DELETE", fmt.Sprintf("/orders/%d", order.ID), nil))
	testutil.AssertStatus(t, resp, 200)
	var message utils.MessageResponseStruct
	testutil.ParseJSON(t, resp, &message)
	if message.Message != "Order deleted successfully" {
		t.Errorf("Unexpected message: %s", message.Message)
	}

	resp = do(t, app, httptest.NewRequest("DELETE", "/orders/999", nil))
	assertDetail(t, resp, 404, "Order not found")
}

type fakeValidator struct {
	valid bool
}

func (f fakeValidator) ValidateSession(_, _ string, _ []string) (map[string]interface{}, error) {
	if !f.valid {
		return nil, fmt.Errorf("session is not valid")
	}
	return map[string]interface{}{"is_valid": true, "user": "admin"}, nil
}

func TestAdminGuard(t *testing.T) {
	app, _ := setupApp(t, middleware.AuthAdmin(fakeValidator{valid: false}))

	resp := do(t, app, httptest.NewRequest("GET", "/orders/", nil))
	testutil.AssertStatus(t, resp, 403)

	req := httptest.NewRequest("GET", "/orders/", nil)
	req.AddCookie(&http.Cookie{Name: "cookie_session", Value: "abc"})
	resp = do(t, app, req)
	testutil.AssertStatus(t, resp, 403)

	// other order routes stay open
	resp = do(t, app, httptest.NewRequest("GET", "/orders/999", nil))
	testutil.AssertStatus(t, resp, 404)

	open, _ := setupApp(t, middleware.AuthAdmin(fakeValidator{valid: true}))
	req = httptest.NewRequest("GET", "/orders/", nil)
	req.AddCookie(&http.Cookie{Name: "cookie_session", Value: "abc"})
	resp = do(t, open, req)
	testutil.AssertStatus(t, resp, 200)
}
