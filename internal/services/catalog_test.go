package services_test

import (
	"errors"
	"testing"

	"github.com/localnerve/shopdb/data"
	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/testutil"
	"github.com/localnerve/shopdb/internal/types"
	"github.com/shopspring/decimal"
)

func TestCategoryLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)

	books, err := services.CreateCategory(db, services.CategoryInput{Name: "Books"})
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if !books.IsActive {
		t.Error("Expected a new category to be active")
	}

	_, err = services.CreateCategory(db, services.CategoryInput{Name: "Books"})
	custom := assertBadRequest(t, err)
	if custom.Message != "Category with name 'Books' already exists" {
		t.Errorf("Unexpected message: %s", custom.Message)
	}

	toys, err := services.CreateCategory(db, services.CategoryInput{Name: "Toys"})
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	_, err = services.UpdateCategory(db, toys.ID, services.CategoryUpdate{Name: strPtr("Books")})
	assertBadRequest(t, err)

	renamed, err := services.UpdateCategory(db, toys.ID, services.CategoryUpdate{
		Name:        strPtr("Games"),
		Description: strPtr("Board and card games"),
	})
	if err != nil {
		t.Fatalf("UpdateCategory failed: %v", err)
	}
	if renamed.Name != "Games" || renamed.Description == nil {
		t.Errorf("Unexpected category after update: %+v", renamed)
	}

	if _, err := services.DeactivateCategory(db, toys.ID); err != nil {
		t.Fatalf("DeactivateCategory failed: %v", err)
	}

	active, err := services.ListCategories(db, services.Page{Limit: 100})
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != books.ID {
		t.Errorf("Expected only Books listed, got %+v", active)
	}

	inactive, err := services.GetCategory(db, toys.ID)
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if inactive.IsActive {
		t.Error("Expected the category to be inactive")
	}

	_, err = services.GetCategory(db, 9999)
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := services.CreateProduct(db, services.ProductInput{Name: "Bad", Price: decimal.RequireFromString("-1")})
	assertBadRequest(t, err)

	rating := decimal.RequireFromString("5.5")
	_, err = services.CreateProduct(db, services.ProductInput{Name: "Bad", Price: decimal.RequireFromString("1"), Rating: &rating})
	assertBadRequest(t, err)

	_, err = services.CreateProduct(db, services.ProductInput{
		Name:        "Orphan",
		Price:       decimal.RequireFromString("1"),
		CategoryIDs: types.FlexIDs{42},
	})
	assertBadRequest(t, err)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected no products, got %d", count)
	}
}

func TestProductCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	books := testutil.CreateTestCategory(t, db, "Books")
	games := testutil.CreateTestCategory(t, db, "Games")

	product, err := services.CreateProduct(db, services.ProductInput{
		Name:        "Puzzle Book",
		Price:       decimal.RequireFromString("12.345"),
		CategoryIDs: types.FlexIDs{types.FlexID(books.ID), types.FlexID(games.ID), types.FlexID(books.ID)},
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if !product.Price.Equal(decimal.RequireFromString("12.35")) {
		t.Errorf("Expected price rounded to 12.35, got %s", product.Price)
	}
	if len(product.Categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(product.Categories))
	}

	updated, err := services.UpdateProduct(db, product.ID, services.ProductUpdate{CategoryIDs: types.FlexIDs{types.FlexID(games.ID)}})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if len(updated.Categories) != 1 || updated.Categories[0].ID != games.ID {
		t.Errorf("Expected only Games, got %+v", updated.Categories)
	}

	// omitted category_ids keeps the links
	kept, err := services.UpdateProduct(db, product.ID, services.ProductUpdate{StockQuantity: intPtr(3)})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if len(kept.Categories) != 1 || kept.StockQuantity != 3 {
		t.Errorf("Unexpected product after update: %+v", kept)
	}

	// inactive categories are not reported
	if _, err := services.DeactivateCategory(db, games.ID); err != nil {
		t.Fatalf("DeactivateCategory failed: %v", err)
	}
	byProduct, err := services.ProductCategoriesFor(db, []uint{product.ID})
	if err != nil {
		t.Fatalf("ProductCategoriesFor failed: %v", err)
	}
	if len(byProduct[product.ID]) != 0 {
		t.Errorf("Expected no active categories, got %+v", byProduct[product.ID])
	}
}

func TestListProducts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	books := testutil.CreateTestCategory(t, db, "Books")
	home := testutil.CreateTestCategory(t, db, "Home")

	novel := testutil.CreateTestProduct(t, db, "Mystery Novel", "9.99", books.ID)
	testutil.CreateTestProduct(t, db, "Cook Book", "19.99", books.ID, home.ID)
	lamp := testutil.CreateTestProduct(t, db, "Desk Lamp", "25.00", home.ID)
	if _, err := services.DeactivateProduct(db, lamp.ID); err != nil {
		t.Fatalf("DeactivateProduct failed: %v", err)
	}

	all, err := services.ListProducts(db, services.ProductFilter{Page: services.Page{Limit: 100}})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 active products, got %d", len(all))
	}

	search, err := services.ListProducts(db, services.ProductFilter{Query: "BOOK", Page: services.Page{Limit: 100}})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(search) != 1 || search[0].Name != "Cook Book" {
		t.Errorf("Expected Cook Book, got %+v", search)
	}
	if len(search) == 1 && len(search[0].Categories) != 2 {
		t.Errorf("Expected Cook Book in 2 categories, got %d", len(search[0].Categories))
	}

	inHome, err := services.ListProductsByCategory(db, home.ID, services.Page{Limit: 100})
	if err != nil {
		t.Fatalf("ListProductsByCategory failed: %v", err)
	}
	if len(inHome) != 1 {
		t.Errorf("Expected 1 active product in Home, got %d", len(inHome))
	}

	paged, err := services.ListProducts(db, services.ProductFilter{Page: services.Page{Skip: 1, Limit: 1}})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(paged) != 1 || paged[0].ID == novel.ID {
		t.Errorf("Expected the second product on page two, got %+v", paged)
	}

	_, err = services.ListProductsByCategory(db, 9999, services.Page{Limit: 100})
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	inactive, err := services.GetProduct(db, lamp.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if inactive.IsActive {
		t.Error("Expected the lamp to be inactive")
	}
}

func TestSeedCatalogIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)

	first, err := services.SeedCatalogJSON(db, data.SeedCatalog)
	if err != nil {
		t.Fatalf("SeedCatalogJSON failed: %v", err)
	}
	if first.Categories != 3 || first.Products != 5 {
		t.Errorf("Expected 3 categories and 5 products, got %+v", first)
	}

	second, err := services.SeedCatalogJSON(db, data.SeedCatalog)
	if err != nil {
		t.Fatalf("SeedCatalogJSON failed: %v", err)
	}
	if second.Categories != 0 || second.Products != 0 {
		t.Errorf("Expected nothing seeded twice, got %+v", second)
	}

	lamps, err := services.ListProducts(db, services.ProductFilter{Query: "desk lamp", Page: services.Page{Limit: 10}})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if len(lamps) != 1 || len(lamps[0].Categories) != 2 {
		t.Errorf("Expected the desk lamp in 2 categories, got %+v", lamps)
	}

	_, err = services.SeedCatalogJSON(db, []byte(`{"products":[{"name":"X","price":"1","categories":["Nope"]}]}`))
	if err == nil {
		t.Error("Expected an unknown category to fail the seed")
	}
}
