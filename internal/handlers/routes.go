package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/shopdb/internal/config"
	"gorm.io/gorm"
)

// Handlers groups the route handlers of the service
type Handlers struct {
	Health    *HealthHandler
	Users     *UserHandler
	Catalog   *CatalogHandler
	Orders    *OrderHandler
	Addresses *AddressHandler
}

// New builds the handlers over one database pool
func New(db *gorm.DB, cfg *config.Config) *Handlers {
	paging := Paging{DefaultLimit: cfg.DefaultPageLimit, MaxLimit: cfg.MaxPageLimit}
	return &Handlers{
		Health:    &HealthHandler{DB: db, Cfg: cfg},
		Users:     &UserHandler{DB: db, Salt: cfg.PasswordSalt},
		Catalog:   &CatalogHandler{DB: db, Paging: paging},
		Orders:    &OrderHandler{DB: db, Paging: paging},
		Addresses: &AddressHandler{DB: db},
	}
}

// Register mounts every route on router. admin guards the admin order listing; nil leaves it open.
func (h *Handlers) Register(router fiber.Router, admin fiber.Handler) {
	router.Get("/", h.Health.Root)
	router.Get("/health", h.Health.Health)

	// Users
	router.Post("/users/verify-password", h.Users.VerifyPassword)
	router.Post("/users/", h.Users.CreateOrUpdateUser)
	router.Get("/users/:uid", h.Users.GetUser)
	router.Get("/users/:uid/orders/", h.Orders.ListUserOrders)
	router.Get("/users/:uid/cart/", h.Orders.GetUserCart)
	router.Post("/users/:uid/cart/items/", h.Orders.AddToCart)

	// Categories
	router.Post("/categories/", h.Catalog.CreateCategory)
	router.Get("/categories/", h.Catalog.ListCategories)
	router.Get("/categories/:id", h.Catalog.GetCategory)
	router.Put("/categories/:id", h.Catalog.UpdateCategory)
	router.Delete("/categories/:id", h.Catalog.DeleteCategory)

	// Products
	router.Post("/products/", h.Catalog.CreateProduct)
	router.Get("/products/", h.Catalog.ListProducts)
	router.Get("/products/category/:id", h.Catalog.ListProductsByCategory)
	router.Get("/products/:id", h.Catalog.GetProduct)
	router.Put("/products/:id", h.Catalog.UpdateProduct)
	router.Delete("/products/:id", h.Catalog.DeleteProduct)

	// Orders
	router.Post("/orders/", h.Orders.CreateOrder)
	if admin != nil {
		router.Get("/orders/", admin, h.Orders.ListOrders)
	} else {
		router.Get("/orders/", h.Orders.ListOrders)
	}
	router.Get("/orders/:id", h.Orders.GetOrder)
	router.Put("/orders/:id", h.Orders.UpdateOrder)
	router.Put("/orders/:id/status/:status", h.Orders.UpdateOrderStatus)
	router.Delete("/orders/:id", h.Orders.DeleteOrder)
	router.Delete("/order-items/:id", h.Orders.DeleteOrderItem)

	// Shipping addresses
	addresses := router.Group("/user/:uid/addresses")
	addresses.Post("/", h.Addresses.CreateAddress)
	addresses.Get("/", h.Addresses.ListAddresses)
	addresses.Put("/:address_id", h.Addresses.UpdateAddress)
	addresses.Delete("/:address_id", h.Addresses.DeleteAddress)
}
