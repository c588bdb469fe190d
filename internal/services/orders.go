// orders.go
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

package services

import (
	"errors"

	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShippingRequiredMessage rejects a processing or completed order without an address
const ShippingRequiredMessage = "Shipping address is required before moving order to processing or completed status"

// MaxItemQuantity bounds the quantity of a single order line, merged quantities included
const MaxItemQuantity = 10000

// OrderItemInput is one requested order line. A nil PricePerUnit captures the product's current price.
type OrderItemInput struct {
	ProductID    types.FlexID     `json:"product_id" validate:"required"`
	Quantity     int              `json:"quantity" validate:"min=1,max=10000"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
}

// OrderInput creates an order or merges into the user's existing order of the same status
type OrderInput struct {
	UserUID           string           `json:"user_uid" validate:"required,max=128"`
	Status            *int             `json:"status" validate:"omitempty,min=0,max=3"`
	ShippingAddressID *types.FlexID    `json:"shipping_address_id"`
	BillingMethod     *string          `json:"billing_method" validate:"omitempty,min=1,max=64"`
	ContactPhone      *string          `json:"contact_phone" validate:"omitempty,max=32"`
	Items             []OrderItemInput `json:"items" validate:"dive"`
}

// OrderUpdate changes the supplied order fields. A non-nil Items replaces every line of the order.
type OrderUpdate struct {
	Status            *int             `json:"status" validate:"omitempty,min=0,max=3"`
	ShippingAddressID *types.FlexID    `json:"shipping_address_id"`
	BillingMethod     *string          `json:"billing_method" validate:"omitempty,min=1,max=64"`
	ContactPhone      *string          `json:"contact_phone" validate:"omitempty,max=32"`
	Items             []OrderItemInput `json:"items" validate:"omitempty,dive"`
}

// OrderView is an order with its lines and the text of its shipping address
type OrderView struct {
	models.Order
	ShippingAddress *string `json:"shipping_address"`
}

// CreateOrGetOrder merges the request into the user's order with the requested status (default cart),
// creating it when none exists. Every line must reference an active product or nothing is written.
func CreateOrGetOrder(db *gorm.DB, in OrderInput) (*OrderView, error) {
	status := models.OrderStatusCart
	if in.Status != nil {
		status = *in.Status
	}
	if !models.ValidOrderStatus(status) {
		return nil, invalidStatus()
	}

	var view *OrderView
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := userExists(tx, in.UserUID); err != nil {
			return err
		}

		var order models.Order
		err := tx.Where("user_uid = ? AND status = ?", in.UserUID, status).Order("id").First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			order = models.Order{
				UserUID:       in.UserUID,
				Status:        status,
				TotalAmount:   types.Money{},
				BillingMethod: models.DefaultBillingMethod,
			}
		} else if err != nil {
			return err
		}

		if in.BillingMethod != nil {
			order.BillingMethod = *in.BillingMethod
		}
		if in.ContactPhone != nil {
			order.ContactPhone = in.ContactPhone
		}
		if err := resolveShipping(tx, &order, in.ShippingAddressID); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&order).Error; err != nil {
			return err
		}
		if err := mergeItems(tx, order.ID, in.Items); err != nil {
			return err
		}
		if _, err := RecalculateOrderTotal(tx, order.ID); err != nil {
			return err
		}

		view, err = loadOrderView(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// AddItemToCart adds quantity of a product to the user's cart at the product's current price,
// creating the cart when the user has none
func AddItemToCart(db *gorm.DB, uid string, productID uint, quantity int) (*OrderView, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}

	var view *OrderView
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := userExists(tx, uid); err != nil {
			return err
		}

		var cart models.Order
		err := tx.Where("user_uid = ? AND status = ?", uid, models.OrderStatusCart).Order("id").First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart = models.Order{
				UserUID:       uid,
				Status:        models.OrderStatusCart,
				TotalAmount:   types.Money{},
				BillingMethod: models.DefaultBillingMethod,
			}
			if err := tx.Omit(clause.Associations).Create(&cart).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		items := []OrderItemInput{{ProductID: types.FlexID(productID), Quantity: quantity}}
		if err := mergeItems(tx, cart.ID, items); err != nil {
			return err
		}
		if _, err := RecalculateOrderTotal(tx, cart.ID); err != nil {
			return err
		}

		view, err = loadOrderView(tx, cart.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// UpdateOrder applies the supplied header fields and replaces the lines when Items is given
func UpdateOrder(db *gorm.DB, id uint, in OrderUpdate) (*OrderView, error) {
	var view *OrderView
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := firstOr(tx.Where("id = ?", id), &order, "Order not found"); err != nil {
			return err
		}

		if in.Status != nil {
			if err := changeStatus(tx, &order, *in.Status); err != nil {
				return err
			}
		}
		if in.BillingMethod != nil {
			order.BillingMethod = *in.BillingMethod
		}
		if in.ContactPhone != nil {
			order.ContactPhone = in.ContactPhone
		}
		if err := resolveShipping(tx, &order, in.ShippingAddressID); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(&order).Error; err != nil {
			return err
		}

		if in.Items != nil {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if err := mergeItems(tx, order.ID, in.Items); err != nil {
				return err
			}
		}
		if _, err := RecalculateOrderTotal(tx, order.ID); err != nil {
			return err
		}

		var err error
		view, err = loadOrderView(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// UpdateOrderStatus moves an order to status. Processing and completed orders need a shipping address
// already set on the order.
func UpdateOrderStatus(db *gorm.DB, id uint, status int) (*OrderView, error) {
	var view *OrderView
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := firstOr(tx.Where("id = ?", id), &order, "Order not found"); err != nil {
			return err
		}
		if err := changeStatus(tx, &order, status); err != nil {
			return err
		}
		if err := resolveShipping(tx, &order, nil); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&order).Error; err != nil {
			return err
		}

		var err error
		view, err = loadOrderView(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// DeleteOrder deactivates an order (status 0); its lines are kept
func DeleteOrder(db *gorm.DB, id uint) (*OrderView, error) {
	var view *OrderView
	err := db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := firstOr(tx.Where("id = ?", id), &order, "Order not found"); err != nil {
			return err
		}
		if err := tx.Model(&order).Update("status", models.OrderStatusDeactivated).Error; err != nil {
			return err
		}

		var err error
		view, err = loadOrderView(tx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// DeleteOrderItem removes one line and returns the owning order with its recomputed total
func DeleteOrderItem(db *gorm.DB, itemID uint) (*OrderView, error) {
	var view *OrderView
	err := db.Transaction(func(tx *gorm.DB) error {
		var item models.OrderItem
		if err := firstOr(tx.Where("id = ?", itemID), &item, "Order item not found"); err != nil {
			return err
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		if _, err := RecalculateOrderTotal(tx, item.OrderID); err != nil {
			return err
		}

		var err error
		view, err = loadOrderView(tx, item.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return view, nil
}

// RecalculateOrderTotal stores and returns the sum of quantity times unit price over the order's lines
func RecalculateOrderTotal(tx *gorm.DB, orderID uint) (decimal.Decimal, error) {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	total = total.Round(2)

	err := tx.Model(&models.Order{}).Where("id = ?", orderID).Update("total_amount", total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// GetOrder loads an order with its lines
func GetOrder(db *gorm.DB, id uint) (*OrderView, error) {
	return loadOrderView(db, id)
}

// ListOrders returns a page of all orders, optionally with one status
func ListOrders(db *gorm.DB, status *int, page Page) ([]OrderView, error) {
	query := tagged(db, "list_orders")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return findOrderViews(page.apply(query))
}

// ListUserOrders returns a page of the user's orders
func ListUserOrders(db *gorm.DB, uid string, page Page) ([]OrderView, error) {
	return findOrderViews(page.apply(tagged(db, "list_user_orders").Where("user_uid = ?", uid)))
}

// GetUserCart returns the user's status 1 order
func GetUserCart(db *gorm.DB, uid string) (*OrderView, error) {
	var order models.Order
	query := withOrderDetails(tagged(db, "get_cart")).
		Where("user_uid = ? AND status = ?", uid, models.OrderStatusCart).
		Order("id")
	if err := firstOr(query, &order, "Cart not found"); err != nil {
		return nil, err
	}
	return toOrderView(order), nil
}

// mergeItems adds lines to an order. A product already on the order gains quantity and keeps its
// captured price.
func mergeItems(tx *gorm.DB, orderID uint, items []OrderItemInput) error {
	for _, in := range items {
		if err := checkQuantity(in.Quantity); err != nil {
			return err
		}

		var product models.Product
		err := tx.Where("id = ? AND is_active = ?", in.ProductID.Uint(), true).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.BadRequest("orders", "Product %d not found or inactive", in.ProductID.Uint())
		}
		if err != nil {
			return err
		}

		var existing models.OrderItem
		err = tx.Where("order_id = ? AND product_id = ?", orderID, product.ID).First(&existing).Error
		if err == nil {
			if existing.Quantity+in.Quantity > MaxItemQuantity {
				return types.BadRequest("orders", "quantity for product %d must not exceed %d", product.ID, MaxItemQuantity)
			}
			err = tx.Model(&existing).Update("quantity", gorm.Expr("quantity + ?", in.Quantity)).Error
			if err != nil {
				return err
			}
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		price := product.Price
		if in.PricePerUnit != nil {
			if in.PricePerUnit.IsNegative() {
				return types.BadRequest("orders", "price_per_unit must not be negative")
			}
			price = types.NewMoney(*in.PricePerUnit)
		}

		item := models.OrderItem{
			OrderID:      orderID,
			ProductID:    product.ID,
			Quantity:     in.Quantity,
			PricePerUnit: price,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}

func checkQuantity(quantity int) error {
	if quantity < 1 {
		return types.BadRequest("orders", "quantity must be at least 1")
	}
	if quantity > MaxItemQuantity {
		return types.BadRequest("orders", "quantity must not exceed %d", MaxItemQuantity)
	}
	return nil
}

// changeStatus validates a transition and keeps a single cart per user
func changeStatus(tx *gorm.DB, order *models.Order, status int) error {
	if !models.ValidOrderStatus(status) {
		return invalidStatus()
	}
	if status == models.OrderStatusCart && order.Status != models.OrderStatusCart {
		var carts int64
		err := tx.Model(&models.Order{}).
			Where("user_uid = ? AND status = ? AND id <> ?", order.UserUID, models.OrderStatusCart, order.ID).
			Count(&carts).Error
		if err != nil {
			return err
		}
		if carts > 0 {
			return types.BadRequest("orders", "User already has an active cart")
		}
	}
	order.Status = status
	return nil
}

// resolveShipping validates a requested address and rejects a processing or completed order
// that has no shipping reference
func resolveShipping(tx *gorm.DB, order *models.Order, requested *types.FlexID) error {
	if requested != nil {
		var address models.ShippingAddress
		err := tx.Where("id = ? AND user_uid = ?", requested.Uint(), order.UserUID).First(&address).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.BadRequest("orders", "Shipping address %d not found for user", requested.Uint())
		}
		if err != nil {
			return err
		}
		order.ShippingAddressID = &address.ID
	}

	if models.RequiresShipping(order.Status) && order.ShippingAddressID == nil {
		return types.BadRequest("orders", ShippingRequiredMessage)
	}
	return nil
}

func invalidStatus() error {
	return types.BadRequest("orders", "Invalid status. Must be 0, 1, 2, or 3")
}

func withOrderDetails(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id")
		}).
		Preload("Address")
}

func loadOrderView(tx *gorm.DB, id uint) (*OrderView, error) {
	var order models.Order
	if err := firstOr(withOrderDetails(tx).Where("id = ?", id), &order, "Order not found"); err != nil {
		return nil, err
	}
	return toOrderView(order), nil
}

func findOrderViews(query *gorm.DB) ([]OrderView, error) {
	var orders []models.Order
	if err := withOrderDetails(query).Order("id").Find(&orders).Error; err != nil {
		return nil, err
	}
	views := make([]OrderView, len(orders))
	for i, order := range orders {
		views[i] = *toOrderView(order)
	}
	return views, nil
}

func toOrderView(order models.Order) *OrderView {
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	view := &OrderView{Order: order}
	if order.Address != nil {
		view.ShippingAddress = &order.Address.Address
	}
	return view
}
