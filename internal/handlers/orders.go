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

package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/types"
	"github.com/localnerve/shopdb/internal/utils"
	"gorm.io/gorm"
)

// OrderHandler handles order and cart routes
type OrderHandler struct {
	DB     *gorm.DB
	Paging Paging
}

// StatusResponseStruct acknowledges a status transition
type StatusResponseStruct struct {
	Message   string `json:"message"`
	OrderID   uint   `json:"order_id"`
	NewStatus int    `json:"new_status"`
}

// CartItemResponseStruct acknowledges an item added to a cart
type CartItemResponseStruct struct {
	Message string             `json:"message"`
	CartID  uint               `json:"cart_id"`
	Cart    services.OrderView `json:"cart"`
}

// CreateOrder handles POST /orders/
// @Summary Create an order or merge into an existing one
// @Description Reuses the user's order with the same status (default 1, cart). Items for a product already on the order add quantity.
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body services.OrderInput true "Order"
// @Success 200 {object} services.OrderView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /orders/ [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var in services.OrderInput
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err, "createOrder")
	}

	order, err := services.CreateOrGetOrder(h.DB.WithContext(c.UserContext()), in)
	if err != nil {
		return handleError(c, err, "createOrder")
	}
	return c.JSON(order)
}

// ListOrders handles GET /orders/
// @Summary List all orders (admin)
// @Tags Orders
// @Produce json
// @Param status query int false "Only orders with this status"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} services.OrderView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /orders/ [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	page, err := h.Paging.parsePage(c)
	if err != nil {
		return handleError(c, err, "listOrders")
	}
	status, err := optionalQueryInt(c, "status")
	if err != nil {
		return handleError(c, err, "listOrders")
	}

	orders, err := services.ListOrders(h.DB.WithContext(c.UserContext()), status, page)
	if err != nil {
		return handleError(c, err, "listOrders")
	}
	return c.JSON(orders)
}

// GetOrder handles GET /orders/:id
// @Summary Get an order
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} services.OrderView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "getOrder")
	}

	order, err := services.GetOrder(h.DB.WithContext(c.UserContext()), id)
	if err != nil {
		return handleError(c, err, "getOrder")
	}
	return c.JSON(order)
}

// UpdateOrder handles PUT /orders/:id
// @Summary Update an order
// @Description Partial update. items, when present, replaces every line of the order.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param order body services.OrderUpdate true "Fields to change"
// @Success 200 {object} services.OrderView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "updateOrder")
	}
	var in services.OrderUpdate
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err, "updateOrder")
	}

	order, err := services.UpdateOrder(h.DB.WithContext(c.UserContext()), id, in)
	if err != nil {
		return handleError(c, err, "updateOrder")
	}
	return c.JSON(order)
}

// UpdateOrderStatus handles PUT /orders/:id/status/:status
// @Summary Change an order's status
// @Description 0 deactivated, 1 cart, 2 processing, 3 completed. 2 and 3 need a shipping address already set on the order.
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Param status path int true "New status"
// @Success 200 {object} StatusResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /orders/{id}/status/{status} [put]
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "updateOrderStatus")
	}
	status, err := strconv.Atoi(c.Params("status"))
	if err != nil {
		return handleError(c, types.BadRequest("params", "Invalid status. Must be 0, 1, 2, or 3"), "updateOrderStatus")
	}

	order, err := services.UpdateOrderStatus(h.DB.WithContext(c.UserContext()), id, status)
	if err != nil {
		return handleError(c, err, "updateOrderStatus")
	}

	return c.JSON(StatusResponseStruct{
		Message:   "Order status updated",
		OrderID:   order.ID,
		NewStatus: order.Status,
	})
}

// DeleteOrder handles DELETE /orders/:id
// @Summary Deactivate an order
// @Tags Orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "deleteOrder")
	}

	if _, err := services.DeleteOrder(h.DB.WithContext(c.UserContext()), id); err != nil {
		return handleError(c, err, "deleteOrder")
	}
	return c.JSON(utils.MessageResponseStruct{Message: "Order deleted successfully"})
}

// DeleteOrderItem handles DELETE /order-items/:id
// @Summary Remove an order line
// @Description Removes the line and returns the owning order with its recomputed total
// @Tags Orders
// @Produce json
// @Param id path int true "Order item ID"
// @Success 200 {object} services.OrderView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /order-items/{id} [delete]
func (h *OrderHandler) DeleteOrderItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return handleError(c, err, "deleteOrderItem")
	}

	order, err := services.DeleteOrderItem(h.DB.WithContext(c.UserContext()), id)
	if err != nil {
		return handleError(c, err, "deleteOrderItem")
	}
	return c.JSON(order)
}

// ListUserOrders handles GET /users/:uid/orders/
// @Summary List a user's orders
// @Tags Orders
// @Produce json
// @Param uid path string true "User uid"
// @Param skip query int false "Rows to skip"
// @Param limit query int false "Maximum rows"
// @Success 200 {array} services.OrderView
// @Router /users/{uid}/orders/ [get]
func (h *OrderHandler) ListUserOrders(c *fiber.Ctx) error {
	page, err := h.Paging.parsePage(c)
	if err != nil {
		return handleError(c, err, "listUserOrders")
	}

	orders, err := services.ListUserOrders(h.DB.WithContext(c.UserContext()), c.Params("uid"), page)
	if err != nil {
		return handleError(c, err, "listUserOrders")
	}
	return c.JSON(orders)
}

// GetUserCart handles GET /users/:uid/cart/
// @Summary Get a user's active cart
// @Tags Orders
// @Produce json
// @Param uid path string true "User uid"
// @Success 200 {object} services.OrderView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{uid}/cart/ [get]
func (h *OrderHandler) GetUserCart(c *fiber.Ctx) error {
	cart, err := services.GetUserCart(h.DB.WithContext(c.UserContext()), c.Params("uid"))
	if err != nil {
		return handleError(c, err, "getUserCart")
	}
	return c.JSON(cart)
}

// AddToCart handles POST /users/:uid/cart/items/
// @Summary Add a product to a user's cart
// @Description Creates the cart when needed. A product already in the cart gains quantity.
// @Tags Orders
// @Produce json
// @Param uid path string true "User uid"
// @Param product_id query int true "Product ID"
// @Param quantity query int false "Quantity, default 1"
// @Success 200 {object} CartItemResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{uid}/cart/items/ [post]
func (h *OrderHandler) AddToCart(c *fiber.Ctx) error {
	productID, err := strconv.ParseUint(c.Query("product_id"), 10, 64)
	if err != nil || productID == 0 {
		return handleError(c, types.BadRequest("params", "product_id must be a positive integer"), "addToCart")
	}
	quantity := 1
	if raw := c.Query("quantity"); raw != "" {
		quantity, err = strconv.Atoi(raw)
		if err != nil {
			return handleError(c, types.BadRequest("params", "quantity must be an integer"), "addToCart")
		}
	}

	cart, err := services.AddItemToCart(h.DB.WithContext(c.UserContext()), c.Params("uid"), uint(productID), quantity)
	if err != nil {
		return handleError(c, err, "addToCart")
	}

	return c.JSON(CartItemResponseStruct{
		Message: "Item added to cart",
		CartID:  cart.ID,
		Cart:    *cart,
	})
}
