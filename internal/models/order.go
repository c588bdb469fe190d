package models

import (
	"time"

	"github.com/localnerve/shopdb/internal/types"
	"github.com/shopspring/decimal"
)

// Order statuses
const (
	OrderStatusDeactivated = 0
	OrderStatusCart        = 1
	OrderStatusProcessing  = 2
	OrderStatusCompleted   = 3
)

// DefaultBillingMethod is used when an order is created without one
const DefaultBillingMethod = "Cash"

// ValidOrderStatus reports whether status is one of the known order statuses
func ValidOrderStatus(status int) bool {
	return status >= OrderStatusDeactivated && status <= OrderStatusCompleted
}

// RequiresShipping reports whether an order in this status must reference a shipping address
func RequiresShipping(status int) bool {
	return status == OrderStatusProcessing || status == OrderStatusCompleted
}

// Order is a cart (status 1) or a placed order. At most one cart exists per user.
type Order struct {
	ID                uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID           string           `gorm:"size:128;not null;index:idx_order_user_status" json:"user_uid"`
	Status            int              `gorm:"not null;index:idx_order_user_status" json:"status"`
	TotalAmount       types.Money      `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	ShippingAddressID *uint            `gorm:"index" json:"shipping_address_id"`
	Address           *ShippingAddress `gorm:"foreignKey:ShippingAddressID" json:"-"`
	BillingMethod     string           `gorm:"size:64;not null" json:"billing_method"`
	ContactPhone      *string          `gorm:"size:32" json:"contact_phone"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	Items             []OrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// OrderItem is one product line. PricePerUnit is captured when the line is added.
type OrderItem struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      uint            `gorm:"not null;index" json:"order_id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	PricePerUnit types.Money     `gorm:"type:decimal(12,2);not null" json:"price_per_unit"`
	CreatedAt    time.Time       `json:"created_at"`
}

// LineTotal is quantity times the captured unit price
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PricePerUnit.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (Order) TableName() string {
	return "orders"
}

func (OrderItem) TableName() string {
	return "order_items"
}
