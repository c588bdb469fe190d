package models

import (
	"time"
)

// ShippingAddress belongs to a user. A user has at most one default address.
type ShippingAddress struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUID   string    `gorm:"size:128;not null;index" json:"user_uid"`
	Address   string    `gorm:"size:1000;not null" json:"address"`
	IsDefault bool      `gorm:"not null" json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ShippingAddress) TableName() string {
	return "shipping_addresses"
}
