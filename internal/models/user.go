package models

import (
	"time"
)

// User is a shopper identity, keyed by the external uid
type User struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UID          string     `gorm:"size:128;not null;uniqueIndex" json:"uid"`
	Provider     string     `gorm:"size:64;not null" json:"provider"`
	Identifier   string     `gorm:"size:255;not null" json:"identifier"`
	PhotoURL     *string    `gorm:"size:1024" json:"photo_url"`
	DisplayName  *string    `gorm:"size:255" json:"display_name"`
	PasswordHash *string    `gorm:"size:64" json:"-"`
	IsActive     bool       `gorm:"not null" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "user_info"
}
