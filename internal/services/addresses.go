// addresses.go
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
	"strings"

	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/types"
	"gorm.io/gorm"
)

// AddressInput creates a shipping address
type AddressInput struct {
	Address   string `json:"address" validate:"required,min=1,max=1000"`
	IsDefault bool   `json:"is_default"`
}

// AddressUpdate changes the supplied address fields
type AddressUpdate struct {
	Address   *string `json:"address" validate:"omitempty,min=1,max=1000"`
	IsDefault *bool   `json:"is_default"`
}

// CreateShippingAddress adds an address for uid. The first address of a user is always the default,
// and a new default clears the previous one.
func CreateShippingAddress(db *gorm.DB, uid string, in AddressInput) (*models.ShippingAddress, error) {
	address := models.ShippingAddress{
		UserUID:   uid,
		Address:   strings.TrimSpace(in.Address),
		IsDefault: in.IsDefault,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := userExists(tx, uid); err != nil {
			return err
		}
		if err := checkDuplicateAddress(tx, uid, address.Address, 0); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.ShippingAddress{}).Where("user_uid = ?", uid).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			address.IsDefault = true
		}

		if address.IsDefault {
			if err := clearDefaultAddress(tx, uid, 0); err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	})
	if err != nil {
		return nil, err
	}

	return &address, nil
}

// ListShippingAddresses returns the user's addresses, default first then oldest first
func ListShippingAddresses(db *gorm.DB, uid string) ([]models.ShippingAddress, error) {
	addresses := []models.ShippingAddress{}
	err := tagged(db, "list_addresses").
		Where("user_uid = ?", uid).
		Order("is_default DESC").
		Order("created_at").
		Order("id").
		Find(&addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

// UpdateShippingAddress changes text and default flag. Clearing the default moves it to the
// next-oldest address; the only address of a user stays the default.
func UpdateShippingAddress(db *gorm.DB, uid string, id uint, in AddressUpdate) (*models.ShippingAddress, error) {
	var address models.ShippingAddress

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := loadUserAddress(tx, uid, id, &address); err != nil {
			return err
		}

		if in.Address != nil {
			text := strings.TrimSpace(*in.Address)
			if err := checkDuplicateAddress(tx, uid, text, id); err != nil {
				return err
			}
			address.Address = text
		}

		if in.IsDefault != nil && *in.IsDefault != address.IsDefault {
			if *in.IsDefault {
				if err := clearDefaultAddress(tx, uid, id); err != nil {
					return err
				}
			} else {
				next, err := nextOldestAddress(tx, uid, id)
				if err != nil {
					return err
				}
				if next == nil {
					return types.BadRequest("addresses", "The only shipping address of a user must remain the default")
				}
				if err := tx.Model(next).Update("is_default", true).Error; err != nil {
					return err
				}
			}
			address.IsDefault = *in.IsDefault
		}

		return tx.Save(&address).Error
	})
	if err != nil {
		return nil, err
	}

	return &address, nil
}

// DeleteShippingAddress removes an address. Deleting the default promotes the next-oldest address;
// the only address of a user, or one used by a processing or completed order, cannot be deleted.
// Cart and deactivated orders that referenced it lose the reference.
func DeleteShippingAddress(db *gorm.DB, uid string, id uint) (*models.ShippingAddress, error) {
	var address models.ShippingAddress

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := loadUserAddress(tx, uid, id, &address); err != nil {
			return err
		}

		var placed int64
		err := tx.Model(&models.Order{}).
			Where("shipping_address_id = ? AND status IN ?", id, []int{models.OrderStatusProcessing, models.OrderStatusCompleted}).
			Count(&placed).Error
		if err != nil {
			return err
		}
		if placed > 0 {
			return types.BadRequest("addresses", "Shipping address is used by a processing or completed order")
		}

		var next *models.ShippingAddress
		if address.IsDefault {
			next, err = nextOldestAddress(tx, uid, id)
			if err != nil {
				return err
			}
			if next == nil {
				return types.BadRequest("addresses", "Cannot delete the only shipping address of a user")
			}
		}

		err = tx.Model(&models.Order{}).
			Where("shipping_address_id = ?", id).
			Update("shipping_address_id", nil).Error
		if err != nil {
			return err
		}

		if err := tx.Delete(&address).Error; err != nil {
			return err
		}

		if next != nil {
			return tx.Model(next).Update("is_default", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &address, nil
}

// DefaultShippingAddress returns the user's default address, or nil when the user has none
func DefaultShippingAddress(tx *gorm.DB, uid string) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	err := tx.Where("user_uid = ? AND is_default = ?", uid, true).First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func loadUserAddress(tx *gorm.DB, uid string, id uint, address *models.ShippingAddress) error {
	return firstOr(tx.Where("id = ? AND user_uid = ?", id, uid), address, "Address not found")
}

func checkDuplicateAddress(tx *gorm.DB, uid, text string, exceptID uint) error {
	if text == "" {
		return types.BadRequest("addresses", "address must not be empty")
	}
	var count int64
	query := tx.Model(&models.ShippingAddress{}).Where("user_uid = ? AND address = ?", uid, text)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return types.BadRequest("addresses", "Shipping address already exists for this user")
	}
	return nil
}

func clearDefaultAddress(tx *gorm.DB, uid string, exceptID uint) error {
	query := tx.Model(&models.ShippingAddress{}).Where("user_uid = ? AND is_default = ?", uid, true)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	return query.Update("is_default", false).Error
}

func nextOldestAddress(tx *gorm.DB, uid string, exceptID uint) (*models.ShippingAddress, error) {
	var next models.ShippingAddress
	err := tx.Where("user_uid = ? AND id <> ?", uid, exceptID).
		Order("created_at").
		Order("id").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &next, nil
}
