package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/types"
	"gorm.io/gorm"
)

// UserInput is the upsert payload. Nil fields leave an existing user's values alone.
type UserInput struct {
	UID         string  `json:"uid" validate:"required,max=128"`
	Provider    *string `json:"provider" validate:"omitempty,min=1,max=64"`
	Identifier  *string `json:"identifier" validate:"omitempty,min=1,max=255"`
	PhotoURL    *string `json:"photo_url" validate:"omitempty,max=1024"`
	DisplayName *string `json:"display_name" validate:"omitempty,max=255"`
	IsActive    *bool   `json:"is_active"`
	Password    *string `json:"password" validate:"omitempty,password"`
}

// VerifyPasswordInput is the body form of a password check
type VerifyPasswordInput struct {
	UID      string `json:"uid" query:"uid" validate:"required"`
	Password string `json:"password" query:"password" validate:"required"`
}

// HashPassword is the hex SHA-256 of password followed by salt
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// CreateOrUpdateUser inserts the user for in.UID or overwrites the supplied fields of the existing one.
// last_login is refreshed on every call.
func CreateOrUpdateUser(db *gorm.DB, salt string, in UserInput) (*models.User, error) {
	var user models.User
	now := time.Now().UTC()

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("uid = ?", in.UID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if in.Provider == nil || in.Identifier == nil {
				return types.BadRequest("users", "provider and identifier are required for a new user")
			}
			user = models.User{
				UID:       in.UID,
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			applyUserInput(&user, salt, in)
			user.LastLogin = &now
			if err := tx.Create(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return types.BadRequest("users", "user %s was created concurrently, retry", in.UID)
				}
				return err
			}
			return nil
		}
		if err != nil {
			return err
		}

		applyUserInput(&user, salt, in)
		user.LastLogin = &now
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func applyUserInput(user *models.User, salt string, in UserInput) {
	if in.Provider != nil {
		user.Provider = *in.Provider
	}
	if in.Identifier != nil {
		user.Identifier = *in.Identifier
	}
	if in.PhotoURL != nil {
		user.PhotoURL = in.PhotoURL
	}
	if in.DisplayName != nil {
		user.DisplayName = in.DisplayName
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Password != nil && *in.Password != "" {
		hash := HashPassword(*in.Password, salt)
		user.PasswordHash = &hash
	}
}

// GetUserByUID loads a user by external uid
func GetUserByUID(db *gorm.DB, uid string) (*models.User, error) {
	var user models.User
	if err := firstOr(db.Where("uid = ?", uid), &user, "User not found"); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyPassword reports whether password matches the stored hash for uid.
// Unknown users and users without a password verify false; only storage failures return an error.
func VerifyPassword(db *gorm.DB, salt, uid, password string) (bool, error) {
	user, err := GetUserByUID(db, uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if user.PasswordHash == nil {
		return false, nil
	}

	candidate := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(*user.PasswordHash)) == 1, nil
}

// userExists checks uid inside an open transaction
func userExists(tx *gorm.DB, uid string) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("uid = ?", uid).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound("User not found")
	}
	return nil
}
