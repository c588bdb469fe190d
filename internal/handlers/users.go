package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/types"
	"gorm.io/gorm"
)

// UserHandler handles user routes
type UserHandler struct {
	DB   *gorm.DB
	Salt string
}

// CreateOrUpdateUser handles POST /users/
// @Summary Create or update a user
// @Description Insert a user by uid, or overwrite the supplied fields of an existing one. last_login is refreshed.
// @Tags Users
// @Accept json
// @Produce json
// @Param user body services.UserInput true "User"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /users/ [post]
func (h *UserHandler) CreateOrUpdateUser(c *fiber.Ctx) error {
	var in services.UserInput
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err, "createOrUpdateUser")
	}

	user, err := services.CreateOrUpdateUser(h.DB.WithContext(c.UserContext()), h.Salt, in)
	if err != nil {
		return handleError(c, err, "createOrUpdateUser")
	}

	return c.JSON(user)
}

// GetUser handles GET /users/:uid
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param uid path string true "User uid"
// @Success 200 {object} models.User
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{uid} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := services.GetUserByUID(h.DB.WithContext(c.UserContext()), c.Params("uid"))
	if err != nil {
		return handleError(c, err, "getUser")
	}
	return c.JSON(user)
}

// VerifyPassword handles POST /users/verify-password
// @Summary Verify a user's password
// @Description Accepts uid and password as a JSON body or as query parameters. Unknown users verify false.
// @Tags Users
// @Accept json
// @Produce json
// @Param credentials body services.VerifyPasswordInput false "Credentials"
// @Param uid query string false "User uid"
// @Param password query string false "Password"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /users/verify-password [post]
func (h *UserHandler) VerifyPassword(c *fiber.Ctx) error {
	var in services.VerifyPasswordInput
	var err error
	if len(c.Body()) > 0 {
		err = c.BodyParser(&in)
	} else {
		err = c.QueryParser(&in)
	}
	if err != nil {
		return handleError(c, types.BadRequest("body", "Invalid credentials: %v", err), "verifyPassword")
	}
	if err := types.ValidateStruct(&in); err != nil {
		return handleError(c, err, "verifyPassword")
	}

	valid, err := services.VerifyPassword(h.DB.WithContext(c.UserContext()), h.Salt, in.UID, in.Password)
	if err != nil {
		return handleError(c, err, "verifyPassword")
	}

	return c.JSON(fiber.Map{"valid": valid})
}
