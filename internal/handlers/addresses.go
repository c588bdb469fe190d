package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/shopdb/internal/services"
	"gorm.io/gorm"
)

// AddressHandler handles shipping address routes under /user/:uid/addresses
type AddressHandler struct {
	DB *gorm.DB
}

// CreateAddress handles POST /user/:uid/addresses/
// @Summary Add a shipping address
// @Description The first address of a user becomes the default. is_default moves the default to this address.
// @Tags Shipping Addresses
// @Accept json
// @Produce json
// @Param uid path string true "User uid"
// @Param address body services.AddressInput true "Address"
// @Success 200 {object} models.ShippingAddress
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /user/{uid}/addresses/ [post]
func (h *AddressHandler) CreateAddress(c *fiber.Ctx) error {
	var in services.AddressInput
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err, "createAddress")
	}

	address, err := services.CreateShippingAddress(h.DB.WithContext(c.UserContext()), c.Params("uid"), in)
	if err != nil {
		return handleError(c, err, "createAddress")
	}
	return c.JSON(address)
}

// ListAddresses handles GET /user/:uid/addresses/
// @Summary List a user's shipping addresses
// @Tags Shipping Addresses
// @Produce json
// @Param uid path string true "User uid"
// @Success 200 {array} models.ShippingAddress
// @Router /user/{uid}/addresses/ [get]
func (h *AddressHandler) ListAddresses(c *fiber.Ctx) error {
	addresses, err := services.ListShippingAddresses(h.DB.WithContext(c.UserContext()), c.Params("uid"))
	if err != nil {
		return handleError(c, err, "listAddresses")
	}
	return c.JSON(addresses)
}

// UpdateAddress handles PUT /user/:uid/addresses/:address_id
// @Summary Update a shipping address
// @Tags Shipping Addresses
// @Accept json
// @Produce json
// @Param uid path string true "User uid"
// @Param address_id path int true "Address ID"
// @Param address body services.AddressUpdate true "Fields to change"
// @Success 200 {object} models.ShippingAddress
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /user/{uid}/addresses/{address_id} [put]
func (h *AddressHandler) UpdateAddress(c *fiber.Ctx) error {
	id, err := parseID(c, "address_id")
	if err != nil {
		return handleError(c, err, "updateAddress")
	}
	var in services.AddressUpdate
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err, "updateAddress")
	}

	address, err := services.UpdateShippingAddress(h.DB.WithContext(c.UserContext()), c.Params("uid"), id, in)
	if err != nil {
		return handleError(c, err, "updateAddress")
	}
	return c.JSON(address)
}

// DeleteAddress handles DELETE /user/:uid/addresses/:address_id
// @Summary Delete a shipping address
// @Description Deleting the default promotes the next-oldest address. The only address cannot be deleted.
// @Tags Shipping Addresses
// @Produce json
// @Param uid path string true "User uid"
// @Param address_id path int true "Address ID"
// @Success 200 {object} models.ShippingAddress
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /user/{uid}/addresses/{address_id} [delete]
func (h *AddressHandler) DeleteAddress(c *fiber.Ctx) error {
	id, err := parseID(c, "address_id")
	if err != nil {
		return handleError(c, err, "deleteAddress")
	}

	address, err := services.DeleteShippingAddress(h.DB.WithContext(c.UserContext()), c.Params("uid"), id)
	if err != nil {
		return handleError(c, err, "deleteAddress")
	}
	return c.JSON(address)
}
