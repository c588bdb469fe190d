// common.go
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
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/shopdb/internal/middleware"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/types"
	"github.com/localnerve/shopdb/internal/utils"
)

// Paging bounds the skip/limit query parameters of list routes
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// parsePage reads skip and limit. Negative or non-numeric values are rejected; limit is capped.
func (p Paging) parsePage(c *fiber.Ctx) (services.Page, error) {
	page := services.Page{Skip: 0, Limit: p.DefaultLimit}

	if raw := c.Query("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return page, types.BadRequest("pagination", "skip must be a non-negative integer")
		}
		page.Skip = skip
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return page, types.BadRequest("pagination", "limit must be a positive integer")
		}
		page.Limit = min(limit, p.MaxLimit)
	}

	return page, nil
}

// parseID reads a positive integer path parameter
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, types.BadRequest("params", "%s must be a positive integer, got '%s'", name, raw)
	}
	return uint(id), nil
}

// optionalQueryInt reads an integer query parameter, nil when absent
func optionalQueryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, types.BadRequest("params", "%s must be an integer", name)
	}
	return &value, nil
}

// bindJSON parses the request body into dest and validates it
func bindJSON(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return types.BadRequest("body", "Invalid request body: %v", err)
	}
	return types.ValidateStruct(dest)
}

// handleError writes the response for a failed operation.
// Known errors map through middleware.ErrorStatus; anything else is a logged 500.
func handleError(c *fiber.Ctx, err error, operation string) error {
	if code, message, ok := middleware.ErrorStatus(err); ok {
		return utils.ErrorResponse(c, code, message)
	}

	log.Printf("%s failed [request %v]: %v", operation, c.Locals("requestid"), err)
	return utils.ErrorResponse(c, fiber.StatusInternalServerError, fmt.Sprintf("%s failed", operation))
}
