package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// authUserID reads the authenticated user's id set by the auth middleware.
func authUserID(c *fiber.Ctx) (int64, bool) {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

func authRole(c *fiber.Ctx) (string, bool) {
	role, ok := c.Locals("role").(string)
	return role, ok && role != ""
}

func parseIDParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
