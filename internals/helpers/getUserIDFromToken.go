package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	helperAuth "compsphere_backend/internals/helpers/auth"
)

// GetUserIDFromToken membaca user_id yang diisi AuthJWT.
// 401 kalau belum login, 400 kalau formatnya tidak valid.
func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	var s string
	switch t := c.Locals(helperAuth.LocUserID).(type) {
	case nil:
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
	case uuid.UUID:
		if t == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
		}
		return t, nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "User ID pada token tidak valid")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "User belum login")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "User ID pada token tidak valid")
	}
	return id, nil
}

// ParseUUIDParam: path param → uuid, 400 kalau bukan UUID.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" tidak valid")
	}
	return id, nil
}
