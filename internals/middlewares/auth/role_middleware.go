package auth

import (
	"log"

	"github.com/gofiber/fiber/v2"

	helperAuth "compsphere_backend/internals/helpers/auth"
)

// RoleMiddlewareWithCustomError validasi role + custom error message.
// Harus dipasang setelah AuthJWT.
func RoleMiddlewareWithCustomError(allowedRoles []string, customForbiddenMessage string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Locals(helperAuth.LocUserID) == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		if helperAuth.HasAnyRole(c, allowedRoles...) {
			return c.Next()
		}

		log.Printf("[DEBUG] role ditolak: %v (butuh salah satu %v)", helperAuth.GetRoles(c), allowedRoles)
		if customForbiddenMessage == "" {
			customForbiddenMessage = "Forbidden: you are not authorized to access this resource"
		}
		return fiber.NewError(fiber.StatusForbidden, customForbiddenMessage)
	}
}

// Shortcut biar lebih clean pemakaian
func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	return RoleMiddlewareWithCustomError(roles, customMessage)
}
