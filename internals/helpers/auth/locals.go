package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Keys c.Locals yang diisi middleware AuthJWT.
const (
	LocUserID = "user_id"    // string UUID
	LocRole   = "role"       // string, role utama (legacy single role)
	LocRoles  = "roles"      // []string
	LocClaims = "jwt_claims" // jwt.MapClaims
)

// GetRoles membaca daftar role dari Locals; role tunggal ikut digabung.
func GetRoles(c *fiber.Ctx) []string {
	out := make([]string, 0, 2)
	if v, ok := c.Locals(LocRoles).([]string); ok {
		out = append(out, v...)
	}
	if r, ok := c.Locals(LocRole).(string); ok && strings.TrimSpace(r) != "" {
		out = append(out, r)
	}
	return out
}

func HasAnyRole(c *fiber.Ctx, allowed ...string) bool {
	for _, r := range GetRoles(c) {
		r = strings.ToLower(strings.TrimSpace(r))
		for _, a := range allowed {
			if r == a {
				return true
			}
		}
	}
	return false
}
