package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"compsphere_backend/internals/constants"
	helperAuth "compsphere_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret string
	// AllowCookieFallback: cookie access_token dipakai kalau tidak ada Bearer,
	// hanya untuk GET/HEAD (request yang mengubah state wajib Bearer)
	AllowCookieFallback bool
}

// AuthJWT verifies an HMAC bearer token and hydrates user_id / role / roles into Locals.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}

	return func(c *fiber.Ctx) error {
		// 1) Authorization: Bearer xxx (atau cookie jika diizinkan)
		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.Trim(strings.TrimSpace(authz[7:]), "\"'")
		} else if o.AllowCookieFallback && isSafeMethod(c.Method()) {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		// 2) parse + verifikasi algoritma (exp dicek oleh jwt.MapClaims.Valid)
		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}
		c.Locals(helperAuth.LocClaims, claims)

		// user_id: id / sub / user_id sesuai urutan preferensi
		uid := firstNonEmpty(strClaim(claims, "id"), strClaim(claims, "sub"), strClaim(claims, "user_id"))
		if _, err := uuid.Parse(uid); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "user_id pada token tidak valid")
		}
		c.Locals(helperAuth.LocUserID, uid)

		roles := readStringSlice(claims["roles_global"])
		roles = append(roles, readStringSlice(claims["roles"])...)
		c.Locals(helperAuth.LocRoles, roles)

		role := strings.ToLower(strClaim(claims, "role"))
		if role == "" {
			role = constants.RoleUser
		}
		c.Locals(helperAuth.LocRole, role)

		return c.Next()
	}
}

func isSafeMethod(m string) bool {
	return m == fiber.MethodGet || m == fiber.MethodHead
}

// util kecil untuk ambil string claim
func strClaim(m jwt.MapClaims, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// util: interface{} → []string (robust untuk []string atau []any)
func readStringSlice(v any) []string {
	out := make([]string, 0)
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, it := range t {
			if s, ok := it.(string); ok {
				if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
