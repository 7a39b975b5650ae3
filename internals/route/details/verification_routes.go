package details

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"compsphere_backend/internals/configs"
	"compsphere_backend/internals/constants"
	verifCtrl "compsphere_backend/internals/features/verifications/controller"
	verifRoute "compsphere_backend/internals/features/verifications/route"
	authMiddleware "compsphere_backend/internals/middlewares/auth"
)

func VerificationRoutes(app *fiber.App, ctl *verifCtrl.VerificationController) {
	// admin membuka URL QR langsung dari browser → cookie access_token diterima untuk GET;
	// POST (consume / regenerate) tetap wajib Authorization: Bearer
	jwt := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:              configs.JWTSecret,
		AllowCookieFallback: true,
	})

	log.Println("[INFO] Mounting verification USER routes (/api/u)...")
	user := app.Group("/api/u", jwt)
	verifRoute.VerificationUserRoutes(user, ctl)

	log.Printf("[INFO] Mounting verification ADMIN routes (/%s)...", configs.AdminPrefix)
	admin := app.Group("/"+configs.AdminPrefix,
		jwt,
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("verifikasi QR"), constants.VerifierRoles...),
	)
	verifRoute.VerificationAdminRoutes(admin, ctl)
}
