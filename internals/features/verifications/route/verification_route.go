package route

import (
	"github.com/gofiber/fiber/v2"

	verifCtrl "compsphere_backend/internals/features/verifications/controller"
	"compsphere_backend/internals/middlewares"
)

// VerificationUserRoutes: peserta / anggota tim (mount di /api/u, sudah lewat AuthJWT).
func VerificationUserRoutes(r fiber.Router, ctl *verifCtrl.VerificationController) {
	// =====================
	// Team activity
	// =====================
	ta := r.Group("/teams/:team_id/activities/:activity_id/verification")
	ta.Get("/", ctl.GetTeamActivityVerification)
	ta.Post("/regenerate", ctl.RegenerateTeamActivityVerification)
	ta.Get("/qr", middlewares.QRRateLimiter(), ctl.TeamActivityQR)

	// =====================
	// Event registration
	// =====================
	er := r.Group("/event-registrations/:registration_id/verification")
	er.Get("/", ctl.GetRegistrationVerification)
	er.Post("/regenerate", ctl.RegenerateRegistrationVerification)
	er.Get("/qr", middlewares.QRRateLimiter(), ctl.RegistrationQR)
}

// VerificationAdminRoutes: panitia/admin (mount di /{ADMIN_PREFIX}, AuthJWT + OnlyRoles).
// Path di sini tercetak di QR; jangan diubah.
func VerificationAdminRoutes(r fiber.Router, ctl *verifCtrl.VerificationController) {
	// dashboard & jalur eksplisit dulu, triple 3-segmen paling akhir
	dash := r.Group("/dashboard")
	dash.Get("/activities/:activity_id/verifications", ctl.ListActivityVerifications)
	dash.Get("/events/:event_id/registration-verifications", ctl.ListEventRegistrationVerifications)

	r.Get("/verify/:token", ctl.ShowByToken)
	r.Post("/verify/:token", ctl.ConsumeByToken)

	r.Get("/verify-registration/:event_code/:user_id/:token", ctl.ShowRegistration)
	r.Post("/verify-registration/:event_code/:user_id/:token", ctl.ConsumeRegistration)

	r.Get("/:event_code/:activity_code/:team_code", ctl.ShowByTriple)
	r.Post("/:event_code/:activity_code/:team_code", ctl.ConsumeByTriple)
}
