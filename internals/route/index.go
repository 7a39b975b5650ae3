// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	verifCtrl "compsphere_backend/internals/features/verifications/controller"
	routeDetails "compsphere_backend/internals/route/details"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, verif *verifCtrl.VerificationController, gatherer prometheus.Gatherer) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db, gatherer)

	// ===================== VERIFICATIONS =====================
	routeDetails.VerificationRoutes(app, verif)
}
