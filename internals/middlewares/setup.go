package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"compsphere_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware global (urutan penting: recover paling luar).
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
