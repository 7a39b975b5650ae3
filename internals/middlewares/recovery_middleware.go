package middlewares

import (
	"log"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RecoveryMiddleware mengubah panic menjadi 500 (lewat ErrorHandler) dan mencatat stack trace.
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Printf("[PANIC] reqid=%v %s %s: %v\n%s", c.Locals("reqid"), c.Method(), c.OriginalURL(), e, debug.Stack())
		},
	})
}
