package logger

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// quietPaths tidak dicatat (health probe & scrape).
var quietPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// LoggerMiddleware mencatat request beserta request id (locals "reqid").
func LoggerMiddleware() fiber.Handler {
	return logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			_, skip := quietPaths[c.Path()]
			return skip
		},
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Format:     "[${time}] ${locals:reqid} ${ip} - ${method} ${path} - ${status} - ${latency}\n",
	})
}
