package helper

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// FromFiberError dipasang sebagai fiber ErrorHandler: *fiber.Error → envelope JSON standar.
// Error lain (bug / storage) → 500 tanpa membocorkan pesan internal.
func FromFiberError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return JsonError(c, fe.Code, fe.Message)
	}
	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return JsonError(c, fiber.StatusInternalServerError, "")
}
