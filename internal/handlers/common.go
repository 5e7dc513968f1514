// Package handlers wires the HTTP surface: request validation, dispatch
// to the adapters, and error-to-status mapping.
package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// allowedAudioMIME is the upload allow-list (mp3 and wav variants).
var allowedAudioMIME = map[string]bool{
	"audio/mpeg":     true,
	"audio/mp3":      true,
	"audio/wav":      true,
	"audio/x-wav":    true,
	"audio/wave":     true,
	"audio/vnd.wave": true,
}

func errorJSON(c *fiber.Ctx, status int, message, code string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}

// parseBody decodes and validates a JSON request body, replying 400
// itself when the body is malformed or misses required fields.
func parseBody(c *fiber.Ctx, dst any) bool {
	if err := c.BodyParser(dst); err != nil {
		errorJSON(c, fiber.StatusBadRequest, "Invalid request body", "ERR_BAD_BODY")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		errorJSON(c, fiber.StatusBadRequest, "Missing required fields", "ERR_MISSING_FIELDS")
		return false
	}
	return true
}
