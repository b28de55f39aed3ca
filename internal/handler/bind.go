package handler

import (
	"github.com/gofiber/fiber/v2"

	"studygen/internal/domain"
	"studygen/internal/validation"
)

// bindJSON decodes the request body into out and validates its struct tags.
func bindJSON(c *fiber.Ctx, v *validation.Validator, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return domain.NewValidationError("Invalid request body").WithContext("cause", err.Error())
	}
	return v.Struct(out)
}
