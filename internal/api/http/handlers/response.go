package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/solarcare/inverter-service/internal/validation"
	apperrors "github.com/solarcare/inverter-service/pkg/util"
)

// respond writes a success envelope after checking it against its tags.
// An envelope that breaks its own contract is never sent.
func respond(c *fiber.Ctx, status int, body any) error {
	if violations := validation.Check(body); len(violations) > 0 {
		return apperrors.NewInternalError(fmt.Errorf("invalid response envelope: %s", strings.Join(violations, "; ")))
	}
	return c.Status(status).JSON(body)
}

// parseBody decodes and validates the JSON request body into out.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	return validation.Struct(out)
}

// requireQuery returns the trimmed query value or a validation error naming it.
func requireQuery(c *fiber.Ctx, name string) (string, error) {
	value := strings.TrimSpace(c.Query(name))
	if value == "" {
		return "", apperrors.NewValidationError("validation failed", []string{name + " is required"})
	}
	return value, nil
}

// queryInt parses an optional positive integer. Absent values yield 0.
func queryInt(c *fiber.Ctx, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, apperrors.NewValidationError("invalid query parameters", []string{name + " must be a positive integer"})
	}
	return value, nil
}
