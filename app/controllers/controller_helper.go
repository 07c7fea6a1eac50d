package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/app/repository"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
)

// respondError maps the ledger error taxonomy onto HTTP responses. Anything
// outside the taxonomy is a 500 with the detail kept in the server log.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case apperrors.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": err.Error()})
	case apperrors.IsInvalidInput(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "message": err.Error()})
	case apperrors.IsConflict(err):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "conflict", "message": err.Error()})
	case apperrors.IsIntegrityViolation(err):
		log.Errorf("[API] integrity violation: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "integrity_violation", "message": "Ledger state is inconsistent; the issue has been logged"})
	default:
		log.Errorf("[API] unhandled error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Unexpected error"})
	}
}

// driverFromPhoneParam resolves the :phone route param to a driver row.
func driverFromPhoneParam(c *fiber.Ctx) (*models.Driver, error) {
	phone := strings.TrimSpace(c.Params("phone"))
	if !models.IsValidPhoneNumber(phone) {
		return nil, apperrors.InvalidInput("invalid phone number %q", phone)
	}

	driver, err := repository.GetGlobalFactory().GetDriverRepository().GetByPhone(phone)
	if err != nil {
		return nil, apperrors.NotFound("driver with phone %s", phone)
	}
	return driver, nil
}

// parseIDParam reads a positive integer route param.
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.InvalidInput("invalid %s %q", name, raw)
	}
	return uint(id), nil
}
