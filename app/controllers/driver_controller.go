package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/app/repository"
)

// RegisterDriverRequest is the body for POST /drivers/register
type RegisterDriverRequest struct {
	PhoneNumber       string `json:"phone_number"`
	Name              string `json:"name"`
	PreferredLanguage string `json:"preferred_language"`
	City              string `json:"city"`
	VehicleNumber     string `json:"vehicle_number"`
}

// HandleRegisterDriver enrolls a new driver. Registration is idempotent on
// the phone number: re-registering an existing driver returns the stored row.
func HandleRegisterDriver(c *fiber.Ctx) error {
	var req RegisterDriverRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "message": "Malformed request body"})
	}

	driver := &models.Driver{
		PhoneNumber:       strings.TrimSpace(req.PhoneNumber),
		Name:              strings.TrimSpace(req.Name),
		PreferredLanguage: req.PreferredLanguage,
		City:              req.City,
		VehicleNumber:     req.VehicleNumber,
		IsActive:          true,
	}
	if driver.PreferredLanguage == "" {
		driver.PreferredLanguage = models.LanguageHindi
	}
	if err := driver.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "message": err.Error()})
	}

	repo := repository.GetGlobalFactory().GetDriverRepository()
	if existing, err := repo.GetByPhone(driver.PhoneNumber); err == nil && existing != nil {
		return c.JSON(fiber.Map{"driver": existing, "created": false})
	}

	if err := repo.Create(driver); err != nil {
		return respondError(c, err)
	}

	log.Infof("[API] registered driver %d (%s)", driver.ID, driver.PhoneNumber)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"driver": driver, "created": true})
}

// HandleGetDriver returns the driver profile for a phone number
func HandleGetDriver(c *fiber.Ctx) error {
	driver, err := driverFromPhoneParam(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"driver": driver})
}
