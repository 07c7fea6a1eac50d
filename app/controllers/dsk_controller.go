package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/app/repository"
	"github.com/batterysmart/swapledger/internal/pkg/geo"
)

// HandleNearestDSK lists driver seva kendras, ranked by distance when
// coordinates are given, otherwise filtered by city. service_type narrows to
// centers offering that service.
func HandleNearestDSK(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetDSKRepository()

	var (
		centers []models.DSKCenter
		err     error
	)
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		centers, err = repo.ListByCity(city)
	} else {
		centers, err = repo.ListActive()
	}
	if err != nil {
		return respondError(c, err)
	}

	if serviceType := strings.TrimSpace(c.Query("service_type")); serviceType != "" {
		filtered := centers[:0]
		for _, center := range centers {
			if center.OffersService(serviceType) {
				filtered = append(filtered, center)
			}
		}
		centers = filtered
	}

	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if latRaw != "" && lonRaw != "" {
		lat, lon, perr := parseCoordinates(c)
		if perr != nil {
			return respondError(c, perr)
		}
		limit, _ := strconv.Atoi(c.Query("limit", "0"))
		ranked := geo.NearestCenters(lat, lon, centers, limit)

		results := make([]fiber.Map, 0, len(ranked))
		for _, r := range ranked {
			results = append(results, centerView(&r.Center, r.DistanceKm))
		}
		return c.JSON(fiber.Map{"centers": results, "count": len(results)})
	}

	results := make([]fiber.Map, 0, len(centers))
	for i := range centers {
		results = append(results, centerView(&centers[i], -1))
	}
	return c.JSON(fiber.Map{"centers": results, "count": len(results)})
}

func centerView(center *models.DSKCenter, distanceKm float64) fiber.Map {
	view := fiber.Map{
		"id":              center.ID,
		"code":            center.Code,
		"name":            center.Name,
		"address":         center.Address,
		"landmark":        center.Landmark,
		"city":            center.City,
		"latitude":        center.Latitude,
		"longitude":       center.Longitude,
		"contact_phone":   center.ContactPhone,
		"operating_hours": center.OperatingHours,
		"services":        center.ServiceList(),
	}
	if distanceKm >= 0 {
		view["distance_km"] = distanceKm
	}
	return view
}
