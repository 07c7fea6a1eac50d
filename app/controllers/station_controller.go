package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/app/repository"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/geo"
)

// HandleNearestStations ranks active stations by distance from the given
// coordinates, closest first, with live availability for each.
func HandleNearestStations(c *fiber.Ctx) error {
	lat, lon, err := parseCoordinates(c)
	if err != nil {
		return respondError(c, err)
	}
	maxKm, _ := strconv.ParseFloat(c.Query("max_km", "0"), 64)
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	stations, err := repository.GetGlobalFactory().GetStationRepository().ListActiveWithInventory()
	if err != nil {
		return respondError(c, err)
	}

	ranked := geo.NearestStations(lat, lon, stations, maxKm, limit)
	results := make([]fiber.Map, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, stationView(&r.Station, r.DistanceKm))
	}

	return c.JSON(fiber.Map{"stations": results, "count": len(results)})
}

// HandleStationAvailability lists stations with their battery availability,
// optionally filtered by city.
func HandleStationAvailability(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetStationRepository()

	var (
		stations []models.Station
		err      error
	)
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		stations, err = repo.ListByCity(city)
	} else {
		stations, err = repo.ListActiveWithInventory()
	}
	if err != nil {
		return respondError(c, err)
	}

	results := make([]fiber.Map, 0, len(stations))
	for i := range stations {
		results = append(results, stationView(&stations[i], -1))
	}
	return c.JSON(fiber.Map{"stations": results, "count": len(results)})
}

// HandleStationSearch finds stations by name, code or locality text
func HandleStationSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return respondError(c, apperrors.InvalidInput("query parameter q is required"))
	}

	stations, err := repository.GetGlobalFactory().GetStationRepository().Search(query)
	if err != nil {
		return respondError(c, err)
	}

	results := make([]fiber.Map, 0, len(stations))
	for i := range stations {
		results = append(results, stationView(&stations[i], -1))
	}
	return c.JSON(fiber.Map{"stations": results, "count": len(results)})
}

// UpsertInventoryRequest is the body for PUT /stations/:id/inventory
type UpsertInventoryRequest struct {
	AvailableBatteries int `json:"available_batteries"`
	ChargingBatteries  int `json:"charging_batteries"`
	TotalSlots         int `json:"total_slots"`
}

// HandleUpsertStationInventory overwrites a station's battery counts from a
// telemetry report. Counter deltas buffered in Redis still apply on top at
// the next flush.
func HandleUpsertStationInventory(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req UpsertInventoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "message": "Malformed request body"})
	}
	if req.AvailableBatteries < 0 || req.ChargingBatteries < 0 || req.TotalSlots <= 0 {
		return respondError(c, apperrors.InvalidInput("battery counts must be non-negative and total_slots positive"))
	}

	repo := repository.GetGlobalFactory().GetStationRepository()
	if _, err := repo.GetByID(id); err != nil {
		return respondError(c, apperrors.NotFound("station %d", id))
	}

	inv := &models.StationInventory{
		StationID:          id,
		AvailableBatteries: req.AvailableBatteries,
		ChargingBatteries:  req.ChargingBatteries,
		TotalSlots:         req.TotalSlots,
	}
	if err := repo.UpsertInventory(inv); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"inventory": inv})
}

// stationView flattens a station row with its availability for JSON output.
// A negative distance means the caller did not rank by location.
func stationView(st *models.Station, distanceKm float64) fiber.Map {
	view := fiber.Map{
		"id":              st.ID,
		"code":            st.Code,
		"name":            st.Name,
		"address":         st.Address,
		"landmark":        st.Landmark,
		"city":            st.City,
		"latitude":        st.Latitude,
		"longitude":       st.Longitude,
		"operating_hours": st.OperatingHours,
		"contact_phone":   st.ContactPhone,
	}
	if distanceKm >= 0 {
		view["distance_km"] = distanceKm
	}
	if st.Inventory != nil {
		view["available_batteries"] = st.Inventory.AvailableBatteries
		view["charging_batteries"] = st.Inventory.ChargingBatteries
		view["total_slots"] = st.Inventory.TotalSlots
		view["availability"] = models.AvailabilityStatus(st.Inventory.AvailableBatteries)
		view["occupancy_percent"] = models.OccupancyPercent(st.Inventory.TotalSlots, st.Inventory.AvailableBatteries)
	} else {
		view["availability"] = models.StationAvailabilityLow
	}
	return view
}

func parseCoordinates(c *fiber.Ctx) (float64, float64, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return 0, 0, apperrors.InvalidInput("query parameter lat is required")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return 0, 0, apperrors.InvalidInput("query parameter lon is required")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, apperrors.InvalidInput("coordinates out of range")
	}
	return lat, lon, nil
}
