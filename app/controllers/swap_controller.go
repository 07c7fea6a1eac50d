package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/database"
	"github.com/batterysmart/swapledger/internal/pkg/ledger"
	metrics "github.com/batterysmart/swapledger/internal/pkg/metrics/counter"
	"github.com/batterysmart/swapledger/internal/pkg/notify"
	"github.com/batterysmart/swapledger/internal/pkg/penalty"
)

// RecordSwapRequest is the body for POST /swaps
type RecordSwapRequest struct {
	PhoneNumber  string `json:"phone_number"`
	StationID    uint   `json:"station_id"`
	OldBatteryID string `json:"old_battery_id"`
	NewBatteryID string `json:"new_battery_id"`
	OldChargePct int    `json:"old_charge_pct"`
	NewChargePct int    `json:"new_charge_pct"`
	SwapTime     string `json:"swap_time"` // RFC 3339, defaults to now
}

// HandleRecordSwap books a battery exchange against the driver's
// entitlement. Covered swaps just bump the counter; overage swaps come back
// with the charge and its invoice number. Station inventory deltas are
// buffered in Redis and flushed by the background worker.
func HandleRecordSwap(c *fiber.Ctx) error {
	var req RecordSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "message": "Malformed request body"})
	}

	driver, err := driverByPhone(req.PhoneNumber)
	if err != nil {
		return respondError(c, err)
	}

	in := ledger.RecordSwapInput{
		DriverID:     driver.ID,
		StationID:    req.StationID,
		OldBatteryID: req.OldBatteryID,
		NewBatteryID: req.NewBatteryID,
		OldChargePct: req.OldChargePct,
		NewChargePct: req.NewChargePct,
	}
	if req.SwapTime != "" {
		t, perr := time.Parse(time.RFC3339, req.SwapTime)
		if perr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "message": "swap_time must be RFC 3339"})
		}
		in.SwapTime = t
	}

	svc := ledger.NewServiceFromDB(database.GetDB())
	result, err := svc.RecordSwap(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}

	// Inventory deltas: one charged battery out, one depleted battery in.
	if err := metrics.AddSwapOut(req.StationID); err != nil {
		log.Warnf("[API] swap-out counter for station %d: %v", req.StationID, err)
	}
	if err := metrics.AddBatteryCharging(req.StationID); err != nil {
		log.Warnf("[API] charging counter for station %d: %v", req.StationID, err)
	}

	resp := fiber.Map{
		"swap":            result.Swap,
		"covered":         result.Decision.Covered(),
		"coverage":        result.Decision.Coverage,
		"charge_amount":   result.Decision.ChargeAmount,
		"tax_amount":      result.Decision.TaxAmount,
		"total_amount":    result.Decision.TotalAmount,
		"swaps_remaining": result.SwapsRemaining,
	}
	if result.InvoiceNumber != "" {
		resp["invoice_number"] = result.InvoiceNumber

		detail, derr := svc.GetInvoiceDetail(c.Context(), driver.ID, result.InvoiceNumber)
		if derr == nil {
			enqueueSMS(driver, models.SMSTypeInvoice, notify.InvoiceMessage(&detail.Invoice))
		}
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// HandleSwapHistory returns the driver's swaps for a named period
func HandleSwapHistory(c *fiber.Ctx) error {
	driver, err := driverFromPhoneParam(c)
	if err != nil {
		return respondError(c, err)
	}

	period := c.Query("time_period", ledger.PeriodToday)
	svc := ledger.NewServiceFromDB(database.GetDB())
	history, err := svc.ListSwapHistory(c.Context(), driver.ID, period, 0)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"driver_id":     driver.ID,
		"time_period":   period,
		"from":          history.From,
		"to":            history.To,
		"swaps":         history.Entries,
		"count":         len(history.Entries),
		"total_charged": history.TotalCharged,
		"total_free":    history.TotalFree,
	})
}

// HandleSendHistorySMS queues the swap history summary as an SMS
func HandleSendHistorySMS(c *fiber.Ctx) error {
	driver, err := driverFromPhoneParam(c)
	if err != nil {
		return respondError(c, err)
	}

	period := c.Query("time_period", ledger.PeriodToday)
	svc := ledger.NewServiceFromDB(database.GetDB())
	history, err := svc.ListSwapHistory(c.Context(), driver.ID, period, 0)
	if err != nil {
		return respondError(c, err)
	}

	enqueueSMS(driver, models.SMSTypeSwapHistory, notify.SwapHistoryMessage(driver.Name, history))
	return c.JSON(fiber.Map{
		"queued":      true,
		"driver_id":   driver.ID,
		"time_period": period,
		"swap_count":  len(history.Entries),
	})
}

// HandleSwapInvoice returns an invoice with its breakdown. Without an
// invoice_number query the driver's latest invoice is served.
func HandleSwapInvoice(c *fiber.Ctx) error {
	driver, err := driverFromPhoneParam(c)
	if err != nil {
		return respondError(c, err)
	}

	number := c.Query("invoice_number")
	svc := ledger.NewServiceFromDB(database.GetDB())
	detail, err := svc.GetInvoiceDetail(c.Context(), driver.ID, number)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"invoice":   detail.Invoice,
		"breakdown": detail.Breakdown,
	})
}

// HandleSwapPenalty returns the live penalty projection plus any penalty
// records already assessed and unpaid.
func HandleSwapPenalty(c *fiber.Ctx) error {
	driver, err := driverFromPhoneParam(c)
	if err != nil {
		return respondError(c, err)
	}

	engine := penalty.NewEngine(database.GetDB(), penalty.LoadConfig())
	projection, sub, err := engine.ForDriver(c.Context(), driver.ID, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	pending, err := engine.PendingForDriver(c.Context(), driver.ID)
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{
		"driver_id": driver.ID,
		"penalty":   projection,
		"pending":   pending,
	}
	if sub != nil {
		resp["subscription_id"] = sub.ID
		resp["battery_returned"] = sub.BatteryReturned
	}
	return c.JSON(resp)
}
