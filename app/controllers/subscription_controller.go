package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/app/repository"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/database"
	"github.com/batterysmart/swapledger/internal/pkg/jobqueue"
	"github.com/batterysmart/swapledger/internal/pkg/ledger"
	"github.com/batterysmart/swapledger/internal/pkg/notify"
	"github.com/batterysmart/swapledger/internal/pkg/payments"
)

// HandleSubscriptionStatus returns the driver's entitlement view: active
// subscription, plan, remaining quota, days left and the penalty projection.
func HandleSubscriptionStatus(c *fiber.Ctx) error {
	driver, err := driverFromPhoneParam(c)
	if err != nil {
		return respondError(c, err)
	}

	svc := ledger.NewServiceFromDB(database.GetDB())
	view, err := svc.GetEntitlement(c.Context(), driver.ID)
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{
		"driver":          driver,
		"subscription":    view.Subscription,
		"plan":            view.Plan,
		"swaps_remaining": view.SwapsRemaining,
		"days_remaining":  view.DaysRemaining,
		"expiring_soon":   view.IsExpiringSoon,
		"penalty":         view.Penalty,
	}
	if view.IntegrityWarning {
		resp["warning"] = "multiple active subscriptions found; serving the most recent"
	}
	return c.JSON(resp)
}

// CreateSubscriptionRequest is the body for POST /subscriptions
type CreateSubscriptionRequest struct {
	PhoneNumber string `json:"phone_number"`
	PlanCode    string `json:"plan_code"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD, defaults to today
}

// HandleCreateSubscription starts a subscription on a plan, expiring any
// prior active one, and queues the confirmation SMS.
func HandleCreateSubscription(c *fiber.Ctx) error {
	var req CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "message": "Malformed request body"})
	}

	driver, err := driverByPhone(req.PhoneNumber)
	if err != nil {
		return respondError(c, err)
	}

	var start time.Time
	if req.StartDate != "" {
		start, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return respondError(c, apperrors.InvalidInput("invalid start_date %q, want YYYY-MM-DD", req.StartDate))
		}
	}

	svc := ledger.NewServiceFromDB(database.GetDB())
	sub, err := svc.CreateSubscription(c.Context(), driver.ID, req.PlanCode, start)
	if err != nil {
		return respondError(c, err)
	}

	if sub.Plan != nil {
		enqueueSMS(driver, models.SMSTypeSubscriptionConfirmation,
			notify.SubscriptionConfirmationMessage(sub.Plan.Name, sub.EndDate))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"subscription": sub})
}

// RenewSubscriptionRequest is the body for POST /subscriptions/renew
type RenewSubscriptionRequest struct {
	PhoneNumber string `json:"phone_number"`
	PlanCode    string `json:"plan_code"`
}

// HandleRenewSubscription opens a payment order for a renewal and queues the
// payment link SMS. The subscription itself is only extended once the
// gateway confirms the payment via webhook.
func HandleRenewSubscription(c *fiber.Ctx) error {
	var req RenewSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "message": "Malformed request body"})
	}

	driver, err := driverByPhone(req.PhoneNumber)
	if err != nil {
		return respondError(c, err)
	}
	plan, err := repository.GetGlobalFactory().GetPlanRepository().GetByCode(req.PlanCode)
	if err != nil {
		return respondError(c, apperrors.NotFound("plan %q", req.PlanCode))
	}

	svc := payments.NewServiceFromDB(database.GetDB(), nil)
	txn, err := svc.CreateOrder(c.Context(), driver, plan)
	if err != nil {
		return respondError(c, err)
	}

	enqueueSMS(driver, models.SMSTypePaymentLink,
		notify.PaymentLinkMessage(plan.Name, txn.TotalAmount, txn.PaymentLink))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_id":     txn.OrderID,
		"payment_link": txn.PaymentLink,
		"amount":       txn.Amount,
		"tax_amount":   txn.TaxAmount,
		"total_amount": txn.TotalAmount,
		"status":       txn.Status,
	})
}

// HandleBatteryReturn marks the subscription's battery as returned. The
// write is idempotent; repeating it reports already_returned.
func HandleBatteryReturn(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	svc := ledger.NewServiceFromDB(database.GetDB())
	sub, changed, err := svc.MarkReturned(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"subscription":     sub,
		"already_returned": !changed,
	})
}

// AssignBatteryRequest is the body for POST /subscriptions/:id/battery
type AssignBatteryRequest struct {
	BatteryID string `json:"battery_id"`
}

// HandleAssignBattery records which physical battery the driver holds
func HandleAssignBattery(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req AssignBatteryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_input", "message": "Malformed request body"})
	}

	svc := ledger.NewServiceFromDB(database.GetDB())
	if err := svc.AssignBattery(c.Context(), id, req.BatteryID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"subscription_id": id, "battery_id": req.BatteryID})
}

// driverByPhone resolves a phone number from a request body to a driver row
func driverByPhone(phone string) (*models.Driver, error) {
	if !models.IsValidPhoneNumber(phone) {
		return nil, apperrors.InvalidInput("invalid phone number %q", phone)
	}
	driver, err := repository.GetGlobalFactory().GetDriverRepository().GetByPhone(phone)
	if err != nil {
		return nil, apperrors.NotFound("driver with phone %s", phone)
	}
	return driver, nil
}

// enqueueSMS queues an SMS job for the driver. Notification delivery is best
// effort; a full queue never fails the request that triggered it.
func enqueueSMS(driver *models.Driver, messageType, content string) {
	payload := jobqueue.SMSNotificationJobPayload{
		DriverID:    &driver.ID,
		Phone:       driver.PhoneNumber,
		MessageType: messageType,
		Content:     content,
	}
	if _, err := jobqueue.GetManager().GetQueue().EnqueueJob(jobqueue.JobTypeSMSNotification, payload.ToMap()); err != nil {
		log.Warnf("[API] could not queue %s SMS for driver %d: %v", messageType, driver.ID, err)
	}
}
