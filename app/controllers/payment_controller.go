package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/app/repository"
	"github.com/batterysmart/swapledger/internal/pkg/database"
	"github.com/batterysmart/swapledger/internal/pkg/notify"
	"github.com/batterysmart/swapledger/internal/pkg/payments"
)

// HandlePaymentWebhook ingests a gateway callback. The raw body is verified
// against the webhook secret before anything is parsed; deliveries are
// deduplicated by event id so gateway retries cannot settle an order twice.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	signature := c.Get("X-Razorpay-Signature")
	eventID := c.Get("X-Razorpay-Event-Id")

	svc := payments.NewServiceFromDB(database.GetDB(), nil)
	result, err := svc.HandleWebhook(c.Context(), c.Body(), signature, eventID)
	if err != nil {
		return respondError(c, err)
	}

	if result.Duplicate {
		return c.JSON(fiber.Map{"status": "ok", "duplicate": true})
	}

	// A settled renewal gets its confirmation SMS once the subscription is live.
	if result.Subscription != nil {
		if driver, derr := repository.GetGlobalFactory().GetDriverRepository().GetByID(result.Subscription.DriverID); derr == nil {
			planName := ""
			if result.Subscription.Plan != nil {
				planName = result.Subscription.Plan.Name
			}
			enqueueSMS(driver, models.SMSTypeSubscriptionConfirmation,
				notify.SubscriptionConfirmationMessage(planName, result.Subscription.EndDate))
		}
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"event":    result.EventType,
		"order_id": result.OrderID,
	})
}

// HandlePaymentStatus returns the current state of a payment order
func HandlePaymentStatus(c *fiber.Ctx) error {
	orderID := c.Params("orderID")

	svc := payments.NewServiceFromDB(database.GetDB(), nil)
	txn, err := svc.CheckStatus(c.Context(), orderID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"order_id":     txn.OrderID,
		"status":       txn.Status,
		"amount":       txn.Amount,
		"tax_amount":   txn.TaxAmount,
		"total_amount": txn.TotalAmount,
		"payment_link": txn.PaymentLink,
		"payment_date": txn.PaymentDate,
	})
}

// HandlePaymentHistory returns a driver's recent payment orders
func HandlePaymentHistory(c *fiber.Ctx) error {
	driver, err := driverFromPhoneParam(c)
	if err != nil {
		return respondError(c, err)
	}

	txns, err := repository.GetGlobalFactory().GetTransactionRepository().ListByDriver(driver.ID, 20)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"driver_id": driver.ID, "transactions": txns, "count": len(txns)})
}
