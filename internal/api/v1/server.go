package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// ServerInterface lists every operation served under /api/v1. The route
// paths mirror public/docs/v1/openapi.yml; keep both in sync.
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error

	PostDriverRegister(c *fiber.Ctx) error
	GetDriver(c *fiber.Ctx) error

	GetPlans(c *fiber.Ctx) error
	GetPlanPricing(c *fiber.Ctx) error

	GetSubscriptionStatus(c *fiber.Ctx) error
	PostSubscription(c *fiber.Ctx) error
	PostSubscriptionRenew(c *fiber.Ctx) error
	PostBatteryAssign(c *fiber.Ctx) error
	PostBatteryReturn(c *fiber.Ctx) error

	PostSwap(c *fiber.Ctx) error
	GetSwapHistory(c *fiber.Ctx) error
	PostSwapHistorySMS(c *fiber.Ctx) error
	GetSwapInvoice(c *fiber.Ctx) error
	GetSwapPenalty(c *fiber.Ctx) error

	PostLeave(c *fiber.Ctx) error
	PostLeaveWithBalance(c *fiber.Ctx) error
	PostLeaveApprove(c *fiber.Ctx) error
	PostLeaveReject(c *fiber.Ctx) error
	GetLeaveBalance(c *fiber.Ctx) error
	GetLeaveStatus(c *fiber.Ctx) error
	GetNearestDSK(c *fiber.Ctx) error

	GetNearestStations(c *fiber.Ctx) error
	GetStationAvailability(c *fiber.Ctx) error
	GetStationSearch(c *fiber.Ctx) error
	PutStationInventory(c *fiber.Ctx) error

	PostPaymentWebhook(c *fiber.Ctx) error
	GetPaymentStatus(c *fiber.Ctx) error
	GetPaymentHistory(c *fiber.Ctx) error

	GetLedgerExport(c *fiber.Ctx) error
}

// RegisterHandlers attaches all v1 operations to the given router group
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)

	router.Post("/drivers/register", si.PostDriverRegister)
	router.Get("/drivers/:phone", si.GetDriver)

	router.Get("/plans", si.GetPlans)
	router.Get("/plans/pricing", si.GetPlanPricing)

	router.Get("/subscriptions/status/:phone", si.GetSubscriptionStatus)
	router.Post("/subscriptions", si.PostSubscription)
	router.Post("/subscriptions/renew", si.PostSubscriptionRenew)
	router.Post("/subscriptions/:id/battery", si.PostBatteryAssign)
	router.Post("/subscriptions/:id/battery/return", si.PostBatteryReturn)

	router.Post("/swaps", si.PostSwap)
	router.Get("/swaps/history/:phone", si.GetSwapHistory)
	router.Post("/swaps/history/send-sms/:phone", si.PostSwapHistorySMS)
	router.Get("/swaps/invoice/:phone", si.GetSwapInvoice)
	router.Get("/swaps/penalty/:phone", si.GetSwapPenalty)

	router.Post("/dsk/leave", si.PostLeave)
	router.Post("/dsk/leave/with-balance", si.PostLeaveWithBalance)
	router.Post("/dsk/leave/:id/approve", si.PostLeaveApprove)
	router.Post("/dsk/leave/:id/reject", si.PostLeaveReject)
	router.Get("/dsk/leave-balance/:phone", si.GetLeaveBalance)
	router.Get("/dsk/leave-status/:phone", si.GetLeaveStatus)
	router.Get("/dsk/nearest", si.GetNearestDSK)

	router.Get("/stations/nearest", si.GetNearestStations)
	router.Get("/stations/availability", si.GetStationAvailability)
	router.Get("/stations/search", si.GetStationSearch)
	router.Put("/stations/:id/inventory", si.PutStationInventory)

	router.Post("/payments/webhook", si.PostPaymentWebhook)
	router.Get("/payments/status/:orderID", si.GetPaymentStatus)
	router.Get("/payments/history/:phone", si.GetPaymentHistory)

	router.Get("/ledger/exports/:period", si.GetLedgerExport)
}
