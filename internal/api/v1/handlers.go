package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to the controllers so every surface shares one behavior
	"github.com/batterysmart/swapledger/app/controllers"
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

func (s *APIServer) PostDriverRegister(c *fiber.Ctx) error {
	return controllers.HandleRegisterDriver(c)
}

func (s *APIServer) GetDriver(c *fiber.Ctx) error {
	return controllers.HandleGetDriver(c)
}

func (s *APIServer) GetPlans(c *fiber.Ctx) error {
	return controllers.HandleListPlans(c)
}

func (s *APIServer) GetPlanPricing(c *fiber.Ctx) error {
	return controllers.HandlePlanPricing(c)
}

func (s *APIServer) GetSubscriptionStatus(c *fiber.Ctx) error {
	return controllers.HandleSubscriptionStatus(c)
}

func (s *APIServer) PostSubscription(c *fiber.Ctx) error {
	return controllers.HandleCreateSubscription(c)
}

func (s *APIServer) PostSubscriptionRenew(c *fiber.Ctx) error {
	return controllers.HandleRenewSubscription(c)
}

func (s *APIServer) PostBatteryAssign(c *fiber.Ctx) error {
	return controllers.HandleAssignBattery(c)
}

func (s *APIServer) PostBatteryReturn(c *fiber.Ctx) error {
	return controllers.HandleBatteryReturn(c)
}

func (s *APIServer) PostSwap(c *fiber.Ctx) error {
	return controllers.HandleRecordSwap(c)
}

func (s *APIServer) GetSwapHistory(c *fiber.Ctx) error {
	return controllers.HandleSwapHistory(c)
}

func (s *APIServer) PostSwapHistorySMS(c *fiber.Ctx) error {
	return controllers.HandleSendHistorySMS(c)
}

func (s *APIServer) GetSwapInvoice(c *fiber.Ctx) error {
	return controllers.HandleSwapInvoice(c)
}

func (s *APIServer) GetSwapPenalty(c *fiber.Ctx) error {
	return controllers.HandleSwapPenalty(c)
}

func (s *APIServer) PostLeave(c *fiber.Ctx) error {
	return controllers.HandleLeaveRequest(c)
}

func (s *APIServer) PostLeaveWithBalance(c *fiber.Ctx) error {
	return controllers.HandleLeaveRequestWithBalance(c)
}

func (s *APIServer) PostLeaveApprove(c *fiber.Ctx) error {
	return controllers.HandleLeaveApprove(c)
}

func (s *APIServer) PostLeaveReject(c *fiber.Ctx) error {
	return controllers.HandleLeaveReject(c)
}

func (s *APIServer) GetLeaveBalance(c *fiber.Ctx) error {
	return controllers.HandleLeaveBalance(c)
}

func (s *APIServer) GetLeaveStatus(c *fiber.Ctx) error {
	return controllers.HandleLeaveStatus(c)
}

func (s *APIServer) GetNearestDSK(c *fiber.Ctx) error {
	return controllers.HandleNearestDSK(c)
}

func (s *APIServer) GetNearestStations(c *fiber.Ctx) error {
	return controllers.HandleNearestStations(c)
}

func (s *APIServer) GetStationAvailability(c *fiber.Ctx) error {
	return controllers.HandleStationAvailability(c)
}

func (s *APIServer) GetStationSearch(c *fiber.Ctx) error {
	return controllers.HandleStationSearch(c)
}

func (s *APIServer) PutStationInventory(c *fiber.Ctx) error {
	return controllers.HandleUpsertStationInventory(c)
}

func (s *APIServer) PostPaymentWebhook(c *fiber.Ctx) error {
	return controllers.HandlePaymentWebhook(c)
}

func (s *APIServer) GetPaymentStatus(c *fiber.Ctx) error {
	return controllers.HandlePaymentStatus(c)
}

func (s *APIServer) GetPaymentHistory(c *fiber.Ctx) error {
	return controllers.HandlePaymentHistory(c)
}

func (s *APIServer) GetLedgerExport(c *fiber.Ctx) error {
	return controllers.HandleFetchLedgerExport(c)
}
