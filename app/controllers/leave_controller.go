package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/app/repository"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/database"
	"github.com/batterysmart/swapledger/internal/pkg/leave"
	"github.com/batterysmart/swapledger/internal/pkg/notify"
)

// LeaveRequestBody is the body for the leave request endpoints
type LeaveRequestBody struct {
	PhoneNumber string `json:"phone_number"`
	StartDate   string `json:"start_date"` // YYYY-MM-DD
	EndDate     string `json:"end_date"`   // YYYY-MM-DD
	Reason      string `json:"reason"`
}

// ProcessLeaveBody is the body for approve/reject
type ProcessLeaveBody struct {
	ProcessedBy string `json:"processed_by"`
}

// HandleLeaveRequest files a leave application without touching the
// allowance; it waits in pending until someone processes it.
func HandleLeaveRequest(c *fiber.Ctx) error {
	in, err := parseLeaveBody(c)
	if err != nil {
		return respondError(c, err)
	}

	svc := leave.NewServiceFromDB(database.GetDB())
	req, err := svc.Request(c.Context(), *in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request": req, "days": req.Days()})
}

// HandleLeaveRequestWithBalance files a leave application paid from the
// monthly allowance. When the balance cannot cover it nothing is written.
func HandleLeaveRequestWithBalance(c *fiber.Ctx) error {
	in, err := parseLeaveBody(c)
	if err != nil {
		return respondError(c, err)
	}

	svc := leave.NewServiceFromDB(database.GetDB())
	req, balance, err := svc.RequestWithBalance(c.Context(), *in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"request": req,
		"days":    req.Days(),
		"balance": balance,
	})
}

// HandleLeaveApprove moves a pending request to approved
func HandleLeaveApprove(c *fiber.Ctx) error {
	return processLeave(c, true)
}

// HandleLeaveReject moves a pending request to rejected and refunds any
// allowance the request deducted.
func HandleLeaveReject(c *fiber.Ctx) error {
	return processLeave(c, false)
}

func processLeave(c *fiber.Ctx, approve bool) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var body ProcessLeaveBody
	_ = c.BodyParser(&body)
	if body.ProcessedBy == "" {
		body.ProcessedBy = "system"
	}

	svc := leave.NewServiceFromDB(database.GetDB())
	var req *models.DriverLeaveRequest
	if approve {
		req, err = svc.Approve(c.Context(), id, body.ProcessedBy)
	} else {
		req, err = svc.Reject(c.Context(), id, body.ProcessedBy)
	}
	if err != nil {
		return respondError(c, err)
	}

	if driver, derr := repository.GetGlobalFactory().GetDriverRepository().GetByID(req.DriverID); derr == nil {
		enqueueSMS(driver, models.SMSTypeLeaveUpdate, notify.LeaveUpdateMessage(req))
	}
	return c.JSON(fiber.Map{"request": req})
}

// HandleLeaveBalance returns this month's allowance for a driver
func HandleLeaveBalance(c *fiber.Ctx) error {
	driver, err := driverFromPhoneParam(c)
	if err != nil {
		return respondError(c, err)
	}

	svc := leave.NewServiceFromDB(database.GetDB())
	balance, err := svc.GetOrCreateBalance(c.Context(), driver.ID, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"driver_id": driver.ID,
		"balance":   balance,
		"remaining": balance.Remaining(),
	})
}

// HandleLeaveStatus returns the balance plus pending and upcoming leaves
func HandleLeaveStatus(c *fiber.Ctx) error {
	driver, err := driverFromPhoneParam(c)
	if err != nil {
		return respondError(c, err)
	}

	svc := leave.NewServiceFromDB(database.GetDB())
	summary, err := svc.Summary(c.Context(), driver.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"driver_id": driver.ID,
		"balance":   summary.Balance,
		"pending":   summary.Pending,
		"upcoming":  summary.Upcoming,
	})
}

func parseLeaveBody(c *fiber.Ctx) (*leave.RequestInput, error) {
	var body LeaveRequestBody
	if err := c.BodyParser(&body); err != nil {
		return nil, apperrors.InvalidInput("malformed request body")
	}
	driver, err := driverByPhone(body.PhoneNumber)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid start_date %q, want YYYY-MM-DD", body.StartDate)
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid end_date %q, want YYYY-MM-DD", body.EndDate)
	}

	return &leave.RequestInput{
		DriverID:  driver.ID,
		StartDate: start,
		EndDate:   end,
		Reason:    body.Reason,
	}, nil
}
