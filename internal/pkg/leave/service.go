// Package leave tracks the monthly leave allowance drivers get on their
// subscription and the request workflow around it. Allowance is consumed
// when a balance-checked request is created, not when it is approved; a
// rejection refunds whatever the request deducted.
package leave

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
)

// RequestInput describes a leave application.
type RequestInput struct {
	DriverID  uint      `json:"driver_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
}

// Summary is the driver-facing leave overview: this month's balance plus
// requests that still matter (pending ones and approved ones not yet over).
type Summary struct {
	Balance  *models.LeaveBalance        `json:"balance"`
	Pending  []models.DriverLeaveRequest `json:"pending"`
	Upcoming []models.DriverLeaveRequest `json:"upcoming"`
}

// Service provides leave balances and the request workflow.
type Service struct {
	repo Repository
}

// NewService creates a leave service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a leave service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// GetOrCreateBalance returns the driver's balance for the month containing
// at, creating the default allowance row on first touch. Safe under
// concurrent first touches: exactly one row per (driver, month) ever exists
// and every caller sees it.
func (s *Service) GetOrCreateBalance(ctx context.Context, driverID uint, at time.Time) (*models.LeaveBalance, error) {
	_ = ctx
	if driverID == 0 {
		return nil, apperrors.InvalidInput("driver_id is required")
	}
	if at.IsZero() {
		at = time.Now()
	}
	balance, created, err := s.repo.GetOrCreateBalance(driverID, models.MonthKey(at))
	if err != nil {
		return nil, err
	}
	if created {
		log.Debugf("[Leave] opened balance for driver %d month %s", driverID, balance.Month)
	}
	return balance, nil
}

// Request files a leave application without touching the allowance. The
// request starts pending and waits for an approve or reject.
func (s *Service) Request(ctx context.Context, in RequestInput) (*models.DriverLeaveRequest, error) {
	_ = ctx
	req, err := buildRequest(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateRequest(req); err != nil {
		return nil, err
	}
	return req, nil
}

// RequestWithBalance files a leave application paid from the monthly
// allowance. The balance check, the deduction and the request insert are one
// transaction; when the allowance cannot cover the requested days nothing is
// written and the error carries what is left. The days debit the month the
// leave starts in.
func (s *Service) RequestWithBalance(ctx context.Context, in RequestInput) (*models.DriverLeaveRequest, *models.LeaveBalance, error) {
	_ = ctx
	req, err := buildRequest(in)
	if err != nil {
		return nil, nil, err
	}
	days := req.Days()

	var balance *models.LeaveBalance
	err = s.repo.Transaction(func(tx Repository) error {
		b, _, err := tx.GetOrCreateBalance(in.DriverID, models.MonthKey(req.StartDate))
		if err != nil {
			return err
		}

		ok, err := tx.AddUsedLeaves(b.ID, days)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.InvalidInput("insufficient leave balance: %d day(s) remaining, %d requested",
				b.Remaining(), days)
		}

		req.DeductedDays = days
		if err := tx.CreateRequest(req); err != nil {
			return err
		}

		balance, err = tx.GetBalance(in.DriverID, b.Month)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return req, balance, nil
}

// Approve moves a pending request to approved. The transition is terminal;
// approving does not touch the allowance since balance-checked requests
// already paid at creation.
func (s *Service) Approve(ctx context.Context, requestID uint, actor string) (*models.DriverLeaveRequest, error) {
	return s.process(ctx, requestID, models.LeaveStatusApproved, actor)
}

// Reject moves a pending request to rejected and refunds whatever the
// request deducted at creation, atomically.
func (s *Service) Reject(ctx context.Context, requestID uint, actor string) (*models.DriverLeaveRequest, error) {
	return s.process(ctx, requestID, models.LeaveStatusRejected, actor)
}

func (s *Service) process(ctx context.Context, requestID uint, to, actor string) (*models.DriverLeaveRequest, error) {
	_ = ctx
	if requestID == 0 {
		return nil, apperrors.InvalidInput("request id is required")
	}

	var result *models.DriverLeaveRequest
	err := s.repo.Transaction(func(tx Repository) error {
		req, err := tx.GetRequest(requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("leave request %d", requestID)
			}
			return err
		}

		changed, err := tx.TransitionRequest(requestID, to, actor, time.Now())
		if err != nil {
			return err
		}
		if !changed {
			return apperrors.Conflict("leave request %d already %s", requestID, req.Status)
		}

		if to == models.LeaveStatusRejected && req.DeductedDays > 0 {
			b, _, err := tx.GetOrCreateBalance(req.DriverID, models.MonthKey(req.StartDate))
			if err != nil {
				return err
			}
			if _, err := tx.AddUsedLeaves(b.ID, -req.DeductedDays); err != nil {
				return err
			}
		}

		result, err = tx.GetRequest(requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Summary returns the driver's current month balance, pending requests and
// approved leaves that have not ended yet.
func (s *Service) Summary(ctx context.Context, driverID uint) (*Summary, error) {
	if driverID == 0 {
		return nil, apperrors.InvalidInput("driver_id is required")
	}

	today := time.Now()
	balance, err := s.GetOrCreateBalance(ctx, driverID, today)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.ListPending(driverID)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.repo.ListApprovedFrom(driverID, today)
	if err != nil {
		return nil, err
	}

	return &Summary{Balance: balance, Pending: pending, Upcoming: upcoming}, nil
}

func buildRequest(in RequestInput) (*models.DriverLeaveRequest, error) {
	if in.DriverID == 0 {
		return nil, apperrors.InvalidInput("driver_id is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, apperrors.InvalidInput("start_date and end_date are required")
	}
	start := dayOf(in.StartDate)
	end := dayOf(in.EndDate)
	if end.Before(start) {
		return nil, apperrors.InvalidInput("end_date %s is before start_date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	return &models.DriverLeaveRequest{
		DriverID:  in.DriverID,
		StartDate: start,
		EndDate:   end,
		Reason:    in.Reason,
		Status:    models.LeaveStatusPending,
	}, nil
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
