// Package ledger is the transactional core of the swap subscription system:
// it decides coverage for every battery exchange, keeps the usage counters
// monotonic, and allocates invoice numbers from per-month counter rows.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/entitlements"
	"github.com/batterysmart/swapledger/internal/pkg/penalty"
)

// consumeRetries bounds the optimistic retry loop in RecordSwap. Each retry
// re-reads the usage counter after a concurrent swap moved it.
const consumeRetries = 5

// errCounterMoved signals that the guarded increment lost a race and the
// whole read-decide-increment transaction must run again.
var errCounterMoved = errors.New("usage counter moved")

// Service provides subscription entitlement checks, swap recording and
// invoice issuance on top of the ledger repository.
type Service struct {
	repo       Repository
	penaltyCfg penalty.Config
}

// NewService creates a ledger service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, penaltyCfg: penalty.DefaultConfig()}
}

// NewServiceFromDB creates a ledger service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// GetEntitlement resolves the driver's active subscription into the full
// entitlement view. Exactly one active subscription is the invariant; when
// several exist the most recently started one wins, the condition is logged
// and the view carries an integrity warning instead of failing the read.
func (s *Service) GetEntitlement(ctx context.Context, driverID uint) (*EntitlementView, error) {
	_ = ctx
	if driverID == 0 {
		return nil, apperrors.InvalidInput("driver_id is required")
	}

	today := time.Now()
	subs, err := s.repo.ListActiveSubscriptions(driverID, today)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, apperrors.NotFound("no active subscription for driver %d", driverID)
	}

	warning := false
	if len(subs) > 1 {
		warning = true
		log.Warnf("[Ledger] driver %d has %d active subscriptions, serving most recently started: %v",
			driverID, len(subs), apperrors.ErrIntegrityViolation)
	}

	sub := subs[0]
	plan := sub.Plan
	if plan == nil {
		plan, err = s.repo.GetPlanByID(sub.PlanID)
		if err != nil {
			return nil, err
		}
	}

	return &EntitlementView{
		Subscription:     &sub,
		Plan:             plan,
		SwapsRemaining:   entitlements.SwapsRemaining(plan, sub.SwapsUsed),
		DaysRemaining:    sub.DaysRemaining(today),
		IsExpiringSoon:   sub.IsExpiringSoon(today),
		Penalty:          penalty.Compute(&sub, today, s.penaltyCfg),
		IntegrityWarning: warning,
	}, nil
}

// CreateSubscription starts a new subscription on the given plan. Any
// subscription still active for the driver is expired first so the one-active
// invariant holds; both writes share a transaction.
func (s *Service) CreateSubscription(ctx context.Context, driverID uint, planCode string, startDate time.Time) (*models.DriverSubscription, error) {
	_ = ctx
	if driverID == 0 {
		return nil, apperrors.InvalidInput("driver_id is required")
	}

	exists, err := s.repo.DriverExists(driverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("driver %d", driverID)
	}

	plan, err := s.repo.GetPlanByCode(planCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("plan %q", planCode)
		}
		return nil, err
	}

	if startDate.IsZero() {
		startDate = time.Now()
	}
	start := dayOf(startDate)
	sub := &models.DriverSubscription{
		DriverID:  driverID,
		PlanID:    plan.ID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, plan.ValidityDays),
		Status:    models.SubscriptionStatusActive,
		SwapsUsed: 0,
	}

	err = s.repo.Transaction(func(tx Repository) error {
		expired, err := tx.ExpireActiveSubscriptions(driverID)
		if err != nil {
			return err
		}
		if expired > 0 {
			log.Infof("[Ledger] expired %d previous subscription(s) for driver %d", expired, driverID)
		}
		return tx.CreateSubscription(sub)
	})
	if err != nil {
		return nil, err
	}

	sub.Plan = plan
	return sub, nil
}

// ActivateOrExtend applies a paid renewal. A subscription still running is
// extended from its current end date; otherwise a fresh one starts today.
func (s *Service) ActivateOrExtend(ctx context.Context, driverID uint, planID uint) (*models.DriverSubscription, error) {
	_ = ctx
	plan, err := s.repo.GetPlanByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("plan %d", planID)
		}
		return nil, err
	}

	today := time.Now()
	var result *models.DriverSubscription
	err = s.repo.Transaction(func(tx Repository) error {
		subs, err := tx.ListActiveSubscriptions(driverID, today)
		if err != nil {
			return err
		}
		if len(subs) > 0 {
			current := subs[0]
			newEnd := current.EndDate.AddDate(0, 0, plan.ValidityDays)
			if err := tx.ExtendSubscription(current.ID, newEnd); err != nil {
				return err
			}
			updated, err := tx.GetSubscriptionWithPlan(current.ID)
			if err != nil {
				return err
			}
			result = updated
			return nil
		}

		if _, err := tx.ExpireActiveSubscriptions(driverID); err != nil {
			return err
		}
		start := dayOf(today)
		fresh := &models.DriverSubscription{
			DriverID:  driverID,
			PlanID:    plan.ID,
			StartDate: start,
			EndDate:   start.AddDate(0, 0, plan.ValidityDays),
			Status:    models.SubscriptionStatusActive,
		}
		if err := tx.CreateSubscription(fresh); err != nil {
			return err
		}
		fresh.Plan = plan
		result = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordSwap books one physical battery exchange: decide coverage, bump the
// usage counter, persist the event and, for an overage, bill the extra-swap
// charge with its invoice, all in one transaction. Usage counts whether or
// not the swap was covered, and the event is persisted either way. The
// guarded counter increment serializes concurrent swaps per subscription;
// losing the race re-runs the whole decision on fresh state.
func (s *Service) RecordSwap(ctx context.Context, in RecordSwapInput) (*SwapResult, error) {
	_ = ctx
	if in.DriverID == 0 || in.StationID == 0 {
		return nil, apperrors.InvalidInput("driver_id and station_id are required")
	}
	if !validChargePct(in.OldChargePct) || !validChargePct(in.NewChargePct) {
		return nil, apperrors.InvalidInput("charge percentage must be between 0 and 100")
	}

	exists, err := s.repo.DriverExists(in.DriverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("driver %d", in.DriverID)
	}
	exists, err = s.repo.StationExists(in.StationID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("station %d", in.StationID)
	}

	swapTime := in.SwapTime
	if swapTime.IsZero() {
		swapTime = time.Now()
	}

	for attempt := 0; attempt < consumeRetries; attempt++ {
		result, err := s.tryRecordSwap(in, swapTime)
		if errors.Is(err, errCounterMoved) {
			continue
		}
		return result, err
	}
	return nil, apperrors.Conflict("swap for driver %d not recorded after %d attempts", in.DriverID, consumeRetries)
}

func (s *Service) tryRecordSwap(in RecordSwapInput, swapTime time.Time) (*SwapResult, error) {
	var out *SwapResult
	err := s.repo.Transaction(func(tx Repository) error {
		subs, err := tx.ListActiveSubscriptions(in.DriverID, swapTime)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			return apperrors.NotFound("no active subscription for driver %d", in.DriverID)
		}
		if len(subs) > 1 {
			log.Warnf("[Ledger] driver %d has %d active subscriptions, charging most recently started: %v",
				in.DriverID, len(subs), apperrors.ErrIntegrityViolation)
		}

		sub := subs[0]
		plan := sub.Plan
		if plan == nil {
			plan, err = tx.GetPlanByID(sub.PlanID)
			if err != nil {
				return err
			}
		}

		dayStart := dayOf(swapTime)
		usedToday, err := tx.CountSwapsBetween(sub.ID, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return err
		}

		decision := entitlements.Decide(plan, sub.SwapsUsed, uint(usedToday))

		ok, err := tx.CompareAndIncrementSwapsUsed(sub.ID, sub.SwapsUsed)
		if err != nil {
			return err
		}
		if !ok {
			return errCounterMoved
		}

		swap := &models.SwapEvent{
			DriverID:           in.DriverID,
			StationID:          in.StationID,
			SubscriptionID:     &sub.ID,
			OldBatteryID:       in.OldBatteryID,
			NewBatteryID:       in.NewBatteryID,
			OldChargePct:       in.OldChargePct,
			NewChargePct:       in.NewChargePct,
			SwapTime:           swapTime,
			IsSubscriptionSwap: decision.Covered(),
			ChargeAmount:       decision.ChargeAmount,
			Status:             models.SwapStatusCompleted,
		}
		if err := tx.CreateSwap(swap); err != nil {
			return err
		}

		invoiceNumber := ""
		if !decision.Covered() {
			number, err := tx.NextInvoiceNumber(swapTime.Format("200601"))
			if err != nil {
				return err
			}
			inv := &models.Invoice{
				InvoiceNumber:  number,
				DriverID:       in.DriverID,
				SwapID:         &swap.ID,
				SubscriptionID: &sub.ID,
				InvoiceType:    models.InvoiceTypeExtraSwap,
				Amount:         decision.ChargeAmount,
				TaxAmount:      decision.TaxAmount,
				TotalAmount:    decision.TotalAmount,
				Description:    "Extra swap charge",
				DescriptionHi:  "अतिरिक्त स्वैप शुल्क",
				PaymentStatus:  models.InvoicePaymentPending,
				GeneratedAt:    swapTime,
			}
			if err := tx.CreateInvoice(inv); err != nil {
				return err
			}
			invoiceNumber = number
		}

		out = &SwapResult{
			Swap:           swap,
			Decision:       decision,
			SwapsRemaining: entitlements.SwapsRemaining(plan, sub.SwapsUsed+1),
			InvoiceNumber:  invoiceNumber,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateInvoice bills an arbitrary charge: tax and total are computed from
// the amount, the number is allocated from the period counter and the row is
// inserted, all in one transaction.
func (s *Service) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	_ = ctx
	if in.DriverID == 0 {
		return nil, apperrors.InvalidInput("driver_id is required")
	}
	if in.Amount < 0 {
		return nil, apperrors.InvalidInput("amount must not be negative")
	}
	if in.InvoiceType == "" {
		in.InvoiceType = models.InvoiceTypeSwap
	}

	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	tax := models.RoundMoney(in.Amount * in.GSTPercentage / 100)

	inv := &models.Invoice{
		DriverID:       in.DriverID,
		SwapID:         in.SwapID,
		SubscriptionID: in.SubscriptionID,
		InvoiceType:    in.InvoiceType,
		Amount:         in.Amount,
		TaxAmount:      tax,
		TotalAmount:    models.RoundMoney(in.Amount + tax),
		Description:    in.Description,
		DescriptionHi:  in.DescriptionHi,
		PaymentStatus:  models.InvoicePaymentPending,
		GeneratedAt:    generatedAt,
	}

	err := s.repo.Transaction(func(tx Repository) error {
		number, err := tx.NextInvoiceNumber(generatedAt.Format("200601"))
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
		return tx.CreateInvoice(inv)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// ListSwapHistory returns the driver's swaps for a named period or an
// explicit window, newest first, with billing totals for the window.
func (s *Service) ListSwapHistory(ctx context.Context, driverID uint, period string, limit int) (*SwapHistory, error) {
	_ = ctx
	if driverID == 0 {
		return nil, apperrors.InvalidInput("driver_id is required")
	}

	from, to, err := PeriodRange(time.Now(), period)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListSwapsBetween(driverID, from, to, limit)
	if err != nil {
		return nil, err
	}
	totalCharged, totalFree, err := s.repo.SwapTotalsBetween(driverID, from, to)
	if err != nil {
		return nil, err
	}

	return &SwapHistory{
		Entries:      entries,
		TotalCharged: totalCharged,
		TotalFree:    totalFree,
		From:         from,
		To:           to,
	}, nil
}

// GetInvoiceDetail fetches one invoice with its display breakdown. An empty
// number selects the driver's most recent invoice.
func (s *Service) GetInvoiceDetail(ctx context.Context, driverID uint, number string) (*InvoiceDetail, error) {
	_ = ctx
	if driverID == 0 {
		return nil, apperrors.InvalidInput("driver_id is required")
	}

	var (
		inv *models.Invoice
		err error
	)
	if number == "" {
		inv, err = s.repo.LatestInvoice(driverID)
	} else {
		inv, err = s.repo.GetInvoiceByNumber(driverID, number)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("invoice for driver %d", driverID)
		}
		return nil, err
	}

	return &InvoiceDetail{Invoice: *inv, Breakdown: breakdown(inv)}, nil
}

// MarkReturned records battery hand-back for a subscription. Already
// returned batteries are a no-op; the returned flag never flips back and no
// penalty accrues past this point.
func (s *Service) MarkReturned(ctx context.Context, subscriptionID uint) (*models.DriverSubscription, bool, error) {
	_ = ctx
	if subscriptionID == 0 {
		return nil, false, apperrors.InvalidInput("subscription_id is required")
	}

	if _, err := s.repo.GetSubscription(subscriptionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperrors.NotFound("subscription %d", subscriptionID)
		}
		return nil, false, err
	}

	changed, err := s.repo.MarkBatteryReturned(subscriptionID, time.Now())
	if err != nil {
		return nil, false, err
	}

	sub, err := s.repo.GetSubscription(subscriptionID)
	if err != nil {
		return nil, false, err
	}
	return sub, changed, nil
}

// AssignBattery puts a battery into the driver's custody for the
// subscription and resets the return flags.
func (s *Service) AssignBattery(ctx context.Context, subscriptionID uint, batteryID string) error {
	_ = ctx
	if subscriptionID == 0 || batteryID == "" {
		return apperrors.InvalidInput("subscription_id and battery_id are required")
	}
	if _, err := s.repo.GetSubscription(subscriptionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("subscription %d", subscriptionID)
		}
		return err
	}
	return s.repo.AssignBattery(subscriptionID, batteryID)
}

// ExpireOverdue transitions every active subscription whose end date has
// passed to expired. The sweep is date-driven and safe to re-run.
func (s *Service) ExpireOverdue(ctx context.Context, today time.Time) (int64, error) {
	_ = ctx
	if today.IsZero() {
		today = time.Now()
	}
	n, err := s.repo.ExpireOverdue(today)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Infof("[Ledger] expired %d overdue subscription(s)", n)
	}
	return n, nil
}

// ListInvoicesByPeriod returns all invoices billed in a YYYYMM period in
// number order, used by statement exports.
func (s *Service) ListInvoicesByPeriod(ctx context.Context, period string) ([]models.Invoice, error) {
	_ = ctx
	if len(period) != 6 {
		return nil, apperrors.InvalidInput("period must be YYYYMM, got %q", period)
	}
	return s.repo.ListInvoicesByPeriod(period)
}

func breakdown(inv *models.Invoice) []BreakdownItem {
	label := "Swap charge"
	switch inv.InvoiceType {
	case models.InvoiceTypeExtraSwap:
		label = "Extra Swap Charge"
	case models.InvoiceTypeSubscription:
		label = "Subscription Fee"
	}

	gstLabel := "GST"
	if inv.Amount > 0 {
		gstLabel = fmt.Sprintf("GST (%.0f%%)", inv.TaxAmount/inv.Amount*100)
	}

	return []BreakdownItem{
		{Label: label, Amount: inv.Amount},
		{Label: gstLabel, Amount: inv.TaxAmount},
		{Label: "Total", Amount: inv.TotalAmount},
	}
}

func validChargePct(v int) bool {
	return v >= 0 && v <= 100
}

// dayOf truncates t to midnight in its own location.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
