package penalty

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
)

// Engine serves penalty reads and materializes penalty records.
type Engine struct {
	db  *gorm.DB
	cfg Config
}

// NewEngine creates a penalty engine on the given DB handle.
func NewEngine(db *gorm.DB, cfg Config) *Engine {
	if cfg.GraceDays <= 0 {
		cfg.GraceDays = DefaultGraceDays
	}
	if cfg.DailyRate <= 0 {
		cfg.DailyRate = DefaultDailyRate
	}
	return &Engine{db: db, cfg: cfg}
}

// Config returns the tariff the engine applies.
func (e *Engine) Config() Config {
	return e.cfg
}

// ForDriver projects the penalty on the driver's most recent subscription.
// Drivers with no subscription history get a NotFound.
func (e *Engine) ForDriver(ctx context.Context, driverID uint, today time.Time) (Result, *models.DriverSubscription, error) {
	_ = ctx
	var sub models.DriverSubscription
	err := e.db.Where("driver_id = ?", driverID).
		Order("end_date DESC, id DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, nil, apperrors.NotFound("no subscription for driver %d", driverID)
		}
		return Result{}, nil, err
	}

	if custodyInconsistent(&sub) {
		log.Warnf("[Penalty] subscription %d has inconsistent custody flags: %v",
			sub.ID, apperrors.ErrIntegrityViolation)
		return Result{DailyRate: e.cfg.DailyRate}, &sub, nil
	}

	return Compute(&sub, today, e.cfg), &sub, nil
}

// ForSubscription projects the penalty for one subscription.
func (e *Engine) ForSubscription(ctx context.Context, subscriptionID uint, today time.Time) (Result, error) {
	_ = ctx
	var sub models.DriverSubscription
	if err := e.db.First(&sub, subscriptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Result{}, apperrors.NotFound("subscription %d", subscriptionID)
		}
		return Result{}, err
	}
	return Compute(&sub, today, e.cfg), nil
}

// Sweep materializes penalty records for every subscription past grace with
// an unreturned battery, keyed by assessment day. Re-running the sweep for
// the same day refreshes the existing rows instead of stacking new ones.
// Rows with inconsistent custody state are logged and skipped.
func (e *Engine) Sweep(ctx context.Context, today time.Time) (int, error) {
	_ = ctx
	cutoff := today.AddDate(0, 0, -e.cfg.GraceDays).Format("2006-01-02")

	var subs []models.DriverSubscription
	err := e.db.
		Where("battery_returned = ? AND end_date < ?", false, cutoff).
		Find(&subs).Error
	if err != nil {
		return 0, err
	}

	assessedOn := today.Format("2006-01-02")
	written := 0
	for i := range subs {
		sub := &subs[i]
		if custodyInconsistent(sub) {
			log.Warnf("[Penalty] sweep skipping subscription %d, inconsistent custody flags: %v",
				sub.ID, apperrors.ErrIntegrityViolation)
			continue
		}

		res := Compute(sub, today, e.cfg)
		if !res.HasPenalty {
			continue
		}

		record := models.PenaltyRecord{
			DriverID:       sub.DriverID,
			SubscriptionID: sub.ID,
			DaysOverdue:    res.DaysOverdue,
			DailyRate:      res.DailyRate,
			TotalAmount:    res.TotalAmount,
			AssessedOn:     assessedOn,
		}
		err := e.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "subscription_id"}, {Name: "assessed_on"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"days_overdue", "daily_rate", "total_amount", "updated_at",
			}),
		}).Create(&record).Error
		if err != nil {
			return written, err
		}
		written++
	}

	if written > 0 {
		log.Infof("[Penalty] sweep assessed %d subscription(s) for %s", written, assessedOn)
	}
	return written, nil
}

// PendingForDriver lists unpaid penalty records for a driver, newest first.
func (e *Engine) PendingForDriver(ctx context.Context, driverID uint) ([]models.PenaltyRecord, error) {
	_ = ctx
	var records []models.PenaltyRecord
	err := e.db.
		Where("driver_id = ? AND status = ?", driverID, models.PenaltyStatusPending).
		Order("assessed_on DESC").
		Find(&records).Error
	return records, err
}
