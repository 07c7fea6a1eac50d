package ledger

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/batterysmart/swapledger/app/models"
)

// Repository provides DB operations used by the ledger service. Transaction
// yields a Repository bound to the running transaction so multi-step writes
// commit or roll back as one unit.
type Repository interface {
	Transaction(fn func(Repository) error) error

	DriverExists(id uint) (bool, error)
	StationExists(id uint) (bool, error)

	GetPlanByID(id uint) (*models.SubscriptionPlan, error)
	GetPlanByCode(code string) (*models.SubscriptionPlan, error)

	GetSubscription(id uint) (*models.DriverSubscription, error)
	GetSubscriptionWithPlan(id uint) (*models.DriverSubscription, error)
	ListActiveSubscriptions(driverID uint, today time.Time) ([]models.DriverSubscription, error)
	ExpireActiveSubscriptions(driverID uint) (int64, error)
	CreateSubscription(sub *models.DriverSubscription) error
	ExtendSubscription(id uint, newEndDate time.Time) error
	CompareAndIncrementSwapsUsed(id uint, observed uint) (bool, error)
	AssignBattery(id uint, batteryID string) error
	MarkBatteryReturned(id uint, at time.Time) (bool, error)
	ExpireOverdue(today time.Time) (int64, error)

	CountSwapsBetween(subscriptionID uint, from, to time.Time) (int64, error)
	CreateSwap(swap *models.SwapEvent) error
	ListSwapsBetween(driverID uint, from, to time.Time, limit int) ([]SwapHistoryEntry, error)
	SwapTotalsBetween(driverID uint, from, to time.Time) (float64, int64, error)

	NextInvoiceNumber(period string) (string, error)
	CreateInvoice(inv *models.Invoice) error
	GetInvoiceByNumber(driverID uint, number string) (*models.Invoice, error)
	LatestInvoice(driverID uint) (*models.Invoice, error)
	ListInvoicesByPeriod(period string) ([]models.Invoice, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a ledger repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

func (r *gormRepository) DriverExists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Driver{}).Where("id = ? AND is_active = ?", id, true).Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) StationExists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Station{}).Where("id = ? AND is_active = ?", id, true).Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) GetPlanByID(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetPlanByCode(code string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	if err := r.db.Where("code = ? AND is_active = ?", code, true).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetSubscription(id uint) (*models.DriverSubscription, error) {
	var sub models.DriverSubscription
	if err := r.db.First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscriptionWithPlan(id uint) (*models.DriverSubscription, error) {
	var sub models.DriverSubscription
	if err := r.db.Preload("Plan").First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListActiveSubscriptions returns active, unexpired subscriptions newest
// start first. Callers expect exactly one; more is an integrity problem the
// service layer flags.
func (r *gormRepository) ListActiveSubscriptions(driverID uint, today time.Time) ([]models.DriverSubscription, error) {
	day := today.Format("2006-01-02")
	var subs []models.DriverSubscription
	err := r.db.Preload("Plan").
		Where("driver_id = ? AND status = ? AND end_date >= ?", driverID, models.SubscriptionStatusActive, day).
		Order("start_date DESC, id DESC").
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) ExpireActiveSubscriptions(driverID uint) (int64, error) {
	tx := r.db.Model(&models.DriverSubscription{}).
		Where("driver_id = ? AND status = ?", driverID, models.SubscriptionStatusActive).
		Update("status", models.SubscriptionStatusExpired)
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) CreateSubscription(sub *models.DriverSubscription) error {
	return r.db.Create(sub).Error
}

func (r *gormRepository) ExtendSubscription(id uint, newEndDate time.Time) error {
	return r.db.Model(&models.DriverSubscription{}).Where("id = ?", id).
		Update("end_date", newEndDate).Error
}

// CompareAndIncrementSwapsUsed bumps the usage counter only if it still
// holds the observed value. A false return means another swap interleaved
// and the caller must re-read and retry. The guard keeps the counter
// monotonic: it can only ever move one step up from a value that was
// actually seen.
func (r *gormRepository) CompareAndIncrementSwapsUsed(id uint, observed uint) (bool, error) {
	tx := r.db.Model(&models.DriverSubscription{}).
		Where("id = ? AND swaps_used = ? AND status = ?", id, observed, models.SubscriptionStatusActive).
		Update("swaps_used", gorm.Expr("swaps_used + 1"))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) AssignBattery(id uint, batteryID string) error {
	return r.db.Model(&models.DriverSubscription{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"battery_id":          batteryID,
			"battery_returned":    false,
			"battery_returned_at": nil,
			"is_misplaced":        false,
		}).Error
}

// MarkBatteryReturned flips the custody flags once. Returns false when the
// battery was already returned, which callers treat as a no-op.
func (r *gormRepository) MarkBatteryReturned(id uint, at time.Time) (bool, error) {
	tx := r.db.Model(&models.DriverSubscription{}).
		Where("id = ? AND battery_returned = ?", id, false).
		Updates(map[string]interface{}{
			"battery_returned":    true,
			"battery_returned_at": &at,
			"is_misplaced":        false,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) ExpireOverdue(today time.Time) (int64, error) {
	day := today.Format("2006-01-02")
	tx := r.db.Model(&models.DriverSubscription{}).
		Where("status = ? AND end_date < ?", models.SubscriptionStatusActive, day).
		Update("status", models.SubscriptionStatusExpired)
	return tx.RowsAffected, tx.Error
}

func (r *gormRepository) CountSwapsBetween(subscriptionID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.SwapEvent{}).
		Where("subscription_id = ? AND status = ? AND swap_time >= ? AND swap_time < ?",
			subscriptionID, models.SwapStatusCompleted, from, to).
		Count(&count).Error
	return count, err
}

func (r *gormRepository) CreateSwap(swap *models.SwapEvent) error {
	return r.db.Create(swap).Error
}

func (r *gormRepository) ListSwapsBetween(driverID uint, from, to time.Time, limit int) ([]SwapHistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	var swaps []models.SwapEvent
	err := r.db.Preload("Station").
		Where("driver_id = ? AND swap_time >= ? AND swap_time < ?", driverID, from, to).
		Order("swap_time DESC").
		Limit(limit).
		Find(&swaps).Error
	if err != nil {
		return nil, err
	}

	entries := make([]SwapHistoryEntry, 0, len(swaps))
	for _, swap := range swaps {
		entry := SwapHistoryEntry{Swap: swap}
		if swap.Station != nil {
			entry.StationName = swap.Station.Name
		}
		var inv models.Invoice
		if err := r.db.Select("invoice_number").Where("swap_id = ?", swap.ID).First(&inv).Error; err == nil {
			entry.InvoiceNumber = inv.InvoiceNumber
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *gormRepository) SwapTotalsBetween(driverID uint, from, to time.Time) (float64, int64, error) {
	type totals struct {
		TotalCharged float64
		TotalFree    int64
	}
	var t totals
	err := r.db.Model(&models.SwapEvent{}).
		Select("COALESCE(SUM(charge_amount), 0) AS total_charged, COALESCE(SUM(CASE WHEN charge_amount = 0 THEN 1 ELSE 0 END), 0) AS total_free").
		Where("driver_id = ? AND swap_time >= ? AND swap_time < ?", driverID, from, to).
		Scan(&t).Error
	return t.TotalCharged, t.TotalFree, err
}

// NextInvoiceNumber allocates the next number for the period from the
// dedicated counter row. The atomic upsert increments under the row lock the
// enclosing transaction holds until commit, so concurrent allocations
// serialize and every committed invoice gets a distinct, increasing number.
// Scanning invoices for the current maximum would race and is not an option.
func (r *gormRepository) NextInvoiceNumber(period string) (string, error) {
	seq := models.InvoiceSequence{Period: period, LastValue: 1}
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "period"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_value": gorm.Expr("last_value + 1"),
		}),
	}).Create(&seq).Error; err != nil {
		return "", err
	}

	var stored models.InvoiceSequence
	if err := r.db.Where("period = ?", period).First(&stored).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%06d", period, stored.LastValue), nil
}

func (r *gormRepository) CreateInvoice(inv *models.Invoice) error {
	return r.db.Create(inv).Error
}

func (r *gormRepository) GetInvoiceByNumber(driverID uint, number string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.Where("driver_id = ? AND invoice_number = ?", driverID, number).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *gormRepository) LatestInvoice(driverID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.Where("driver_id = ?", driverID).Order("generated_at DESC, id DESC").First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *gormRepository) ListInvoicesByPeriod(period string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Where("invoice_number LIKE ?", "INV-"+period+"-%").
		Order("invoice_number ASC").
		Find(&invoices).Error
	return invoices, err
}
