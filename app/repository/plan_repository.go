package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/batterysmart/swapledger/app/models"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// Upsert inserts the plan or updates the existing row with the same code.
// Plans are reference data keyed by their natural code; rows are never
// deleted while subscriptions point at them.
func (r *planRepository) Upsert(plan *models.SubscriptionPlan) error {
	plan.Code = strings.ToUpper(strings.TrimSpace(plan.Code))
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "name_hi", "price", "validity_days", "swaps_included",
			"swaps_per_day", "extra_swap_price", "gst_percentage",
			"description_en", "description_hi", "is_active", "updated_at",
		}),
	}).Create(plan).Error
	if err != nil {
		return err
	}

	// Re-read so the caller sees the persisted row ID after an update path.
	var saved models.SubscriptionPlan
	if err := r.db.Where("code = ?", plan.Code).First(&saved).Error; err != nil {
		return err
	}
	*plan = saved
	return nil
}

// GetByID retrieves a plan by its ID
func (r *planRepository) GetByID(id uint) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetByCode retrieves a plan by its natural code, case-insensitive
func (r *planRepository) GetByCode(code string) (*models.SubscriptionPlan, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var plan models.SubscriptionPlan
	err := r.db.Where("code = ?", trimmed).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListActive returns all active plans, cheapest first
func (r *planRepository) ListActive() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

// Count returns the total number of plans
func (r *planRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.SubscriptionPlan{}).Count(&count).Error
	return count, err
}
