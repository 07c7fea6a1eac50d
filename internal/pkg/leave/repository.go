package leave

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/batterysmart/swapledger/app/models"
)

// Repository provides DB operations used by the leave service.
type Repository interface {
	Transaction(fn func(Repository) error) error

	GetOrCreateBalance(driverID uint, month string) (*models.LeaveBalance, bool, error)
	GetBalance(driverID uint, month string) (*models.LeaveBalance, error)
	AddUsedLeaves(balanceID uint, delta int) (bool, error)

	CreateRequest(req *models.DriverLeaveRequest) error
	GetRequest(id uint) (*models.DriverLeaveRequest, error)
	TransitionRequest(id uint, to, actor string, at time.Time) (bool, error)
	ListPending(driverID uint) ([]models.DriverLeaveRequest, error)
	ListApprovedFrom(driverID uint, today time.Time) ([]models.DriverLeaveRequest, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a leave repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}

// GetOrCreateBalance inserts the month's default allowance row unless one
// already exists, then reads whichever row survived. Concurrent callers race
// on the unique (driver_id, month) key; the loser's insert is a silent
// no-op and the follow-up read observes the winner's row. The boolean
// reports whether this call created the row.
func (r *gormRepository) GetOrCreateBalance(driverID uint, month string) (*models.LeaveBalance, bool, error) {
	balance := models.LeaveBalance{
		DriverID:    driverID,
		Month:       month,
		TotalLeaves: models.MonthlyLeaveAllowance,
		UsedLeaves:  0,
	}
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "driver_id"}, {Name: "month"}},
		DoNothing: true,
	}).Create(&balance)
	if tx.Error != nil {
		return nil, false, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.LeaveBalance
	if err := r.db.Where("driver_id = ? AND month = ?", driverID, month).
		First(&stored).Error; err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}

func (r *gormRepository) GetBalance(driverID uint, month string) (*models.LeaveBalance, error) {
	var balance models.LeaveBalance
	err := r.db.Where("driver_id = ? AND month = ?", driverID, month).First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// AddUsedLeaves moves the used counter by delta with the invariant guarded
// in SQL: usage can neither exceed the allowance nor drop below zero. A
// false return means the move would have broken the invariant, typically a
// concurrent deduction winning the last remaining days.
func (r *gormRepository) AddUsedLeaves(balanceID uint, delta int) (bool, error) {
	tx := r.db.Model(&models.LeaveBalance{}).
		Where("id = ? AND used_leaves + ? >= 0 AND used_leaves + ? <= total_leaves", balanceID, delta, delta).
		Update("used_leaves", gorm.Expr("used_leaves + ?", delta))
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) CreateRequest(req *models.DriverLeaveRequest) error {
	return r.db.Create(req).Error
}

func (r *gormRepository) GetRequest(id uint) (*models.DriverLeaveRequest, error) {
	var req models.DriverLeaveRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// TransitionRequest moves a request out of pending exactly once. The status
// guard in the WHERE clause makes approve/reject terminal: a second caller
// affects zero rows and gets false back.
func (r *gormRepository) TransitionRequest(id uint, to, actor string, at time.Time) (bool, error) {
	tx := r.db.Model(&models.DriverLeaveRequest{}).
		Where("id = ? AND status = ?", id, models.LeaveStatusPending).
		Updates(map[string]interface{}{
			"status":       to,
			"processed_by": actor,
			"processed_at": &at,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) ListPending(driverID uint) ([]models.DriverLeaveRequest, error) {
	var reqs []models.DriverLeaveRequest
	err := r.db.Where("driver_id = ? AND status = ?", driverID, models.LeaveStatusPending).
		Order("start_date ASC").Find(&reqs).Error
	return reqs, err
}

func (r *gormRepository) ListApprovedFrom(driverID uint, today time.Time) ([]models.DriverLeaveRequest, error) {
	day := today.Format("2006-01-02")
	var reqs []models.DriverLeaveRequest
	err := r.db.Where("driver_id = ? AND status = ? AND end_date >= ?",
		driverID, models.LeaveStatusApproved, day).
		Order("start_date ASC").Find(&reqs).Error
	return reqs, err
}
