package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/batterysmart/swapledger/app/models"
)

// smsLogRepository implements the SMSLogRepository interface
type smsLogRepository struct {
	db *gorm.DB
}

// NewSMSLogRepository creates a new SMS log repository instance
func NewSMSLogRepository(db *gorm.DB) SMSLogRepository {
	return &smsLogRepository{db: db}
}

// Create creates a new SMS log entry
func (r *smsLogRepository) Create(entry *models.SMSLog) error {
	return r.db.Create(entry).Error
}

// ListByPhone returns the most recent SMS entries for a phone number
func (r *smsLogRepository) ListByPhone(phone string, limit int) ([]models.SMSLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []models.SMSLog
	err := r.db.Where("phone_number = ?", phone).
		Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// CountSince counts messages sent to a phone number since the given time
func (r *smsLogRepository) CountSince(phone string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.SMSLog{}).
		Where("phone_number = ? AND created_at >= ?", phone, since).
		Count(&count).Error
	return count, err
}
