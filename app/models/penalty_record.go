package models

import "time"

const (
	PenaltyStatusPending = "pending"
	PenaltyStatusPaid    = "paid"
	PenaltyStatusWaived  = "waived"
)

// PenaltyRecord materializes a late-battery penalty as assessed on a given
// day. The (subscription_id, assessed_on) unique key makes the daily sweep
// idempotent: re-running it for the same day updates the existing row
// instead of stacking a second one.
type PenaltyRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DriverID       uint      `gorm:"not null;index" json:"driver_id"`
	SubscriptionID uint      `gorm:"not null;index:ux_penalty_records_sub_day,unique,priority:1" json:"subscription_id"`
	Reason         string    `gorm:"type:varchar(100);default:'battery_not_returned'" json:"reason"`
	DaysOverdue    int       `gorm:"not null" json:"days_overdue"`
	DailyRate      float64   `gorm:"type:decimal(10,2);default:80.00" json:"daily_rate"`
	TotalAmount    float64   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AssessedOn     string    `gorm:"type:char(10);not null;index:ux_penalty_records_sub_day,unique,priority:2" json:"assessed_on"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
