package models

import "time"

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusSuspended = "suspended"
)

// DriverSubscription binds a driver to a plan for a validity window and
// carries the usage counter plus battery custody state. SwapsUsed only ever
// grows while the row is active; derived quantities (remaining, days left)
// are computed on read, never stored.
type DriverSubscription struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	DriverID          uint       `gorm:"not null;index;index:idx_driver_subscriptions_driver_status,priority:1" json:"driver_id"`
	PlanID            uint       `gorm:"not null;index" json:"plan_id"`
	StartDate         time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate           time.Time  `gorm:"type:date;not null;index" json:"end_date"`
	Status            string     `gorm:"type:varchar(20);not null;default:'active';index:idx_driver_subscriptions_driver_status,priority:2" json:"status"`
	SwapsUsed         uint       `gorm:"not null;default:0" json:"swaps_used"`
	BatteryID         string     `gorm:"type:varchar(50)" json:"battery_id"`
	BatteryReturned   bool       `gorm:"default:false" json:"battery_returned"`
	BatteryReturnedAt *time.Time `gorm:"type:timestamp;default:null" json:"battery_returned_at,omitempty"`
	IsMisplaced       bool       `gorm:"default:false" json:"is_misplaced"`
	AutoRenew         bool       `gorm:"default:false" json:"auto_renew"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// DaysRemaining counts whole days from today until EndDate, never negative.
func (s *DriverSubscription) DaysRemaining(today time.Time) int {
	d := daysBetween(today, s.EndDate)
	if d < 0 {
		return 0
	}
	return d
}

// IsExpiringSoon reports whether the subscription ends within three days but
// has not ended yet.
func (s *DriverSubscription) IsExpiringSoon(today time.Time) bool {
	d := daysBetween(today, s.EndDate)
	return d > 0 && d <= 3
}

// daysBetween counts calendar days from a to b, ignoring clock time.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// DaysBetween is the exported calendar-day difference used by the penalty
// and leave packages so every component counts days the same way.
func DaysBetween(a, b time.Time) int {
	return daysBetween(a, b)
}
