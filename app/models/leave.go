package models

import "time"

const (
	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// MonthlyLeaveAllowance is the default number of leave days granted per
// driver per calendar month.
const MonthlyLeaveAllowance = 4

// LeaveBalance tracks one driver's allowance for one month. The unique
// (driver_id, month) key backs the conflict-safe get-or-create: concurrent
// creators race on the insert and the loser reads the winner's row, so
// exactly one row per identity ever exists. Remaining days are always
// computed as total minus used.
type LeaveBalance struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DriverID    uint      `gorm:"not null;index:ux_leave_balances_driver_month,unique,priority:1" json:"driver_id"`
	Month       string    `gorm:"type:char(7);not null;index:ux_leave_balances_driver_month,unique,priority:2" json:"month"`
	TotalLeaves int       `gorm:"not null;default:4" json:"total_leaves"`
	UsedLeaves  int       `gorm:"not null;default:0" json:"used_leaves"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Remaining returns the unused allowance, never negative.
func (b *LeaveBalance) Remaining() int {
	r := b.TotalLeaves - b.UsedLeaves
	if r < 0 {
		return 0
	}
	return r
}

// MonthKey formats t as the YYYY-MM balance key.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// DriverLeaveRequest is a leave application. Status moves from pending to
// approved or rejected exactly once; both outcomes are terminal.
// DeductedDays is non-zero when the request consumed allowance at creation
// (the balance-checked path), so a later rejection knows what to refund.
type DriverLeaveRequest struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	DriverID     uint       `gorm:"not null;index" json:"driver_id"`
	StartDate    time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate      time.Time  `gorm:"type:date;not null" json:"end_date"`
	Reason       string     `gorm:"type:varchar(255)" json:"reason"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DeductedDays int        `gorm:"not null;default:0" json:"deducted_days"`
	ProcessedBy  string     `gorm:"type:varchar(100)" json:"processed_by"`
	ProcessedAt  *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DriverLeaveRequest) TableName() string {
	return "driver_leaves"
}

// Days counts the requested leave days, both endpoints inclusive.
func (r *DriverLeaveRequest) Days() int {
	return DaysBetween(r.StartDate, r.EndDate) + 1
}
