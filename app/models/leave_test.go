package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLeaveBalanceRemaining(t *testing.T) {
	b := &LeaveBalance{TotalLeaves: 4, UsedLeaves: 1}
	assert.Equal(t, 3, b.Remaining())

	exhausted := &LeaveBalance{TotalLeaves: 4, UsedLeaves: 4}
	assert.Equal(t, 0, exhausted.Remaining())

	// Overdrawn balances clamp to zero.
	overdrawn := &LeaveBalance{TotalLeaves: 4, UsedLeaves: 5}
	assert.Equal(t, 0, overdrawn.Remaining())
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "2026-08", MonthKey(time.Date(2026, 8, 25, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-01", MonthKey(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestLeaveRequestDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"single day", date(2026, 9, 1), date(2026, 9, 1), 1},
		{"three days", date(2026, 9, 1), date(2026, 9, 3), 3},
		{"across month end", date(2026, 8, 30), date(2026, 9, 2), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &DriverLeaveRequest{StartDate: tt.start, EndDate: tt.end}
			assert.Equal(t, tt.want, r.Days())
		})
	}
}
