// Package penalty prices overdue batteries. A subscription whose battery is
// not back within the grace period after its end date accrues a flat daily
// charge. Computation is a pure function over stored state; writing penalty
// records to the ledger is an explicit, separate sweep.
package penalty

import (
	"strconv"
	"time"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/env"
)

// Defaults for the grace window and daily charge. Rs. 80 per day after 4
// days grace past the subscription end.
const (
	DefaultGraceDays = 4
	DefaultDailyRate = 80.0
)

// Config carries the penalty tariff.
type Config struct {
	GraceDays int
	DailyRate float64
}

// DefaultConfig returns the standard tariff.
func DefaultConfig() Config {
	return Config{GraceDays: DefaultGraceDays, DailyRate: DefaultDailyRate}
}

// LoadConfig reads tariff overrides from the environment and falls back to
// the standard grace window and daily rate.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v, err := strconv.Atoi(env.GetEnv("PENALTY_GRACE_DAYS", "")); err == nil && v > 0 {
		cfg.GraceDays = v
	}
	if v, err := strconv.ParseFloat(env.GetEnv("PENALTY_DAILY_RATE", ""), 64); err == nil && v > 0 {
		cfg.DailyRate = v
	}
	return cfg
}

// Result is a penalty projection for one subscription on one day.
type Result struct {
	HasPenalty  bool    `json:"has_penalty"`
	DaysOverdue int     `json:"days_overdue"`
	DailyRate   float64 `json:"daily_rate"`
	TotalAmount float64 `json:"total_amount"`
}

// Compute projects the penalty for sub as of today. A returned battery never
// carries a penalty no matter how late the return was recorded. Until the
// grace period past the end date is exhausted the projection stays zero.
// Calling Compute twice with the same inputs gives the same result; it reads
// nothing and writes nothing.
func Compute(sub *models.DriverSubscription, today time.Time, cfg Config) Result {
	res := Result{DailyRate: cfg.DailyRate}
	if sub == nil || sub.BatteryReturned {
		return res
	}

	overdue := models.DaysBetween(sub.EndDate, today) - cfg.GraceDays
	if overdue <= 0 {
		return res
	}

	res.HasPenalty = true
	res.DaysOverdue = overdue
	res.TotalAmount = models.RoundMoney(float64(overdue) * cfg.DailyRate)
	return res
}

// custodyInconsistent reports stored custody state that breaks the model,
// the returned flag and timestamp disagreeing in either direction or a
// battery both returned and misplaced. Sweeps skip such rows and flag them
// instead of guessing.
func custodyInconsistent(sub *models.DriverSubscription) bool {
	if sub.BatteryReturned && sub.BatteryReturnedAt == nil {
		return true
	}
	if !sub.BatteryReturned && sub.BatteryReturnedAt != nil {
		return true
	}
	if sub.BatteryReturned && sub.IsMisplaced {
		return true
	}
	return false
}
