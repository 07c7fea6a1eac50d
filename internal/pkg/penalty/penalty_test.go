package penalty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/batterysmart/swapledger/app/models"
)

func TestComputeTariff(t *testing.T) {
	end := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	returnedAt := end.Add(12 * time.Hour)

	tests := []struct {
		name        string
		sub         *models.DriverSubscription
		today       time.Time
		wantPenalty bool
		wantDays    int
		wantAmount  float64
	}{
		{
			name:  "within grace",
			sub:   &models.DriverSubscription{EndDate: end},
			today: end.AddDate(0, 0, 3),
		},
		{
			name:  "last grace day",
			sub:   &models.DriverSubscription{EndDate: end},
			today: end.AddDate(0, 0, 4),
		},
		{
			name:        "one day past grace",
			sub:         &models.DriverSubscription{EndDate: end},
			today:       end.AddDate(0, 0, 5),
			wantPenalty: true,
			wantDays:    1,
			wantAmount:  80.00,
		},
		{
			name:        "two days past grace",
			sub:         &models.DriverSubscription{EndDate: end},
			today:       end.AddDate(0, 0, 6),
			wantPenalty: true,
			wantDays:    2,
			wantAmount:  160.00,
		},
		{
			name: "returned battery never accrues",
			sub: &models.DriverSubscription{
				EndDate:           end,
				BatteryReturned:   true,
				BatteryReturnedAt: &returnedAt,
			},
			today: end.AddDate(0, 0, 30),
		},
		{
			name:  "nil subscription",
			sub:   nil,
			today: end.AddDate(0, 0, 30),
		},
	}

	cfg := DefaultConfig()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.sub, tt.today, cfg)
			assert.Equal(t, tt.wantPenalty, res.HasPenalty)
			assert.Equal(t, tt.wantDays, res.DaysOverdue)
			assert.InDelta(t, tt.wantAmount, res.TotalAmount, 0.001)
			assert.InDelta(t, cfg.DailyRate, res.DailyRate, 0.001)
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	end := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	sub := &models.DriverSubscription{EndDate: end}
	today := end.AddDate(0, 0, 9)

	first := Compute(sub, today, DefaultConfig())
	second := Compute(sub, today, DefaultConfig())
	assert.Equal(t, first, second)
	assert.Equal(t, 5, first.DaysOverdue)
	assert.InDelta(t, 400.00, first.TotalAmount, 0.001)
}

func TestCustodyInconsistent(t *testing.T) {
	now := time.Now()

	assert.False(t, custodyInconsistent(&models.DriverSubscription{}))
	assert.False(t, custodyInconsistent(&models.DriverSubscription{
		BatteryReturned:   true,
		BatteryReturnedAt: &now,
	}))
	assert.True(t, custodyInconsistent(&models.DriverSubscription{
		BatteryReturned: true,
	}), "returned without a timestamp")
	assert.True(t, custodyInconsistent(&models.DriverSubscription{
		BatteryReturnedAt: &now,
	}), "timestamp without the returned flag")
	assert.True(t, custodyInconsistent(&models.DriverSubscription{
		BatteryReturned:   true,
		BatteryReturnedAt: &now,
		IsMisplaced:       true,
	}), "returned and misplaced at once")
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PENALTY_GRACE_DAYS", "")
	t.Setenv("PENALTY_DAILY_RATE", "")

	cfg := LoadConfig()
	assert.Equal(t, DefaultGraceDays, cfg.GraceDays)
	assert.InDelta(t, DefaultDailyRate, cfg.DailyRate, 0.001)

	t.Setenv("PENALTY_GRACE_DAYS", "7")
	t.Setenv("PENALTY_DAILY_RATE", "100.50")

	cfg = LoadConfig()
	assert.Equal(t, 7, cfg.GraceDays)
	assert.InDelta(t, 100.50, cfg.DailyRate, 0.001)

	t.Setenv("PENALTY_GRACE_DAYS", "not-a-number")
	t.Setenv("PENALTY_DAILY_RATE", "-5")

	cfg = LoadConfig()
	assert.Equal(t, DefaultGraceDays, cfg.GraceDays)
	assert.InDelta(t, DefaultDailyRate, cfg.DailyRate, 0.001)
}
