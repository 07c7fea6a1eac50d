package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanGSTAmount(t *testing.T) {
	plan := &SubscriptionPlan{Price: 149.00, GSTPercentage: 18.00}

	assert.Equal(t, 26.82, plan.GSTAmount())
	assert.Equal(t, 175.82, plan.TotalWithGST())
}

func TestPlanPerSwapCost(t *testing.T) {
	tests := []struct {
		name     string
		price    float64
		included int
		want     float64
	}{
		{"daily plan", 149.00, 4, 37.25},
		{"weekly plan", 899.00, 28, 32.11},
		{"unlimited plan", 34999.00, UnlimitedSwaps, 0},
		{"zero quota", 100.00, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := &SubscriptionPlan{Price: tt.price, SwapsIncluded: tt.included}
			assert.Equal(t, tt.want, plan.PerSwapCost())
		})
	}
}

func TestPlanSentinels(t *testing.T) {
	unlimited := &SubscriptionPlan{SwapsIncluded: UnlimitedSwaps, SwapsPerDay: NoDailyCap}
	assert.True(t, unlimited.IsUnlimited())
	assert.False(t, unlimited.HasDailyCap())

	capped := &SubscriptionPlan{SwapsIncluded: 4, SwapsPerDay: 4}
	assert.False(t, capped.IsUnlimited())
	assert.True(t, capped.HasDailyCap())

	quotaOnly := &SubscriptionPlan{SwapsIncluded: 28, SwapsPerDay: NoDailyCap}
	assert.False(t, quotaOnly.HasDailyCap())
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{35.0 * 0.18, 6.3},
		{26.8199999, 26.82},
		{0.005, 0.01},
		{-0.005, -0.01},
		{41.299999999999997, 41.3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundMoney(tt.in))
	}
}
