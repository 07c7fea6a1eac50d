package models

import (
	"math"
	"time"
)

const (
	PlanCodeDaily   = "DAILY"
	PlanCodeWeekly  = "WEEKLY"
	PlanCodeMonthly = "MONTHLY"
	PlanCodeYearly  = "YEARLY"
)

// UnlimitedSwaps is the quota sentinel: a plan with SwapsIncluded == -1 never
// runs out of covered swaps. NoDailyCap is the same sentinel for SwapsPerDay.
const (
	UnlimitedSwaps = -1
	NoDailyCap     = -1
)

// SubscriptionPlan is catalog reference data. Plans are upserted by Code and
// never deleted while subscriptions reference them.
type SubscriptionPlan struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Code           string    `gorm:"type:varchar(20);uniqueIndex" json:"code" validate:"required,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	Name           string    `gorm:"type:varchar(100)" json:"name" validate:"required"`
	NameHi         string    `gorm:"type:varchar(100)" json:"name_hi"`
	Price          float64   `gorm:"type:decimal(10,2);not null" json:"price" validate:"gte=0"`
	ValidityDays   int       `gorm:"not null" json:"validity_days" validate:"gt=0"`
	SwapsIncluded  int       `gorm:"not null" json:"swaps_included"`
	SwapsPerDay    int       `gorm:"not null;default:-1" json:"swaps_per_day"`
	ExtraSwapPrice float64   `gorm:"type:decimal(10,2);default:35.00" json:"extra_swap_price"`
	GSTPercentage  float64   `gorm:"type:decimal(5,2);default:18.00" json:"gst_percentage"`
	DescriptionEn  string    `gorm:"type:text" json:"description_en"`
	DescriptionHi  string    `gorm:"type:text" json:"description_hi"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsUnlimited reports whether the plan carries the unlimited quota sentinel.
func (p *SubscriptionPlan) IsUnlimited() bool {
	return p.SwapsIncluded == UnlimitedSwaps
}

// HasDailyCap reports whether the plan limits covered swaps per calendar day.
func (p *SubscriptionPlan) HasDailyCap() bool {
	return p.SwapsPerDay != NoDailyCap && p.SwapsPerDay > 0
}

// GSTAmount returns the tax on the plan price, rounded to two decimals.
func (p *SubscriptionPlan) GSTAmount() float64 {
	return RoundMoney(p.Price * p.GSTPercentage / 100)
}

// TotalWithGST returns price plus tax.
func (p *SubscriptionPlan) TotalWithGST() float64 {
	return RoundMoney(p.Price + p.GSTAmount())
}

// PerSwapCost returns price divided by the included quota, or 0 for
// unlimited plans where the figure is meaningless.
func (p *SubscriptionPlan) PerSwapCost() float64 {
	if p.SwapsIncluded <= 0 {
		return 0
	}
	return RoundMoney(p.Price / float64(p.SwapsIncluded))
}

// RoundMoney rounds to two decimal places, half away from zero.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
