package entitlements

import (
	"github.com/batterysmart/swapledger/app/models"
)

// Coverage is the billing outcome for a single swap.
type Coverage string

const (
	CoverageCovered Coverage = "covered"
	CoverageOverage Coverage = "overage"
)

// Decision is the result of applying plan rules to current usage. For an
// overage the charge fields carry the extra-swap price and its tax; covered
// swaps bill nothing.
type Decision struct {
	Coverage     Coverage
	ChargeAmount float64
	TaxAmount    float64
	TotalAmount  float64
}

// Covered reports whether the swap rides on the plan quota.
func (d Decision) Covered() bool {
	return d.Coverage == CoverageCovered
}

// Decide applies the plan's quota rules to a swap about to happen.
// usedTotal is the subscription's lifetime counter, usedToday the count of
// completed swaps on the current calendar day. Quota sentinels: a plan with
// SwapsIncluded == -1 has no lifetime ceiling, SwapsPerDay == -1 no daily
// ceiling. Exceeding either ceiling turns the swap into an overage billed at
// the plan's extra-swap price; it never blocks the physical exchange.
func Decide(plan *models.SubscriptionPlan, usedTotal uint, usedToday uint) Decision {
	covered := true

	if plan.HasDailyCap() && usedToday >= uint(plan.SwapsPerDay) {
		covered = false
	}
	if covered && !plan.IsUnlimited() {
		if plan.SwapsIncluded <= 0 || usedTotal >= uint(plan.SwapsIncluded) {
			covered = false
		}
	}

	if covered {
		return Decision{Coverage: CoverageCovered}
	}

	charge := plan.ExtraSwapPrice
	tax := models.RoundMoney(charge * plan.GSTPercentage / 100)
	return Decision{
		Coverage:     CoverageOverage,
		ChargeAmount: charge,
		TaxAmount:    tax,
		TotalAmount:  models.RoundMoney(charge + tax),
	}
}

// SwapsRemaining returns how many covered swaps are left, with -1 standing
// for unlimited. The figure never goes negative even when usage overshot the
// quota through overage swaps.
func SwapsRemaining(plan *models.SubscriptionPlan, usedTotal uint) int {
	if plan.IsUnlimited() {
		return models.UnlimitedSwaps
	}
	remaining := plan.SwapsIncluded - int(usedTotal)
	if remaining < 0 {
		return 0
	}
	return remaining
}
