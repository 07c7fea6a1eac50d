package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/batterysmart/swapledger/app/repository"
)

// HandleListPlans returns the active plan catalog, cheapest first
func HandleListPlans(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().ListActive()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"plans": plans, "count": len(plans)})
}

// HandlePlanPricing returns the catalog with derived pricing figures so
// channels never recompute tax math on their side.
func HandlePlanPricing(c *fiber.Ctx) error {
	plans, err := repository.GetGlobalFactory().GetPlanRepository().ListActive()
	if err != nil {
		return respondError(c, err)
	}

	pricing := make([]fiber.Map, 0, len(plans))
	for i := range plans {
		p := &plans[i]
		pricing = append(pricing, fiber.Map{
			"code":             p.Code,
			"name":             p.Name,
			"name_hi":          p.NameHi,
			"price":            p.Price,
			"gst_percentage":   p.GSTPercentage,
			"gst_amount":       p.GSTAmount(),
			"total_with_gst":   p.TotalWithGST(),
			"validity_days":    p.ValidityDays,
			"swaps_included":   p.SwapsIncluded,
			"swaps_per_day":    p.SwapsPerDay,
			"extra_swap_price": p.ExtraSwapPrice,
			"per_swap_cost":    p.PerSwapCost(),
		})
	}
	return c.JSON(fiber.Map{"plans": pricing, "count": len(pricing)})
}
