package ledger

import (
	"time"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/apperrors"
	"github.com/batterysmart/swapledger/internal/pkg/entitlements"
	"github.com/batterysmart/swapledger/internal/pkg/penalty"
)

// EntitlementView is the read model behind subscription status: the active
// subscription joined with its plan plus every derived quantity a channel
// needs to answer "can I swap". IntegrityWarning flags the degraded case
// where more than one active subscription was found and the most recently
// started one was picked.
type EntitlementView struct {
	Subscription     *models.DriverSubscription `json:"subscription"`
	Plan             *models.SubscriptionPlan   `json:"plan"`
	SwapsRemaining   int                        `json:"swaps_remaining"`
	DaysRemaining    int                        `json:"days_remaining"`
	IsExpiringSoon   bool                       `json:"is_expiring_soon"`
	Penalty          penalty.Result             `json:"penalty"`
	IntegrityWarning bool                       `json:"integrity_warning,omitempty"`
}

// RecordSwapInput carries one physical battery exchange reported by a station.
type RecordSwapInput struct {
	DriverID     uint      `json:"driver_id"`
	StationID    uint      `json:"station_id"`
	OldBatteryID string    `json:"old_battery_id"`
	NewBatteryID string    `json:"new_battery_id"`
	OldChargePct int       `json:"old_charge_pct"`
	NewChargePct int       `json:"new_charge_pct"`
	SwapTime     time.Time `json:"swap_time"`
}

// SwapResult is the billing outcome of a recorded swap.
type SwapResult struct {
	Swap           *models.SwapEvent     `json:"swap"`
	Decision       entitlements.Decision `json:"decision"`
	SwapsRemaining int                   `json:"swaps_remaining"`
	InvoiceNumber  string                `json:"invoice_number,omitempty"`
}

// CreateInvoiceInput describes a charge to be billed. GSTPercentage is the
// tax rate applied on Amount; Description fields end up on the invoice row.
type CreateInvoiceInput struct {
	DriverID       uint
	SwapID         *uint
	SubscriptionID *uint
	InvoiceType    string
	Amount         float64
	GSTPercentage  float64
	Description    string
	DescriptionHi  string
	GeneratedAt    time.Time
}

// SwapHistoryEntry is one swap with its station and billing context.
type SwapHistoryEntry struct {
	Swap          models.SwapEvent `json:"swap"`
	StationName   string           `json:"station_name"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
}

// SwapHistory is a period-scoped slice of a driver's swaps with totals.
type SwapHistory struct {
	Entries      []SwapHistoryEntry `json:"entries"`
	TotalCharged float64            `json:"total_charged"`
	TotalFree    int64              `json:"total_free"`
	From         time.Time          `json:"from"`
	To           time.Time          `json:"to"`
}

// InvoiceDetail is one invoice with its display breakdown rows.
type InvoiceDetail struct {
	Invoice   models.Invoice  `json:"invoice"`
	Breakdown []BreakdownItem `json:"breakdown"`
}

// BreakdownItem is one labelled amount on an invoice detail view.
type BreakdownItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// Named history periods accepted by swap history lookups.
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodLastWeek  = "last_week"
	PeriodLastMonth = "last_month"
	PeriodAll       = "all"
)

// historyFloor bounds "all" lookups; nothing in the ledger predates it.
var historyFloor = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// PeriodRange resolves a named period to a [from, to) window ending now.
func PeriodRange(now time.Time, period string) (time.Time, time.Time, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch period {
	case PeriodToday, "":
		return dayStart, now, nil
	case PeriodYesterday:
		return dayStart.AddDate(0, 0, -1), dayStart, nil
	case PeriodLastWeek:
		return dayStart.AddDate(0, 0, -7), now, nil
	case PeriodLastMonth:
		return dayStart.AddDate(0, 0, -30), now, nil
	case PeriodAll:
		return historyFloor, now, nil
	default:
		return time.Time{}, time.Time{}, apperrors.InvalidInput("unknown time period %q", period)
	}
}
