package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/batterysmart/swapledger/app/models"
	"github.com/batterysmart/swapledger/internal/pkg/ledger"
)

// Message templates in the Hinglish register drivers actually read. Swap
// history keeps the first few entries only; SMS length is expensive.

const historySMSEntries = 5

// SwapHistoryMessage summarizes recent swaps for an SMS.
func SwapHistoryMessage(driverName string, history *ledger.SwapHistory) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Namaste %s! Aapki swap history:\n", driverName)

	count := len(history.Entries)
	if count > historySMSEntries {
		count = historySMSEntries
	}
	for i := 0; i < count; i++ {
		e := history.Entries[i]
		line := fmt.Sprintf("%s - %s", e.Swap.SwapTime.Format("02 Jan 15:04"), e.StationName)
		if e.Swap.ChargeAmount > 0 {
			line += fmt.Sprintf(" (Rs.%.2f)", e.Swap.ChargeAmount)
		} else {
			line += " (free)"
		}
		b.WriteString(line + "\n")
	}

	fmt.Fprintf(&b, "Total charged: Rs.%.2f, free swaps: %d", history.TotalCharged, history.TotalFree)
	return b.String()
}

// PaymentLinkMessage carries the renewal link for a plan.
func PaymentLinkMessage(planName string, totalAmount float64, link string) string {
	return fmt.Sprintf("Aapka %s plan renewal ready hai. Total Rs.%.2f (GST sahit). Payment link: %s",
		planName, totalAmount, link)
}

// SubscriptionConfirmationMessage confirms an activated plan.
func SubscriptionConfirmationMessage(planName string, endDate time.Time) string {
	return fmt.Sprintf("Badhai ho! Aapka %s plan active hai %s tak. Swap karne ke liye nazdiki station jayein.",
		planName, endDate.Format("02 Jan 2006"))
}

// InvoiceMessage notifies about a billed charge.
func InvoiceMessage(inv *models.Invoice) string {
	return fmt.Sprintf("Invoice %s: Rs.%.2f + GST Rs.%.2f = Rs.%.2f. Payment status: %s.",
		inv.InvoiceNumber, inv.Amount, inv.TaxAmount, inv.TotalAmount, inv.PaymentStatus)
}

// PenaltyMessage warns about an accruing late-battery penalty.
func PenaltyMessage(daysOverdue int, totalAmount float64) string {
	return fmt.Sprintf("Dhyan dein: battery %d din late hai. Penalty Rs.%.2f ho chuki hai (Rs.80/din). Kripya battery turant wapas karein.",
		daysOverdue, totalAmount)
}

// LeaveUpdateMessage reports a leave decision.
func LeaveUpdateMessage(req *models.DriverLeaveRequest) string {
	window := fmt.Sprintf("%s se %s", req.StartDate.Format("02 Jan"), req.EndDate.Format("02 Jan"))
	switch req.Status {
	case models.LeaveStatusApproved:
		return fmt.Sprintf("Aapki leave (%s) approve ho gayi hai.", window)
	case models.LeaveStatusRejected:
		return fmt.Sprintf("Aapki leave (%s) reject ho gayi hai. DSK se sampark karein.", window)
	default:
		return fmt.Sprintf("Aapki leave request (%s) darj ho gayi hai.", window)
	}
}
