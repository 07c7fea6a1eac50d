package models

import "time"

const (
	InvoiceTypeSwap         = "swap"
	InvoiceTypeSubscription = "subscription"
	InvoiceTypeExtraSwap    = "extra_swap"
)

const (
	InvoicePaymentPending = "pending"
	InvoicePaymentPaid    = "paid"
	InvoicePaymentFailed  = "failed"
)

// Invoice is a billed charge. InvoiceNumber follows INV-<YYYYMM>-<6 digits>
// and is allocated from InvoiceSequence inside the same transaction that
// inserts the row, so numbers are unique and strictly increasing per month.
type Invoice struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string    `gorm:"type:varchar(20);uniqueIndex" json:"invoice_number"`
	DriverID       uint      `gorm:"not null;index" json:"driver_id"`
	SwapID         *uint     `gorm:"index" json:"swap_id,omitempty"`
	SubscriptionID *uint     `gorm:"index" json:"subscription_id,omitempty"`
	InvoiceType    string    `gorm:"type:varchar(20);not null" json:"invoice_type"`
	Amount         float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	TaxAmount      float64   `gorm:"type:decimal(10,2);not null" json:"tax_amount"`
	TotalAmount    float64   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Description    string    `gorm:"type:varchar(255)" json:"description"`
	DescriptionHi  string    `gorm:"type:varchar(255)" json:"description_hi"`
	PaymentStatus  string    `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	GeneratedAt    time.Time `gorm:"type:timestamp;not null" json:"generated_at"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InvoiceSequence is the dedicated per-month counter behind invoice
// numbering. One row per YYYYMM period; allocation increments LastValue with
// an atomic upsert. Deriving the next number by scanning invoices for the
// current maximum is not allowed.
type InvoiceSequence struct {
	Period    string    `gorm:"primaryKey;type:char(6)" json:"period"`
	LastValue uint64    `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
