package models

import "time"

const (
	TransactionStatusPending            = "pending"
	TransactionStatusPaymentLinkCreated = "payment_link_created"
	TransactionStatusCompleted          = "completed"
	TransactionStatusFailed             = "failed"
)

const PaymentGatewayRazorpay = "razorpay"

// PaymentTransaction tracks one renewal/purchase order from creation through
// gateway settlement. OrderID is the BSMART reference handed to the gateway
// and printed on the payment link.
type PaymentTransaction struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	DriverID             uint       `gorm:"not null;index" json:"driver_id"`
	PlanID               uint       `gorm:"not null" json:"plan_id"`
	OrderID              string     `gorm:"type:varchar(40);uniqueIndex" json:"order_id"`
	Amount               float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	TaxAmount            float64    `gorm:"type:decimal(10,2);not null" json:"tax_amount"`
	TotalAmount          float64    `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status               string     `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`
	PaymentGateway       string     `gorm:"type:varchar(20);default:'razorpay'" json:"payment_gateway"`
	GatewayTransactionID string     `gorm:"type:varchar(100)" json:"gateway_transaction_id"`
	GatewayResponse      string     `gorm:"type:longtext" json:"gateway_response,omitempty"`
	PaymentLink          string     `gorm:"type:varchar(255)" json:"payment_link"`
	PaymentDate          *time.Time `gorm:"type:timestamp;default:null" json:"payment_date,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PaymentTransaction) TableName() string {
	return "transaction_history"
}
