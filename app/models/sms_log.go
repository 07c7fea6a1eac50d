package models

import "time"

const (
	SMSTypeSwapHistory              = "swap_history"
	SMSTypePaymentLink              = "payment_link"
	SMSTypeSubscriptionConfirmation = "subscription_confirmation"
	SMSTypeInvoice                  = "invoice"
	SMSTypePenaltyNotification      = "penalty_notification"
	SMSTypeLeaveUpdate              = "leave_update"
)

const (
	SMSStatusPending = "pending"
	SMSStatusSent    = "sent"
	SMSStatusFailed  = "failed"
)

// SMSLog records every outbound SMS attempt, sent or not, so message history
// stays auditable even when the gateway is down or unconfigured.
type SMSLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DriverID       *uint     `gorm:"index" json:"driver_id,omitempty"`
	PhoneNumber    string    `gorm:"type:varchar(15);not null;index" json:"phone_number"`
	MessageType    string    `gorm:"type:varchar(40);not null;index" json:"message_type"`
	MessageContent string    `gorm:"type:text" json:"message_content"`
	GatewaySID     string    `gorm:"type:varchar(100)" json:"gateway_sid"`
	Status         string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ErrorMessage   string    `gorm:"type:text" json:"error_message"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SMSLog) TableName() string {
	return "sms_logs"
}
