package models

import "time"

const (
	SwapStatusCompleted = "completed"
	SwapStatusFailed    = "failed"
	SwapStatusRefunded  = "refunded"
)

// SwapEvent is one physical battery exchange at a station. Every swap is
// recorded whether or not the plan covered it; ChargeAmount is zero for
// covered swaps. The failed status is reserved for operational failures
// reported by stations, a billing decision never produces it.
type SwapEvent struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	DriverID           uint      `gorm:"not null;index" json:"driver_id"`
	StationID          uint      `gorm:"not null;index" json:"station_id"`
	SubscriptionID     *uint     `gorm:"index" json:"subscription_id,omitempty"`
	OldBatteryID       string    `gorm:"type:varchar(50)" json:"old_battery_id"`
	NewBatteryID       string    `gorm:"type:varchar(50)" json:"new_battery_id"`
	OldChargePct       int       `gorm:"not null" json:"old_charge_pct"`
	NewChargePct       int       `gorm:"not null" json:"new_charge_pct"`
	SwapTime           time.Time `gorm:"type:timestamp;not null;index" json:"swap_time"`
	IsSubscriptionSwap bool      `gorm:"default:true" json:"is_subscription_swap"`
	ChargeAmount       float64   `gorm:"type:decimal(10,2);default:0.00" json:"charge_amount"`
	Status             string    `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`

	Station *Station `gorm:"foreignKey:StationID" json:"station,omitempty"`
}

func (SwapEvent) TableName() string {
	return "swaps"
}
