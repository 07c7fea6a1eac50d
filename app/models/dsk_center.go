package models

import (
	"encoding/json"
	"time"
)

const (
	DSKServiceActivation         = "activation"
	DSKServiceRepair             = "repair"
	DSKServiceSupport            = "support"
	DSKServiceBatteryReplacement = "battery_replacement"
)

// DSKCenter is a driver seva kendra, the walk-in service center where
// drivers activate subscriptions and get repairs. Services holds a JSON
// array of offered service codes.
type DSKCenter struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Code           string    `gorm:"type:varchar(20);uniqueIndex" json:"code"`
	Name           string    `gorm:"type:varchar(150);not null" json:"name"`
	Address        string    `gorm:"type:varchar(255)" json:"address"`
	Landmark       string    `gorm:"type:varchar(150)" json:"landmark"`
	Latitude       float64   `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude      float64   `gorm:"type:decimal(11,8);not null" json:"longitude"`
	City           string    `gorm:"type:varchar(100);index" json:"city"`
	Pincode        string    `gorm:"type:varchar(10)" json:"pincode"`
	ContactPhone   string    `gorm:"type:varchar(15)" json:"contact_phone"`
	OperatingHours string    `gorm:"type:varchar(30);default:'09:00-18:00'" json:"operating_hours"`
	Services       string    `gorm:"type:json" json:"services"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DSKCenter) TableName() string {
	return "dsk_locations"
}

// ServiceList decodes the Services JSON array. Malformed data yields an
// empty list rather than an error, a center row is never unusable.
func (c *DSKCenter) ServiceList() []string {
	if c.Services == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(c.Services), &out); err != nil {
		return nil
	}
	return out
}

// OffersService reports whether the center advertises the given service code.
func (c *DSKCenter) OffersService(code string) bool {
	for _, s := range c.ServiceList() {
		if s == code {
			return true
		}
	}
	return false
}
