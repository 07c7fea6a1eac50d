package models

import "time"

const (
	StationAvailabilityHigh   = "high"
	StationAvailabilityMedium = "medium"
	StationAvailabilityLow    = "low"
)

// Station is a battery swap station. Coordinates feed the nearest-station
// ranking; Code breaks distance ties deterministically.
type Station struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Code           string    `gorm:"type:varchar(20);uniqueIndex" json:"code"`
	Name           string    `gorm:"type:varchar(150);not null" json:"name"`
	Address        string    `gorm:"type:varchar(255)" json:"address"`
	Landmark       string    `gorm:"type:varchar(150)" json:"landmark"`
	Latitude       float64   `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude      float64   `gorm:"type:decimal(11,8);not null" json:"longitude"`
	City           string    `gorm:"type:varchar(100);index" json:"city"`
	Pincode        string    `gorm:"type:varchar(10)" json:"pincode"`
	OperatingHours string    `gorm:"type:varchar(30);default:'06:00-23:00'" json:"operating_hours"`
	ContactPhone   string    `gorm:"type:varchar(15)" json:"contact_phone"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Inventory *StationInventory `gorm:"foreignKey:StationID" json:"inventory,omitempty"`
}

// StationInventory is the live battery count per station. AvailableBatteries
// and ChargingBatteries absorb counter deltas flushed from Redis.
type StationInventory struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	StationID          uint      `gorm:"not null;uniqueIndex" json:"station_id"`
	AvailableBatteries int       `gorm:"not null;default:0" json:"available_batteries"`
	ChargingBatteries  int       `gorm:"not null;default:0" json:"charging_batteries"`
	TotalSlots         int       `gorm:"not null;default:20" json:"total_slots"`
	LastUpdated        time.Time `gorm:"autoUpdateTime" json:"last_updated"`
}

func (StationInventory) TableName() string {
	return "station_inventory"
}

// AvailabilityStatus buckets an available-battery count for display.
func AvailabilityStatus(available int) string {
	switch {
	case available > 10:
		return StationAvailabilityHigh
	case available >= 5:
		return StationAvailabilityMedium
	default:
		return StationAvailabilityLow
	}
}

// OccupancyPercent returns how full the station's slots are.
func OccupancyPercent(totalSlots, available int) float64 {
	if totalSlots <= 0 {
		return 0
	}
	return RoundMoney(float64(totalSlots-available) / float64(totalSlots) * 100)
}
