package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/batterysmart/swapledger/app/models"
)

var fixtureSeq uint64

func nextSeq() uint64 {
	return atomic.AddUint64(&fixtureSeq, 1)
}

// TestDriver creates a driver with a unique phone number.
func TestDriver(t *testing.T, db *gorm.DB, opts ...func(*models.Driver)) *models.Driver {
	t.Helper()

	n := nextSeq()
	driver := &models.Driver{
		PhoneNumber:       fmt.Sprintf("98%08d", n%100000000),
		Name:              fmt.Sprintf("Test Driver %d", n),
		PreferredLanguage: models.LanguageHindi,
		City:              "Delhi",
		IsActive:          true,
	}

	for _, opt := range opts {
		opt(driver)
	}

	if err := db.Create(driver).Error; err != nil {
		t.Fatalf("Failed to create test driver: %v", err)
	}

	return driver
}

// WithPhone sets the phone number
func WithPhone(phone string) func(*models.Driver) {
	return func(d *models.Driver) {
		d.PhoneNumber = phone
	}
}

// WithLanguage sets the preferred language
func WithLanguage(lang string) func(*models.Driver) {
	return func(d *models.Driver) {
		d.PreferredLanguage = lang
	}
}

// TestPlan creates a daily plan: 4 swaps included, 4 per day, 35.00 overage,
// 18% GST.
func TestPlan(t *testing.T, db *gorm.DB, opts ...func(*models.SubscriptionPlan)) *models.SubscriptionPlan {
	t.Helper()

	plan := &models.SubscriptionPlan{
		Code:           models.PlanCodeDaily,
		Name:           "Daily Plan",
		NameHi:         "Rozana Plan",
		Price:          149.00,
		ValidityDays:   1,
		SwapsIncluded:  4,
		SwapsPerDay:    4,
		ExtraSwapPrice: 35.00,
		GSTPercentage:  18.00,
		IsActive:       true,
	}

	for _, opt := range opts {
		opt(plan)
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create test plan: %v", err)
	}

	return plan
}

// WithPlanCode sets the plan code
func WithPlanCode(code string) func(*models.SubscriptionPlan) {
	return func(p *models.SubscriptionPlan) {
		p.Code = code
	}
}

// WithQuota sets the included quota and per-day cap
func WithQuota(included, perDay int) func(*models.SubscriptionPlan) {
	return func(p *models.SubscriptionPlan) {
		p.SwapsIncluded = included
		p.SwapsPerDay = perDay
	}
}

// Unlimited turns the plan into a yearly unlimited plan
func Unlimited() func(*models.SubscriptionPlan) {
	return func(p *models.SubscriptionPlan) {
		p.Code = models.PlanCodeYearly
		p.Name = "Yearly Plan"
		p.ValidityDays = 365
		p.SwapsIncluded = models.UnlimitedSwaps
		p.SwapsPerDay = models.NoDailyCap
	}
}

// TestSubscription creates an active subscription that started yesterday and
// runs another 29 days.
func TestSubscription(t *testing.T, db *gorm.DB, driverID, planID uint, opts ...func(*models.DriverSubscription)) *models.DriverSubscription {
	t.Helper()

	now := time.Now()
	sub := &models.DriverSubscription{
		DriverID:  driverID,
		PlanID:    planID,
		StartDate: now.AddDate(0, 0, -1),
		EndDate:   now.AddDate(0, 0, 29),
		Status:    models.SubscriptionStatusActive,
		BatteryID: fmt.Sprintf("BAT-%05d", nextSeq()),
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithDates sets the validity window
func WithDates(start, end time.Time) func(*models.DriverSubscription) {
	return func(s *models.DriverSubscription) {
		s.StartDate = start
		s.EndDate = end
	}
}

// WithStatus sets the subscription status
func WithStatus(status string) func(*models.DriverSubscription) {
	return func(s *models.DriverSubscription) {
		s.Status = status
	}
}

// WithSwapsUsed sets the usage counter
func WithSwapsUsed(n uint) func(*models.DriverSubscription) {
	return func(s *models.DriverSubscription) {
		s.SwapsUsed = n
	}
}

// WithBatteryReturned marks the battery returned at the given time
func WithBatteryReturned(at time.Time) func(*models.DriverSubscription) {
	return func(s *models.DriverSubscription) {
		s.BatteryReturned = true
		s.BatteryReturnedAt = &at
	}
}

// TestStation creates an active station in Delhi with a unique code.
func TestStation(t *testing.T, db *gorm.DB, opts ...func(*models.Station)) *models.Station {
	t.Helper()

	n := nextSeq()
	station := &models.Station{
		Code:      fmt.Sprintf("ST%04d", n%10000),
		Name:      fmt.Sprintf("Swap Station %d", n),
		Address:   "Main Road",
		Latitude:  28.6139,
		Longitude: 77.2090,
		City:      "Delhi",
		IsActive:  true,
	}

	for _, opt := range opts {
		opt(station)
	}

	if err := db.Create(station).Error; err != nil {
		t.Fatalf("Failed to create test station: %v", err)
	}

	return station
}

// WithCoords sets the station coordinates
func WithCoords(lat, lon float64) func(*models.Station) {
	return func(s *models.Station) {
		s.Latitude = lat
		s.Longitude = lon
	}
}

// WithStationCode sets the station code
func WithStationCode(code string) func(*models.Station) {
	return func(s *models.Station) {
		s.Code = code
	}
}

// TestInventory creates an inventory row for a station.
func TestInventory(t *testing.T, db *gorm.DB, stationID uint, available, charging, slots int) *models.StationInventory {
	t.Helper()

	inv := &models.StationInventory{
		StationID:          stationID,
		AvailableBatteries: available,
		ChargingBatteries:  charging,
		TotalSlots:         slots,
	}

	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("Failed to create test inventory: %v", err)
	}

	return inv
}

// TestDSKCenter creates an active service center with a unique code.
func TestDSKCenter(t *testing.T, db *gorm.DB, opts ...func(*models.DSKCenter)) *models.DSKCenter {
	t.Helper()

	n := nextSeq()
	center := &models.DSKCenter{
		Code:      fmt.Sprintf("DSK%04d", n%10000),
		Name:      fmt.Sprintf("Seva Kendra %d", n),
		Address:   "Service Lane",
		Latitude:  28.7041,
		Longitude: 77.1025,
		City:      "Delhi",
		Services:  `["activation","repair","support"]`,
		IsActive:  true,
	}

	for _, opt := range opts {
		opt(center)
	}

	if err := db.Create(center).Error; err != nil {
		t.Fatalf("Failed to create test center: %v", err)
	}

	return center
}

// WithServices sets the offered service codes
func WithServices(servicesJSON string) func(*models.DSKCenter) {
	return func(c *models.DSKCenter) {
		c.Services = servicesJSON
	}
}

// WithCenterCoords sets the center coordinates
func WithCenterCoords(lat, lon float64) func(*models.DSKCenter) {
	return func(c *models.DSKCenter) {
		c.Latitude = lat
		c.Longitude = lon
	}
}
