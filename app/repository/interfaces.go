package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/batterysmart/swapledger/app/models"
)

// DriverRepository defines the interface for driver-related database operations
type DriverRepository interface {
	Create(driver *models.Driver) error
	GetByID(id uint) (*models.Driver, error)
	GetByPhone(phone string) (*models.Driver, error)
	Update(driver *models.Driver) error
	Deactivate(id uint) error
	Count() (int64, error)
}

// PlanRepository defines the interface for subscription plan catalog operations
type PlanRepository interface {
	Upsert(plan *models.SubscriptionPlan) error
	GetByID(id uint) (*models.SubscriptionPlan, error)
	GetByCode(code string) (*models.SubscriptionPlan, error)
	ListActive() ([]models.SubscriptionPlan, error)
	Count() (int64, error)
}

// StationRepository defines the interface for swap station operations
type StationRepository interface {
	Create(station *models.Station) error
	GetByID(id uint) (*models.Station, error)
	GetByCode(code string) (*models.Station, error)
	ListActive() ([]models.Station, error)
	ListActiveWithInventory() ([]models.Station, error)
	ListByCity(city string) ([]models.Station, error)
	Search(query string) ([]models.Station, error)
	UpsertInventory(inv *models.StationInventory) error
	GetInventory(stationID uint) (*models.StationInventory, error)
}

// DSKRepository defines the interface for driver seva kendra lookups
type DSKRepository interface {
	Create(center *models.DSKCenter) error
	GetByID(id uint) (*models.DSKCenter, error)
	ListActive() ([]models.DSKCenter, error)
	ListByCity(city string) ([]models.DSKCenter, error)
}

// TransactionRepository defines the interface for payment transaction records
type TransactionRepository interface {
	Create(txn *models.PaymentTransaction) error
	GetByOrderID(orderID string) (*models.PaymentTransaction, error)
	Update(txn *models.PaymentTransaction) error
	ListByDriver(driverID uint, limit int) ([]models.PaymentTransaction, error)
}

// SMSLogRepository defines the interface for outbound SMS audit records
type SMSLogRepository interface {
	Create(entry *models.SMSLog) error
	ListByPhone(phone string, limit int) ([]models.SMSLog, error)
	CountSince(phone string, since time.Time) (int64, error)
}

// QueueRepository defines the interface for cache/queue operations
type QueueRepository interface {
	GetAllKeys() ([]string, error)
	GetValue(key string) (string, error)
	GetTTL(key string) (time.Duration, error)
	DeleteKey(key string) (int64, error)
	GetListLength(key string) (int64, error)
	FindKeysByPatterns(patterns []string) ([]string, error)
	DeleteKeys(keys []string) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Driver      DriverRepository
	Plan        PlanRepository
	Station     StationRepository
	DSK         DSKRepository
	Transaction TransactionRepository
	SMSLog      SMSLogRepository
	Queue       QueueRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Driver:      NewDriverRepository(db),
		Plan:        NewPlanRepository(db),
		Station:     NewStationRepository(db),
		DSK:         NewDSKRepository(db),
		Transaction: NewTransactionRepository(db),
		SMSLog:      NewSMSLogRepository(db),
		Queue:       NewQueueRepository(),
	}
}
