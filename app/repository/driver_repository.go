package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/batterysmart/swapledger/app/models"
)

// driverRepository implements the DriverRepository interface
type driverRepository struct {
	db *gorm.DB
}

// NewDriverRepository creates a new driver repository instance
func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

// Create creates a new driver in the database
func (r *driverRepository) Create(driver *models.Driver) error {
	return r.db.Create(driver).Error
}

// GetByID retrieves a driver by their ID
func (r *driverRepository) GetByID(id uint) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.First(&driver, id).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// GetByPhone retrieves a driver by their phone number
func (r *driverRepository) GetByPhone(phone string) (*models.Driver, error) {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var driver models.Driver
	err := r.db.Where("phone_number = ?", trimmed).First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// Update updates an existing driver in the database
func (r *driverRepository) Update(driver *models.Driver) error {
	return r.db.Save(driver).Error
}

// Deactivate flags a driver inactive without deleting the row
func (r *driverRepository) Deactivate(id uint) error {
	return r.db.Model(&models.Driver{}).Where("id = ?", id).Update("is_active", false).Error
}

// Count returns the total number of drivers
func (r *driverRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Driver{}).Count(&count).Error
	return count, err
}
