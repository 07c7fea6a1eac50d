package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/batterysmart/swapledger/app/models"
)

// dskRepository implements the DSKRepository interface
type dskRepository struct {
	db *gorm.DB
}

// NewDSKRepository creates a new DSK repository instance
func NewDSKRepository(db *gorm.DB) DSKRepository {
	return &dskRepository{db: db}
}

// Create creates a new DSK center in the database
func (r *dskRepository) Create(center *models.DSKCenter) error {
	return r.db.Create(center).Error
}

// GetByID retrieves a DSK center by its ID
func (r *dskRepository) GetByID(id uint) (*models.DSKCenter, error) {
	var center models.DSKCenter
	err := r.db.First(&center, id).Error
	if err != nil {
		return nil, err
	}
	return &center, nil
}

// ListActive returns all active DSK centers
func (r *dskRepository) ListActive() ([]models.DSKCenter, error) {
	var centers []models.DSKCenter
	err := r.db.Where("is_active = ?", true).Find(&centers).Error
	return centers, err
}

// ListByCity returns active DSK centers in the given city
func (r *dskRepository) ListByCity(city string) ([]models.DSKCenter, error) {
	var centers []models.DSKCenter
	err := r.db.Where("is_active = ? AND city = ?", true, strings.TrimSpace(city)).Find(&centers).Error
	return centers, err
}
