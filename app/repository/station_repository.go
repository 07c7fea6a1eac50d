package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/batterysmart/swapledger/app/models"
)

// stationRepository implements the StationRepository interface
type stationRepository struct {
	db *gorm.DB
}

// NewStationRepository creates a new station repository instance
func NewStationRepository(db *gorm.DB) StationRepository {
	return &stationRepository{db: db}
}

// Create creates a new station in the database
func (r *stationRepository) Create(station *models.Station) error {
	return r.db.Create(station).Error
}

// GetByID retrieves a station by its ID
func (r *stationRepository) GetByID(id uint) (*models.Station, error) {
	var station models.Station
	err := r.db.First(&station, id).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

// GetByCode retrieves a station by its code
func (r *stationRepository) GetByCode(code string) (*models.Station, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var station models.Station
	err := r.db.Where("code = ?", trimmed).First(&station).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

// ListActive returns all active stations
func (r *stationRepository) ListActive() ([]models.Station, error) {
	var stations []models.Station
	err := r.db.Where("is_active = ?", true).Find(&stations).Error
	return stations, err
}

// ListActiveWithInventory returns active stations with their inventory rows
// preloaded for availability views
func (r *stationRepository) ListActiveWithInventory() ([]models.Station, error) {
	var stations []models.Station
	err := r.db.Where("is_active = ?", true).Preload("Inventory").Find(&stations).Error
	return stations, err
}

// ListByCity returns active stations in the given city
func (r *stationRepository) ListByCity(city string) ([]models.Station, error) {
	var stations []models.Station
	err := r.db.Where("is_active = ? AND city = ?", true, strings.TrimSpace(city)).
		Preload("Inventory").Find(&stations).Error
	return stations, err
}

// Search matches stations across name, code, address, landmark and city.
// Results with more available batteries come first.
func (r *stationRepository) Search(query string) ([]models.Station, error) {
	like := "%" + strings.TrimSpace(query) + "%"
	var stations []models.Station
	err := r.db.
		Select("stations.*").
		Joins("LEFT JOIN station_inventory ON station_inventory.station_id = stations.id").
		Where("stations.is_active = ?", true).
		Where("stations.name LIKE ? OR stations.code LIKE ? OR stations.address LIKE ? OR stations.landmark LIKE ? OR stations.city LIKE ?",
			like, like, like, like, like).
		Order("station_inventory.available_batteries DESC").
		Preload("Inventory").
		Find(&stations).Error
	return stations, err
}

// UpsertInventory inserts or replaces the inventory row for a station
func (r *stationRepository) UpsertInventory(inv *models.StationInventory) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "station_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"available_batteries", "charging_batteries", "total_slots", "last_updated",
		}),
	}).Create(inv).Error
}

// GetInventory retrieves the inventory row for a station
func (r *stationRepository) GetInventory(stationID uint) (*models.StationInventory, error) {
	var inv models.StationInventory
	err := r.db.Where("station_id = ?", stationID).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
