package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/batterysmart/swapledger/app/models"
)

// transactionRepository implements the TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new payment transaction repository instance
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new payment transaction record
func (r *transactionRepository) Create(txn *models.PaymentTransaction) error {
	return r.db.Create(txn).Error
}

// GetByOrderID retrieves a transaction by its BSMART order reference
func (r *transactionRepository) GetByOrderID(orderID string) (*models.PaymentTransaction, error) {
	trimmed := strings.TrimSpace(orderID)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var txn models.PaymentTransaction
	err := r.db.Where("order_id = ?", trimmed).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// Update updates an existing transaction record
func (r *transactionRepository) Update(txn *models.PaymentTransaction) error {
	return r.db.Save(txn).Error
}

// ListByDriver returns the driver's most recent transactions
func (r *transactionRepository) ListByDriver(driverID uint, limit int) ([]models.PaymentTransaction, error) {
	if limit <= 0 {
		limit = 20
	}
	var txns []models.PaymentTransaction
	err := r.db.Where("driver_id = ?", driverID).
		Order("created_at DESC").Limit(limit).Find(&txns).Error
	return txns, err
}
