package testutil

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/batterysmart/swapledger/app/models"
)

// SetupTestDB opens an in-memory SQLite database with the full schema.
// MaxOpenConns is pinned to 1 because every new connection to :memory:
// gets its own empty database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Driver{},
		&models.SubscriptionPlan{},
		&models.DriverSubscription{},
		&models.SwapEvent{},
		&models.Invoice{},
		&models.InvoiceSequence{},
		&models.PenaltyRecord{},
		&models.LeaveBalance{},
		&models.DriverLeaveRequest{},
		&models.Station{},
		&models.StationInventory{},
		&models.DSKCenter{},
		&models.PaymentTransaction{},
		&models.PaymentWebhookEvent{},
		&models.SMSLog{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the underlying connection.
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close test database: %v", err)
	}
}

// TruncateTables deletes all rows, child tables first.
func TruncateTables(t *testing.T, db *gorm.DB) {
	t.Helper()

	tables := []string{
		"sms_logs",
		"payment_webhook_events",
		"transaction_history",
		"invoices",
		"invoice_sequences",
		"penalty_records",
		"driver_leaves",
		"leave_balances",
		"swaps",
		"station_inventory",
		"driver_subscriptions",
		"dsk_locations",
		"stations",
		"subscription_plans",
		"drivers",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("Warning: Failed to truncate table %s: %v", table, err)
		}
	}
}
