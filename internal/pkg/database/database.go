package database

import "gorm.io/gorm"

var DB *gorm.DB

// GetDB returns the shared connection; nil before SetupDatabase ran.
func GetDB() *gorm.DB {
	return DB
}

// SetDB swaps the shared connection, used by tests to inject an in-memory
// database.
func SetDB(db *gorm.DB) {
	DB = db
}
