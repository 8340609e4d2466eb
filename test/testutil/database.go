package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mediavault/mediavault/pkg/database"
)

// TestDB wraps an in-memory SQLite database for repository and service tests.
type TestDB struct {
	DB *gorm.DB
}

// SetupTestDB creates a fresh in-memory SQLite database with the full
// MediaVault schema migrated. Each call gets an isolated database.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	// Shared cache keeps the in-memory database alive across pooled
	// connections within a single test.
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})

	return &TestDB{DB: db}
}

// TruncateTables deletes all rows from the given tables between tests.
func (tdb *TestDB) TruncateTables(tableNames ...string) error {
	for _, table := range tableNames {
		if err := tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
