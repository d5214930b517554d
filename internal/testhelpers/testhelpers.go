// Package testhelpers provides reusable testing utilities: an in-memory
// database and fixture builders for fights and perspective records.
package testhelpers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cagebase/cagebase/internal/database"
)

// SetupTestDB opens an in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&database.Fight{},
		&database.FightParticipant{},
		&database.PerspectiveRecord{},
		&database.ReconciliationRun{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
