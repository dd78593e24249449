// Package testdb provides an in-memory SQLite Store for tests.
package testdb

import (
	"testing"

	"smartbin-backend/internal/database"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// New opens an in-memory SQLite database with all migrations applied and
// plans seeded. The store is closed when the test completes.
func New(t *testing.T) *database.Store {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrating test database: %v", err)
	}
	if err := database.SeedSubscriptionPlans(db); err != nil {
		db.Close()
		t.Fatalf("seeding test database: %v", err)
	}

	store := database.NewStore(db)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})
	return store
}
