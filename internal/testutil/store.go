package testutil

import (
	"testing"

	"tvc-go/internal/database"
	"tvc-go/internal/database/migrations"
	"tvc-go/internal/tvc"
)

// NewTestStore creates an in-memory version store with schema applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) tvc.Store {
	t.Helper()

	db, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.TreeUp(db); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	store := database.NewSQLiteStoreFromDB(db)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewTestRegistry creates an in-memory registry with schema applied.
// The registry is automatically closed when the test completes.
func NewTestRegistry(t *testing.T) tvc.Registry {
	t.Helper()

	db, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.RegistryUp(db); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	registry := database.NewSQLiteRegistryFromDB(db)
	t.Cleanup(func() {
		registry.Close()
	})
	return registry
}
