// Package testutil provides shared test fixtures and store setup for claimdesk tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/claimdesk/internal/model"
	"github.com/Veraticus/claimdesk/internal/service"
	"github.com/Veraticus/claimdesk/internal/storage"
)

// Backend selects the store implementation a test runs against.
type Backend string

// Available test backends.
const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
)

// Backends lists every backend, for tests that run against all of them.
func Backends() []Backend {
	return []Backend{BackendMemory, BackendSQLite}
}

// TestDB represents a test store with its seeded claims.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
	Claims  []*model.Claim
}

// SetupTestDB creates an in-memory store seeded with claims.
// It automatically handles cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewClaimBuilder().WithStatus(model.StatusEstimated).Build(),
//	)
func SetupTestDB(t *testing.T, claims ...*model.Claim) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Claims: claims})
}

// TestDBOptions provides configuration options for test store setup.
type TestDBOptions struct {
	CustomSetup func(context.Context, service.Storage) error
	Backend     Backend
	Claims      []*model.Claim
}

// SetupTestDBWithOptions creates a test store with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()
	ctx := context.Background()

	var store service.Storage
	switch opts.Backend {
	case BackendSQLite:
		sqliteStore, err := storage.NewSQLiteStorage(ctx)
		if err != nil {
			t.Fatalf("failed to create test database: %v", err)
		}
		store = sqliteStore
	default:
		store = storage.NewMemoryStorage()
	}

	for _, claim := range opts.Claims {
		if err := store.CreateClaim(ctx, claim); err != nil {
			t.Fatalf("failed to seed claim %q: %v", claim.ID, err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		Claims:  opts.Claims,
		t:       t,
	}
}

// MustFind returns the stored claim with id or fails the test.
func (db *TestDB) MustFind(id string) *model.Claim {
	db.t.Helper()
	claim, err := db.Storage.FindClaim(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to find claim %q: %v", id, err)
	}
	return claim
}
