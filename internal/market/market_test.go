package market

import (
	"path/filepath"
	"testing"

	"github.com/TheWindows/bazaar/internal/catalog"
	"github.com/TheWindows/bazaar/internal/store"
)

func openTestStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "bazaar.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	err = db.Reconcile([]catalog.Item{{
		ID:       "stone",
		Category: "blocks",
		Buy:      5,
		Sell:     0.42,
		MinPrice: 4,
		MaxPrice: 6,
	}})
	if err != nil {
		t.Fatalf("seed prices: %v", err)
	}
	return db
}
