package testsupport

import (
	"testing"

	"swextract/internal/config"
	"swextract/internal/ledger"
)

// MustOpenLedger opens the run ledger for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
