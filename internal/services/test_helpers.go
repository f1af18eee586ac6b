package services

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/mycyberclinics/verifysvc/internal/infrastructure/database"
)

// newTestStore spins up a miniredis-backed shared store for service tests
func newTestStore(t *testing.T) (*miniredis.Miniredis, *database.RedisStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store := database.NewRedisStore(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = store.Close() })

	return mr, store
}
