package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
)

func TestAnalysisService_RecomputeIgnoresCallerCancellation(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = db.Exec(`INSERT INTO holding (code, name, tag, shares, average_cost, realized_profit,
		initial_shares, initial_cost, initial_realized_profit, created_at)
		VALUES ('000001', 'Fund', 'equity', 10, 1, 0, 10, 10, 0, '2024-03-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("Failed to create holding: %v", err)
	}

	svc := NewAnalysisService(NewDataLoaderService(db, 7, zap.NewNop()), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.recompute(ctx)
	if err != nil {
		t.Fatalf("recompute() returned unexpected error: %v", err)
	}
	if len(result.valuations) != 1 {
		t.Errorf("Expected 1 valuation, got %d", len(result.valuations))
	}

	svc.mu.RLock()
	cached := svc.cached
	svc.mu.RUnlock()
	if cached != result {
		t.Error("Expected recompute to store its result")
	}
}
