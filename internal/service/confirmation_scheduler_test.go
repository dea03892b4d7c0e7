package service_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/testutil"
)

func TestConfirmationScheduler(t *testing.T) {
	t.Run("rejects an invalid schedule", func(t *testing.T) {
		db := testutil.SetupTestDB(t)

		_, err := service.NewConfirmationScheduler("every now and then", testutil.NewTestRecordService(t, db), zap.NewNop())
		if err == nil {
			t.Error("Expected error for invalid schedule, got nil")
		}
	})

	t.Run("run once confirms pending records", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		records := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)
		rec := testutil.NewRecord(h.Code).OnDate(testutil.Date("2024-03-01")).Build(t, db)
		testutil.NewNAV(h.Code).OnDate(testutil.Date("2024-03-01")).WithNAV(1.0).Build(t, db)

		sched, err := service.NewConfirmationScheduler("@every 1h", records, zap.NewNop())
		if err != nil {
			t.Fatalf("NewConfirmationScheduler() returned unexpected error: %v", err)
		}

		n, err := sched.RunOnce(context.Background())
		if err != nil {
			t.Fatalf("RunOnce() returned unexpected error: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 confirmed record, got %d", n)
		}

		got, _ := records.GetRecord(context.Background(), rec.ID)
		if got.IsPending() {
			t.Error("Expected record to be confirmed")
		}
	})

	t.Run("start and stop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)

		sched, err := service.NewConfirmationScheduler("*/5 * * * *", testutil.NewTestRecordService(t, db), zap.NewNop())
		if err != nil {
			t.Fatalf("NewConfirmationScheduler() returned unexpected error: %v", err)
		}

		sched.Start()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		sched.Stop(ctx)

		if ctx.Err() != nil {
			t.Error("Expected stop to finish before the timeout")
		}
	})
}
