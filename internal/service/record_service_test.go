package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/testutil"
)

func floatPtr(v float64) *float64 {
	return &v
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func recordsVersion(t *testing.T, repo *repository.VersionRepository) int64 {
	t.Helper()

	v, err := repo.GetVersions(context.Background())
	if err != nil {
		t.Fatalf("GetVersions() returned unexpected error: %v", err)
	}
	return v.Records
}

func TestRecordService_CreateRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("stays pending when no nav is known", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)

		rec, err := svc.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
			Date: "2024-03-01", Type: "buy", Value: 1000,
		})
		if err != nil {
			t.Fatalf("CreateRecord() returned unexpected error: %v", err)
		}

		if !rec.IsPending() {
			t.Error("Expected record to be pending")
		}
		if rec.Sequence != 1 {
			t.Errorf("Expected sequence 1, got %d", rec.Sequence)
		}

		holding, err := testutil.NewTestHoldingService(t, db).GetHolding(ctx, h.Code)
		if err != nil {
			t.Fatalf("GetHolding() returned unexpected error: %v", err)
		}
		if holding.Shares != 0 {
			t.Errorf("Expected 0 shares for a pending buy, got %f", holding.Shares)
		}
		if len(holding.TradingRecords) != 1 {
			t.Errorf("Expected 1 record, got %d", len(holding.TradingRecords))
		}
	})

	t.Run("confirms immediately with stored nav", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)
		testutil.NewNAV(h.Code).OnDate(testutil.Date("2024-03-01")).WithNAV(2.0).Build(t, db)

		rec, err := svc.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
			Date: "2024-03-01", Type: "buy", Value: 1000,
		})
		if err != nil {
			t.Fatalf("CreateRecord() returned unexpected error: %v", err)
		}

		exec, ok := rec.Execution()
		if !ok {
			t.Fatal("Expected record to be confirmed")
		}
		if !approxEqual(exec.SharesChange, 500) {
			t.Errorf("Expected 500 shares, got %f", exec.SharesChange)
		}

		holding, _ := testutil.NewTestHoldingService(t, db).GetHolding(ctx, h.Code)
		if !approxEqual(holding.Shares, 500) {
			t.Errorf("Expected projection of 500 shares, got %f", holding.Shares)
		}
		if !approxEqual(holding.AverageCost, 2.0) {
			t.Errorf("Expected average cost 2.0, got %f", holding.AverageCost)
		}
	})

	t.Run("explicit nav takes precedence", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)
		testutil.NewNAV(h.Code).OnDate(testutil.Date("2024-03-01")).WithNAV(2.0).Build(t, db)

		rec, err := svc.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
			Date: "2024-03-01", Type: "buy", Value: 1000, NAV: floatPtr(4.0),
		})
		if err != nil {
			t.Fatalf("CreateRecord() returned unexpected error: %v", err)
		}

		exec, _ := rec.Execution()
		if exec.NAV != 4.0 {
			t.Errorf("Expected nav 4.0, got %f", exec.NAV)
		}
		if !approxEqual(exec.SharesChange, 250) {
			t.Errorf("Expected 250 shares, got %f", exec.SharesChange)
		}
	})

	t.Run("sequence grows within a holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)

		for i := 1; i <= 3; i++ {
			rec, err := svc.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
				Date: "2024-03-01", Type: "buy", Value: 100,
			})
			if err != nil {
				t.Fatalf("CreateRecord() returned unexpected error: %v", err)
			}
			if rec.Sequence != i {
				t.Errorf("Expected sequence %d, got %d", i, rec.Sequence)
			}
		}
	})

	t.Run("sell books realized profit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)

		_, err := svc.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
			Date: "2024-03-01", Type: "buy", Value: 1000, NAV: floatPtr(2.0),
		})
		if err != nil {
			t.Fatalf("CreateRecord() buy returned unexpected error: %v", err)
		}

		rec, err := svc.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
			Date: "2024-03-02", Type: "sell", Value: 200, NAV: floatPtr(2.5),
		})
		if err != nil {
			t.Fatalf("CreateRecord() sell returned unexpected error: %v", err)
		}

		exec, _ := rec.Execution()
		if !approxEqual(exec.RealizedProfit(), 100) {
			t.Errorf("Expected realized profit 100, got %f", exec.RealizedProfit())
		}

		holding, _ := testutil.NewTestHoldingService(t, db).GetHolding(ctx, h.Code)
		if !approxEqual(holding.Shares, 300) {
			t.Errorf("Expected 300 shares, got %f", holding.Shares)
		}
		if !approxEqual(holding.AverageCost, 2.0) {
			t.Errorf("Expected average cost to stay 2.0, got %f", holding.AverageCost)
		}
		if !approxEqual(holding.RealizedProfit, 100) {
			t.Errorf("Expected realized profit 100, got %f", holding.RealizedProfit)
		}
	})

	t.Run("oversell leaves the store untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		versions := repository.NewVersionRepository(db)
		h := testutil.NewHolding().WithInitial(100, 100, 0).Build(t, db)

		before := recordsVersion(t, versions)

		_, err := svc.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
			Date: "2024-03-01", Type: "sell", Value: 150, NAV: floatPtr(1.2),
		})
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("Expected ErrInsufficientShares, got %v", err)
		}

		records, _ := svc.GetRecords(ctx, h.Code)
		if len(records) != 0 {
			t.Errorf("Expected no records, got %d", len(records))
		}
		if after := recordsVersion(t, versions); after != before {
			t.Errorf("Expected records version %d, got %d", before, after)
		}
	})

	t.Run("unknown holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)

		_, err := svc.CreateRecord(ctx, "999999", request.CreateRecordRequest{
			Date: "2024-03-01", Type: "buy", Value: 1000,
		})
		if !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound, got %v", err)
		}
	})

	t.Run("bumps records version", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		versions := repository.NewVersionRepository(db)
		h := testutil.NewHolding().Build(t, db)

		before := recordsVersion(t, versions)
		if _, err := svc.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
			Date: "2024-03-01", Type: "buy", Value: 1000,
		}); err != nil {
			t.Fatalf("CreateRecord() returned unexpected error: %v", err)
		}

		if after := recordsVersion(t, versions); after != before+1 {
			t.Errorf("Expected records version %d, got %d", before+1, after)
		}
	})
}

func TestRecordService_ConfirmRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms at stored nav", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)
		rec := testutil.NewRecord(h.Code).OnDate(testutil.Date("2024-03-01")).Buy(600).Build(t, db)
		testutil.NewNAV(h.Code).OnDate(testutil.Date("2024-03-01")).WithNAV(1.5).Build(t, db)

		confirmed, err := svc.ConfirmRecord(ctx, rec.ID, nil)
		if err != nil {
			t.Fatalf("ConfirmRecord() returned unexpected error: %v", err)
		}

		exec, ok := confirmed.Execution()
		if !ok {
			t.Fatal("Expected record to be confirmed")
		}
		if !approxEqual(exec.SharesChange, 400) {
			t.Errorf("Expected 400 shares, got %f", exec.SharesChange)
		}

		holding, _ := testutil.NewTestHoldingService(t, db).GetHolding(ctx, h.Code)
		if !approxEqual(holding.Shares, 400) {
			t.Errorf("Expected projection of 400 shares, got %f", holding.Shares)
		}
	})

	t.Run("confirms at explicit nav", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)
		rec := testutil.NewRecord(h.Code).DividendReinvest(12).Build(t, db)

		confirmed, err := svc.ConfirmRecord(ctx, rec.ID, floatPtr(1.1))
		if err != nil {
			t.Fatalf("ConfirmRecord() returned unexpected error: %v", err)
		}

		exec, _ := confirmed.Execution()
		if exec.SharesChange != 12 {
			t.Errorf("Expected 12 reinvested shares, got %f", exec.SharesChange)
		}
	})

	t.Run("already confirmed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)
		rec := testutil.NewRecord(h.Code).Confirmed(1.0).Build(t, db)

		_, err := svc.ConfirmRecord(ctx, rec.ID, floatPtr(1.2))
		if !errors.Is(err, apperrors.ErrRecordAlreadyConfirmed) {
			t.Errorf("Expected ErrRecordAlreadyConfirmed, got %v", err)
		}
	})

	t.Run("no nav available", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)
		rec := testutil.NewRecord(h.Code).Build(t, db)

		_, err := svc.ConfirmRecord(ctx, rec.ID, nil)
		if !errors.Is(err, apperrors.ErrNAVNotFound) {
			t.Errorf("Expected ErrNAVNotFound, got %v", err)
		}

		stored, _ := svc.GetRecord(ctx, rec.ID)
		if !stored.IsPending() {
			t.Error("Expected record to stay pending")
		}
	})

	t.Run("record not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)

		_, err := svc.ConfirmRecord(ctx, testutil.MakeID(), floatPtr(1.0))
		if !errors.Is(err, apperrors.ErrRecordNotFound) {
			t.Errorf("Expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("sell checks shares held before it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)
		testutil.NewRecord(h.Code).OnDate(testutil.Date("2024-03-01")).Buy(100).Confirmed(1.0).Build(t, db)
		sell := testutil.NewRecord(h.Code).OnDate(testutil.Date("2024-03-02")).WithSequence(2).Sell(150).Build(t, db)

		_, err := svc.ConfirmRecord(ctx, sell.ID, floatPtr(1.0))
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares, got %v", err)
		}
	})
}

func TestRecordService_DeleteRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("removes record and re-projects holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)

		first, _ := svc.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
			Date: "2024-03-01", Type: "buy", Value: 100, NAV: floatPtr(1.0),
		})
		if _, err := svc.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
			Date: "2024-03-02", Type: "buy", Value: 200, NAV: floatPtr(2.0),
		}); err != nil {
			t.Fatalf("CreateRecord() returned unexpected error: %v", err)
		}

		if err := svc.DeleteRecord(ctx, first.ID); err != nil {
			t.Fatalf("DeleteRecord() returned unexpected error: %v", err)
		}

		holding, _ := testutil.NewTestHoldingService(t, db).GetHolding(ctx, h.Code)
		if len(holding.TradingRecords) != 1 {
			t.Errorf("Expected 1 record, got %d", len(holding.TradingRecords))
		}
		if !approxEqual(holding.Shares, 100) {
			t.Errorf("Expected 100 shares, got %f", holding.Shares)
		}
		if !approxEqual(holding.AverageCost, 2.0) {
			t.Errorf("Expected average cost 2.0, got %f", holding.AverageCost)
		}
	})

	t.Run("record not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)

		err := svc.DeleteRecord(ctx, testutil.MakeID())
		if !errors.Is(err, apperrors.ErrRecordNotFound) {
			t.Errorf("Expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestRecordService_ConfirmPending(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms records whose nav arrived", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		a := testutil.NewHolding().WithCode("000001").Build(t, db)
		b := testutil.NewHolding().WithCode("000002").Build(t, db)

		recA := testutil.NewRecord(a.Code).OnDate(testutil.Date("2024-03-01")).Buy(100).Build(t, db)
		recB := testutil.NewRecord(b.Code).OnDate(testutil.Date("2024-03-01")).Buy(100).Build(t, db)
		testutil.NewNAV(a.Code).OnDate(testutil.Date("2024-03-01")).WithNAV(1.25).Build(t, db)

		n, err := svc.ConfirmPending(ctx)
		if err != nil {
			t.Fatalf("ConfirmPending() returned unexpected error: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 confirmed record, got %d", n)
		}

		gotA, _ := svc.GetRecord(ctx, recA.ID)
		if gotA.IsPending() {
			t.Error("Expected record of 000001 to be confirmed")
		}
		gotB, _ := svc.GetRecord(ctx, recB.ID)
		if !gotB.IsPending() {
			t.Error("Expected record of 000002 to stay pending")
		}
	})

	t.Run("confirms a buy before the sell that depends on it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)

		testutil.NewRecord(h.Code).OnDate(testutil.Date("2024-03-01")).Buy(100).Build(t, db)
		testutil.NewRecord(h.Code).OnDate(testutil.Date("2024-03-02")).WithSequence(2).Sell(50).Build(t, db)
		testutil.CreateNAVSeries(t, db, h.Code, testutil.Date("2024-03-01"), 1.0, 1.2)

		n, err := svc.ConfirmPendingForHolding(ctx, h.Code)
		if err != nil {
			t.Fatalf("ConfirmPendingForHolding() returned unexpected error: %v", err)
		}
		if n != 2 {
			t.Errorf("Expected 2 confirmed records, got %d", n)
		}

		holding, _ := testutil.NewTestHoldingService(t, db).GetHolding(ctx, h.Code)
		if !approxEqual(holding.Shares, 50) {
			t.Errorf("Expected 50 shares, got %f", holding.Shares)
		}
		if !approxEqual(holding.RealizedProfit, 10) {
			t.Errorf("Expected realized profit 10, got %f", holding.RealizedProfit)
		}
	})

	t.Run("leaves an oversell pending", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)

		rec := testutil.NewRecord(h.Code).OnDate(testutil.Date("2024-03-01")).Sell(10).Build(t, db)
		testutil.NewNAV(h.Code).OnDate(testutil.Date("2024-03-01")).WithNAV(1.0).Build(t, db)

		n, err := svc.ConfirmPending(ctx)
		if err != nil {
			t.Fatalf("ConfirmPending() returned unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("Expected 0 confirmed records, got %d", n)
		}

		got, _ := svc.GetRecord(ctx, rec.ID)
		if !got.IsPending() {
			t.Error("Expected sell to stay pending")
		}
	})

	t.Run("no change keeps records version", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		versions := repository.NewVersionRepository(db)
		h := testutil.NewHolding().Build(t, db)
		testutil.NewRecord(h.Code).Build(t, db)

		before := recordsVersion(t, versions)
		if _, err := svc.ConfirmPending(ctx); err != nil {
			t.Fatalf("ConfirmPending() returned unexpected error: %v", err)
		}
		if after := recordsVersion(t, versions); after != before {
			t.Errorf("Expected records version %d, got %d", before, after)
		}
	})
}

func TestRecordService_GetRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by date then sequence", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)

		late := testutil.NewRecord(h.Code).OnDate(testutil.Date("2024-03-05")).WithSequence(1).Build(t, db)
		second := testutil.NewRecord(h.Code).OnDate(testutil.Date("2024-03-01")).WithSequence(3).Build(t, db)
		first := testutil.NewRecord(h.Code).OnDate(testutil.Date("2024-03-01")).WithSequence(2).Build(t, db)

		records, err := svc.GetRecords(ctx, h.Code)
		if err != nil {
			t.Fatalf("GetRecords() returned unexpected error: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(records))
		}

		want := []string{first.ID, second.ID, late.ID}
		for i, id := range want {
			if records[i].ID != id {
				t.Errorf("Expected record %d to be %s, got %s", i, id, records[i].ID)
			}
		}
	})

	t.Run("unknown holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRecordService(t, db)

		_, err := svc.GetRecords(ctx, "999999")
		if !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound, got %v", err)
		}
	})
}

