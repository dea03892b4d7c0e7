package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/testutil"
)

func TestHoldingService_CreateHolding(t *testing.T) {
	ctx := context.Background()

	t.Run("projection starts at the initial position", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)

		h, err := svc.CreateHolding(ctx, request.CreateHoldingRequest{
			Code: "110011",
			Name: "  Growth Fund ",
			Tag:  "equity",
			InitialPosition: &request.InitialPositionRequest{
				Shares: 1000, Cost: 1500, RealizedProfit: 20,
			},
		})
		if err != nil {
			t.Fatalf("CreateHolding() returned unexpected error: %v", err)
		}

		if h.Name != "Growth Fund" {
			t.Errorf("Expected trimmed name 'Growth Fund', got '%s'", h.Name)
		}
		if h.Shares != 1000 {
			t.Errorf("Expected 1000 shares, got %f", h.Shares)
		}
		if !approxEqual(h.AverageCost, 1.5) {
			t.Errorf("Expected average cost 1.5, got %f", h.AverageCost)
		}
		if h.RealizedProfit != 20 {
			t.Errorf("Expected realized profit 20, got %f", h.RealizedProfit)
		}

		stored, err := svc.GetHolding(ctx, "110011")
		if err != nil {
			t.Fatalf("GetHolding() returned unexpected error: %v", err)
		}
		if stored.Initial.Cost != 1500 {
			t.Errorf("Expected stored initial cost 1500, got %f", stored.Initial.Cost)
		}
	})

	t.Run("duplicate code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)
		existing := testutil.NewHolding().Build(t, db)

		_, err := svc.CreateHolding(ctx, request.CreateHoldingRequest{Code: existing.Code, Name: "Again"})
		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})
}

func TestHoldingService_GetHoldings(t *testing.T) {
	ctx := context.Background()

	t.Run("returns empty slice when no holdings exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)

		holdings, err := svc.GetHoldings(ctx)
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(holdings) != 0 {
			t.Errorf("Expected empty slice, got %d holdings", len(holdings))
		}
	})

	t.Run("orders by code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)
		testutil.NewHolding().WithCode("300001").Build(t, db)
		testutil.NewHolding().WithCode("100001").Build(t, db)

		holdings, err := svc.GetHoldings(ctx)
		if err != nil {
			t.Fatalf("GetHoldings() returned unexpected error: %v", err)
		}
		if len(holdings) != 2 {
			t.Fatalf("Expected 2 holdings, got %d", len(holdings))
		}
		if holdings[0].Code != "100001" {
			t.Errorf("Expected first holding 100001, got %s", holdings[0].Code)
		}
	})
}

func TestHoldingService_UpdateHolding(t *testing.T) {
	ctx := context.Background()

	t.Run("changing the initial position re-projects", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)
		records := testutil.NewTestRecordService(t, db)
		h := testutil.NewHolding().Build(t, db)

		if _, err := records.CreateRecord(ctx, h.Code, request.CreateRecordRequest{
			Date: "2024-03-01", Type: "buy", Value: 100, NAV: floatPtr(1.0),
		}); err != nil {
			t.Fatalf("CreateRecord() returned unexpected error: %v", err)
		}

		tag := "bond, core"
		updated, err := svc.UpdateHolding(ctx, h.Code, request.UpdateHoldingRequest{
			Tag:             &tag,
			InitialPosition: &request.InitialPositionRequest{Shares: 100, Cost: 300},
		})
		if err != nil {
			t.Fatalf("UpdateHolding() returned unexpected error: %v", err)
		}

		if updated.Tag != "bond, core" {
			t.Errorf("Expected tag 'bond, core', got '%s'", updated.Tag)
		}
		if updated.Name != h.Name {
			t.Errorf("Expected name to stay '%s', got '%s'", h.Name, updated.Name)
		}
		if !approxEqual(updated.Shares, 200) {
			t.Errorf("Expected 200 shares, got %f", updated.Shares)
		}
		if !approxEqual(updated.AverageCost, 2.0) {
			t.Errorf("Expected average cost 2.0, got %f", updated.AverageCost)
		}
	})

	t.Run("unknown holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)

		name := "x"
		_, err := svc.UpdateHolding(ctx, "999999", request.UpdateHoldingRequest{Name: &name})
		if !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound, got %v", err)
		}
	})
}

func TestHoldingService_DeleteHolding(t *testing.T) {
	ctx := context.Background()

	t.Run("removes holding and its records", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)
		h := testutil.NewHolding().Build(t, db)
		rec := testutil.NewRecord(h.Code).Build(t, db)

		if err := svc.DeleteHolding(ctx, h.Code); err != nil {
			t.Fatalf("DeleteHolding() returned unexpected error: %v", err)
		}

		if _, err := svc.GetHolding(ctx, h.Code); !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound, got %v", err)
		}
		if _, err := testutil.NewTestRecordService(t, db).GetRecord(ctx, rec.ID); !errors.Is(err, apperrors.ErrRecordNotFound) {
			t.Errorf("Expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("unknown holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestHoldingService(t, db)

		if err := svc.DeleteHolding(ctx, "999999"); !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("Expected ErrHoldingNotFound, got %v", err)
		}
	})
}
