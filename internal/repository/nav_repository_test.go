package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/testutil"
)

func TestNAVRepository_GetNAVOnDate(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewNAVRepository(db)
	testutil.CreateNAVSeries(t, db, "110011", testutil.Date("2024-03-01"), 1.0, 1.1)

	t.Run("returns nav of the day", func(t *testing.T) {
		nav, err := repo.GetNAVOnDate(ctx, "110011", testutil.Date("2024-03-02"))
		if err != nil {
			t.Fatalf("GetNAVOnDate() returned unexpected error: %v", err)
		}
		if nav != 1.1 {
			t.Errorf("Expected 1.1, got %f", nav)
		}
	})

	t.Run("does not fall back to an earlier day", func(t *testing.T) {
		_, err := repo.GetNAVOnDate(ctx, "110011", testutil.Date("2024-03-03"))
		if !errors.Is(err, apperrors.ErrNAVNotFound) {
			t.Errorf("Expected ErrNAVNotFound, got %v", err)
		}
	})
}

func TestNAVRepository_UpsertNAVs(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewNAVRepository(db)

	points := []model.NAVPoint{
		{Code: "110011", Date: testutil.Date("2024-03-01"), NAV: 1.0},
		{Code: "220022", Date: testutil.Date("2024-03-01"), NAV: 2.0},
	}
	if err := repo.UpsertNAVs(ctx, points); err != nil {
		t.Fatalf("UpsertNAVs() returned unexpected error: %v", err)
	}

	points[0].NAV = 1.5
	if err := repo.UpsertNAVs(ctx, points[:1]); err != nil {
		t.Fatalf("UpsertNAVs() returned unexpected error: %v", err)
	}

	all, err := repo.GetAllNAVs(ctx)
	if err != nil {
		t.Fatalf("GetAllNAVs() returned unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(all))
	}
	if all[0].Code != "110011" || all[0].NAV != 1.5 {
		t.Errorf("Expected 110011 at 1.5, got %+v", all[0])
	}

	if err := repo.DeleteAllNAVs(ctx); err != nil {
		t.Fatalf("DeleteAllNAVs() returned unexpected error: %v", err)
	}
	all, _ = repo.GetAllNAVs(ctx)
	if len(all) != 0 {
		t.Errorf("Expected no points, got %d", len(all))
	}
}
