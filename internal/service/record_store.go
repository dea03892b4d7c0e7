package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
)

// recordStore performs atomic read-modify-write cycles on the record set of a holding.
//
// Every mutation runs in one SQL transaction: the holding and its records are read,
// the caller computes the new record set, the stored set is replaced, the position
// projection on the holding is recomputed by a full replay and the records store
// version is bumped. Any error rolls the whole cycle back.
type recordStore struct {
	db          *sql.DB
	holdingRepo *repository.HoldingRepository
	recordRepo  *repository.RecordRepository
	navRepo     *repository.NAVRepository
	versionRepo *repository.VersionRepository
}

func newRecordStore(db *sql.DB) *recordStore {
	return &recordStore{
		db:          db,
		holdingRepo: repository.NewHoldingRepository(db),
		recordRepo:  repository.NewRecordRepository(db),
		navRepo:     repository.NewNAVRepository(db),
		versionRepo: repository.NewVersionRepository(db),
	}
}

// txRepos bundles repositories bound to one transaction.
type txRepos struct {
	holdings *repository.HoldingRepository
	records  *repository.RecordRepository
	navs     *repository.NAVRepository
	versions *repository.VersionRepository
}

// errNoChange lets a mutateFunc abort its cycle without writing anything.
var errNoChange = errors.New("no change")

// mutateFunc receives the holding and its records in (date, sequence) order and
// returns the complete new record set.
type mutateFunc func(repos txRepos, h *model.Holding, records []model.TradingRecord) ([]model.TradingRecord, error)

// inTx runs fn in a transaction and commits when it returns nil.
func (s *recordStore) inTx(ctx context.Context, fn func(repos txRepos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	repos := txRepos{
		holdings: s.holdingRepo.WithTx(tx),
		records:  s.recordRepo.WithTx(tx),
		navs:     s.navRepo.WithTx(tx),
		versions: s.versionRepo.WithTx(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mutate replaces the record set of holding code with the result of fn and returns
// the updated holding, records attached.
func (s *recordStore) mutate(ctx context.Context, code string, fn mutateFunc) (model.Holding, error) {
	var result model.Holding

	err := s.inTx(ctx, func(repos txRepos) error {
		h, err := repos.holdings.GetHolding(ctx, code)
		if err != nil {
			return err
		}

		records, err := repos.records.GetRecordsByHolding(ctx, code)
		if err != nil {
			return err
		}

		updated, err := fn(repos, &h, records)
		if errors.Is(err, errNoChange) {
			h.TradingRecords = records
			result = h
			return err
		}
		if err != nil {
			return err
		}
		updated = ledger.SortRecords(updated)

		if err := repos.records.ReplaceRecords(ctx, code, updated); err != nil {
			return err
		}

		project(&h, updated)
		if err := repos.holdings.UpdateHolding(ctx, &h); err != nil {
			return err
		}

		if err := repos.versions.Bump(ctx, repository.StoreRecords); err != nil {
			return err
		}

		h.TradingRecords = updated
		result = h
		return nil
	})
	if err != nil && !errors.Is(err, errNoChange) {
		return model.Holding{}, err
	}

	return result, nil
}

// project rewrites the stored position of h from a full replay of records.
func project(h *model.Holding, records []model.TradingRecord) {
	pos := ledger.Replay(records, ledger.Seed(h.Initial))
	h.Shares = pos.Shares
	h.AverageCost = pos.AverageCost()
	h.RealizedProfit = pos.RealizedProfit
}
