package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
)

// maxLoadAttempts bounds the retries of DataLoaderService.Load when writers keep
// moving the store versions.
const maxLoadAttempts = 3

// DataLoaderService centralizes the loading of everything the ledger engine needs
// for one computation: holdings with their records, NAV quotes and the store versions
// the data belongs to.
//
// Holdings, records and quotes are loaded concurrently. The store versions are read
// before and after; when they differ a writer committed in between and the load is
// repeated so the result always matches one pair of versions.
type DataLoaderService struct {
	holdingRepo  *repository.HoldingRepository
	recordRepo   *repository.RecordRepository
	navRepo      *repository.NAVRepository
	versionRepo  *repository.VersionRepository
	recentWindow int
	logger       *zap.Logger
}

// NewDataLoaderService creates a new DataLoaderService on db.
func NewDataLoaderService(db *sql.DB, recentWindow int, logger *zap.Logger) *DataLoaderService {
	return &DataLoaderService{
		holdingRepo:  repository.NewHoldingRepository(db),
		recordRepo:   repository.NewRecordRepository(db),
		navRepo:      repository.NewNAVRepository(db),
		versionRepo:  repository.NewVersionRepository(db),
		recentWindow: recentWindow,
		logger:       logger.Named("loader"),
	}
}

// LedgerData contains all data needed for snapshot, valuation and tag computations.
// Holdings are ordered by code and carry their records in (date, sequence) order.
type LedgerData struct {
	Versions model.StoreVersions
	Holdings []model.Holding
	NAVs     ledger.NAVBook
}

// Versions returns the current store versions.
func (s *DataLoaderService) Versions(ctx context.Context) (model.StoreVersions, error) {
	return s.versionRepo.GetVersions(ctx)
}

// Load reads a consistent LedgerData.
func (s *DataLoaderService) Load(ctx context.Context) (*LedgerData, error) {
	for attempt := 1; attempt <= maxLoadAttempts; attempt++ {
		before, err := s.versionRepo.GetVersions(ctx)
		if err != nil {
			return nil, err
		}

		data, err := s.load(ctx)
		if err != nil {
			return nil, err
		}

		after, err := s.versionRepo.GetVersions(ctx)
		if err != nil {
			return nil, err
		}

		if before == after {
			data.Versions = after
			return data, nil
		}

		s.logger.Debug("store changed while loading, retrying",
			zap.Int("attempt", attempt),
			zap.Int64("recordsBefore", before.Records),
			zap.Int64("recordsAfter", after.Records),
			zap.Int64("navBefore", before.NAV),
			zap.Int64("navAfter", after.NAV),
		)
	}

	return nil, fmt.Errorf("store kept changing during %d load attempts: %w", maxLoadAttempts, apperrors.ErrDataInconsistency)
}

func (s *DataLoaderService) load(ctx context.Context) (*LedgerData, error) {
	var (
		holdings []model.Holding
		records  map[string][]model.TradingRecord
		quotes   map[string]model.NAVQuote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		holdings, err = s.holdingRepo.GetHoldings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.recordRepo.GetRecords(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		quotes, err = s.navRepo.GetQuotes(gctx, nil, s.recentWindow)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range holdings {
		holdings[i].TradingRecords = records[holdings[i].Code]
		if holdings[i].TradingRecords == nil {
			holdings[i].TradingRecords = []model.TradingRecord{}
		}
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Code < holdings[j].Code })

	return &LedgerData{
		Holdings: holdings,
		NAVs:     ledger.NAVBook(quotes),
	}, nil
}
