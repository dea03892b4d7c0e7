package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
)

// NAVService stores and serves fund NAV series.
type NAVService struct {
	store        *recordStore
	navRepo      *repository.NAVRepository
	recentWindow int
	logger       *zap.Logger
}

// NewNAVService creates a new NAVService. recentWindow is the number of trading days
// covered by NAVQuote.Recent.
func NewNAVService(db *sql.DB, recentWindow int, logger *zap.Logger) *NAVService {
	return &NAVService{
		store:        newRecordStore(db),
		navRepo:      repository.NewNAVRepository(db),
		recentWindow: recentWindow,
		logger:       logger.Named("nav"),
	}
}

// UpsertNAVs stores the NAV points of code, overwriting existing days, and bumps the
// NAV store version. Requests are expected to be validated.
func (s *NAVService) UpsertNAVs(ctx context.Context, code string, req request.UpsertNAVRequest) ([]model.NAVPoint, error) {
	points := make([]model.NAVPoint, 0, len(req.Points))
	for _, p := range req.Points {
		date, err := time.Parse(model.DateLayout, p.Date)
		if err != nil {
			return nil, err
		}
		points = append(points, model.NAVPoint{Code: code, Date: date, NAV: p.NAV})
	}

	err := s.store.inTx(ctx, func(repos txRepos) error {
		if err := repos.navs.UpsertNAVs(ctx, points); err != nil {
			return err
		}
		return repos.versions.Bump(ctx, repository.StoreNAV)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store nav points: %w", err)
	}

	s.logger.Info("nav points stored", zap.String("code", code), zap.Int("count", len(points)))
	return points, nil
}

// GetNAVHistory returns the NAV series of code between startDate and endDate inclusive.
func (s *NAVService) GetNAVHistory(ctx context.Context, code string, startDate, endDate time.Time) ([]model.NAVPoint, error) {
	return s.navRepo.GetNAVHistory(ctx, code, startDate, endDate)
}

// GetQuotes returns NAV quotes for codes, or for every fund when codes is empty.
// Codes without any NAV are omitted.
func (s *NAVService) GetQuotes(ctx context.Context, codes []string) ([]model.NAVQuote, error) {
	quotes, err := s.navRepo.GetQuotes(ctx, codes, s.recentWindow)
	if err != nil {
		return nil, err
	}

	result := make([]model.NAVQuote, 0, len(quotes))
	if len(codes) > 0 {
		for _, code := range codes {
			if q, ok := quotes[code]; ok {
				result = append(result, q)
			}
		}
		return result, nil
	}

	for _, q := range quotes {
		result = append(result, q)
	}
	sortQuotes(result)
	return result, nil
}

func sortQuotes(quotes []model.NAVQuote) {
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Code < quotes[j].Code })
}
