package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// Default tag sorting when the caller passes none.
const (
	DefaultTagSortKey   = "marketValue"
	DefaultTagSortOrder = ledger.SortDesc
)

// analysis is one full engine run over a LedgerData.
type analysis struct {
	versions   model.StoreVersions
	snapshots  []model.PortfolioSnapshot
	valuations []model.HoldingValuation
	tags       []model.TagAnalysis
}

// AnalysisService serves snapshots, holding valuations and tag rollups.
//
// Results are computed by a full replay and memoized per pair of store versions;
// any write to records or NAVs invalidates the memo. Concurrent requests for the
// same versions share one computation.
type AnalysisService struct {
	loader *DataLoaderService
	logger *zap.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	cached *analysis
}

// NewAnalysisService creates a new AnalysisService on top of loader.
func NewAnalysisService(loader *DataLoaderService, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		loader: loader,
		logger: logger.Named("analysis"),
	}
}

func (s *AnalysisService) current(ctx context.Context) (*analysis, error) {
	versions, err := s.loader.Versions(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached := s.cached
	s.mu.RUnlock()
	if cached != nil && cached.versions == versions {
		return cached, nil
	}

	key := fmt.Sprintf("%d/%d", versions.Records, versions.NAV)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.recompute(ctx)
	})
	if err != nil {
		return nil, err
	}

	return v.(*analysis), nil
}

// recompute runs under the singleflight group. Other callers share its result, so
// the load is detached from the cancellation of the caller that started it.
func (s *AnalysisService) recompute(ctx context.Context) (*analysis, error) {
	data, err := s.loader.Load(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}

	result := compute(data)

	s.mu.Lock()
	if s.cached == nil || newerVersions(result.versions, s.cached.versions) {
		s.cached = result
	}
	s.mu.Unlock()

	s.logger.Debug("analysis recomputed",
		zap.Int64("recordsVersion", result.versions.Records),
		zap.Int64("navVersion", result.versions.NAV),
		zap.Int("holdings", len(data.Holdings)),
		zap.Int("snapshots", len(result.snapshots)),
	)
	return result, nil
}

func compute(data *LedgerData) *analysis {
	valuations := ledger.ValueHoldings(data.Holdings, data.NAVs)
	return &analysis{
		versions:   data.Versions,
		snapshots:  ledger.BuildSnapshots(data.Holdings, data.NAVs),
		valuations: valuations,
		tags:       ledger.AggregateByTag(valuations),
	}
}

func newerVersions(a, b model.StoreVersions) bool {
	return a.Records >= b.Records && a.NAV >= b.NAV
}

// Snapshots returns the snapshot of every activity date, newest first, with the
// baseline snapshot last.
func (s *AnalysisService) Snapshots(ctx context.Context) ([]model.PortfolioSnapshot, error) {
	a, err := s.current(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToBuildSnapshots, err)
	}

	result := make([]model.PortfolioSnapshot, 0, len(a.snapshots))
	for _, snap := range a.snapshots {
		result = append(result, roundSnapshot(snap))
	}
	return result, nil
}

// Snapshot returns the snapshot of one date ("YYYY-MM-DD") or the baseline.
// Returns apperrors.ErrSnapshotNotFound when the date has no confirmed activity.
func (s *AnalysisService) Snapshot(ctx context.Context, date string) (model.PortfolioSnapshot, error) {
	a, err := s.current(ctx)
	if err != nil {
		return model.PortfolioSnapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToBuildSnapshots, err)
	}

	for _, snap := range a.snapshots {
		if snap.Date == date {
			return roundSnapshot(snap), nil
		}
	}
	return model.PortfolioSnapshot{}, fmt.Errorf("%s: %w", date, apperrors.ErrSnapshotNotFound)
}

// HoldingValuations values every holding at its latest NAV, ordered by code.
func (s *AnalysisService) HoldingValuations(ctx context.Context) ([]model.HoldingValuation, error) {
	a, err := s.current(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToValueHoldings, err)
	}

	result := make([]model.HoldingValuation, 0, len(a.valuations))
	for _, v := range a.valuations {
		result = append(result, roundValuation(v))
	}
	return result, nil
}

// TagAnalysis returns the tag rollup sorted by sortBy in order. Empty arguments
// fall back to DefaultTagSortKey and DefaultTagSortOrder.
func (s *AnalysisService) TagAnalysis(ctx context.Context, sortBy string, order ledger.SortOrder) ([]model.TagAnalysis, error) {
	if sortBy == "" {
		sortBy = DefaultTagSortKey
	}
	if order == "" {
		order = DefaultTagSortOrder
	}
	if !ledger.ValidTagSortKey(sortBy) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownSortKey, sortBy)
	}
	if !ledger.ValidSortOrder(order) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownSortOrder, order)
	}

	a, err := s.current(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToAnalyzeTags, err)
	}

	sorted, err := ledger.SortTags(a.tags, sortBy, order)
	if err != nil {
		return nil, err
	}

	for i := range sorted {
		sorted[i] = roundTag(sorted[i])
	}
	return sorted, nil
}

func roundSnapshot(s model.PortfolioSnapshot) model.PortfolioSnapshot {
	s.CostBasis = round(s.CostBasis)
	s.MarketValue = round(s.MarketValue)
	s.CumulativeValue = round(s.CumulativeValue)
	s.RealizedProfit = round(s.RealizedProfit)
	s.HoldingProfit = round(s.HoldingProfit)
	s.HoldingProfitRate = round(s.HoldingProfitRate)
	s.TotalProfit = round(s.TotalProfit)
	s.TotalProfitRate = round(s.TotalProfitRate)
	s.DailyProfit = round(s.DailyProfit)
	s.DailyProfitRate = round(s.DailyProfitRate)
	s.NetAmountChange = round(s.NetAmountChange)
	s.MarketValueChange = round(s.MarketValueChange)

	if s.Operation != nil {
		op := *s.Operation
		op.TotalBuyAmount = round(op.TotalBuyAmount)
		op.TotalBuyFloatingProfit = round(op.TotalBuyFloatingProfit)
		op.TotalSellAmount = round(op.TotalSellAmount)
		op.TotalSellOpportunityProfit = round(op.TotalSellOpportunityProfit)
		op.TotalSellRealizedProfit = round(op.TotalSellRealizedProfit)
		op.TotalDividendCash = round(op.TotalDividendCash)
		op.TotalReinvestedShares = roundShares(op.TotalReinvestedShares)
		op.OperationProfit = round(op.OperationProfit)
		op.ProfitPerHundred = round(op.ProfitPerHundred)
		op.ProfitCaused = round(op.ProfitCaused)
		op.ProfitCausedPerHundred = round(op.ProfitCausedPerHundred)
		op.OperationEffect = round(op.OperationEffect)

		records := make([]model.RecordAttribution, len(op.Records))
		for i, r := range op.Records {
			records[i] = roundAttribution(r)
		}
		op.Records = records
		s.Operation = &op
	}

	return s
}

func roundAttribution(r model.RecordAttribution) model.RecordAttribution {
	r.SharesChange = roundShares(r.SharesChange)
	r.Amount = round(r.Amount)
	r.FloatingProfit = round(r.FloatingProfit)
	r.FloatingProfitPercent = round(r.FloatingProfitPercent)
	r.OpportunityProfit = round(r.OpportunityProfit)
	r.OpportunityProfitPercent = round(r.OpportunityProfitPercent)
	r.RealizedProfit = round(r.RealizedProfit)
	r.RealizedProfitPercent = round(r.RealizedProfitPercent)
	r.CostBasisDelta = round(r.CostBasisDelta)
	return r
}

func roundValuation(v model.HoldingValuation) model.HoldingValuation {
	v.Shares = roundShares(v.Shares)
	v.AverageCost = roundNAV(v.AverageCost)
	v.CostBasis = round(v.CostBasis)
	v.MarketValue = round(v.MarketValue)
	v.RealizedProfit = round(v.RealizedProfit)
	v.CumulativeValue = round(v.CumulativeValue)
	v.HoldingProfit = round(v.HoldingProfit)
	v.HoldingProfitRate = round(v.HoldingProfitRate)
	v.TotalProfit = round(v.TotalProfit)
	v.TotalProfitRate = round(v.TotalProfitRate)
	v.DailyProfit = round(v.DailyProfit)
	v.DailyProfitRate = round(v.DailyProfitRate)
	v.RecentProfit = round(v.RecentProfit)
	return v
}

func roundTag(t model.TagAnalysis) model.TagAnalysis {
	t.CostBasis = round(t.CostBasis)
	t.MarketValue = round(t.MarketValue)
	t.CumulativeValue = round(t.CumulativeValue)
	t.HoldingProfit = round(t.HoldingProfit)
	t.TotalProfit = round(t.TotalProfit)
	t.DailyProfit = round(t.DailyProfit)
	t.RecentProfit = round(t.RecentProfit)
	t.HoldingProfitRate = round(t.HoldingProfitRate)
	t.TotalProfitRate = round(t.TotalProfitRate)
	t.DailyProfitRate = round(t.DailyProfitRate)
	t.CostShare = roundRatio(t.CostShare)
	t.ValueShare = roundRatio(t.ValueShare)
	t.ProfitShare = roundRatio(t.ProfitShare)
	t.CostEfficiency = roundRatio(t.CostEfficiency)
	t.ValueEfficiency = roundRatio(t.ValueEfficiency)
	return t
}
