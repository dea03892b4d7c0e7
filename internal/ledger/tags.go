package ledger

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// UntaggedLabel is the bucket for holdings without any tag.
const UntaggedLabel = "untagged"

// SortOrder selects how SortTags compares values.
type SortOrder string

// Supported sort orders.
const (
	SortAsc     SortOrder = "asc"
	SortDesc    SortOrder = "desc"
	SortAbsAsc  SortOrder = "abs-asc"
	SortAbsDesc SortOrder = "abs-desc"
)

// tagSortKeys maps the sortable TagAnalysis fields to their accessors.
var tagSortKeys = map[string]func(model.TagAnalysis) float64{
	"fundCount":         func(t model.TagAnalysis) float64 { return float64(t.FundCount) },
	"costBasis":         func(t model.TagAnalysis) float64 { return t.CostBasis },
	"marketValue":       func(t model.TagAnalysis) float64 { return t.MarketValue },
	"cumulativeValue":   func(t model.TagAnalysis) float64 { return t.CumulativeValue },
	"holdingProfit":     func(t model.TagAnalysis) float64 { return t.HoldingProfit },
	"holdingProfitRate": func(t model.TagAnalysis) float64 { return t.HoldingProfitRate },
	"totalProfit":       func(t model.TagAnalysis) float64 { return t.TotalProfit },
	"totalProfitRate":   func(t model.TagAnalysis) float64 { return t.TotalProfitRate },
	"dailyProfit":       func(t model.TagAnalysis) float64 { return t.DailyProfit },
	"dailyProfitRate":   func(t model.TagAnalysis) float64 { return t.DailyProfitRate },
	"recentProfit":      func(t model.TagAnalysis) float64 { return t.RecentProfit },
	"costShare":         func(t model.TagAnalysis) float64 { return t.CostShare },
	"valueShare":        func(t model.TagAnalysis) float64 { return t.ValueShare },
	"profitShare":       func(t model.TagAnalysis) float64 { return t.ProfitShare },
	"costEfficiency":    func(t model.TagAnalysis) float64 { return t.CostEfficiency },
	"valueEfficiency":   func(t model.TagAnalysis) float64 { return t.ValueEfficiency },
}

// ValidTagSortKey reports whether key can be passed to SortTags.
func ValidTagSortKey(key string) bool {
	_, ok := tagSortKeys[key]
	return ok
}

// ValidSortOrder reports whether order is a supported SortOrder.
func ValidSortOrder(order SortOrder) bool {
	switch order {
	case SortAsc, SortDesc, SortAbsAsc, SortAbsDesc:
		return true
	}
	return false
}

// SplitTags splits a comma-joined tag string into distinct trimmed labels,
// keeping first-occurrence order. Both ',' and the full-width '，' separate labels.
func SplitTags(tag string) []string {
	fields := strings.FieldsFunc(tag, func(r rune) bool { return r == ',' || r == '，' })

	seen := make(map[string]bool, len(fields))
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		tags = append(tags, f)
	}
	return tags
}

// ValueHoldings values every holding at its current position (all confirmed records
// applied) and latest NAV. Output is ordered by holding code.
func ValueHoldings(holdings []model.Holding, navs NAVBook) []model.HoldingValuation {
	sorted := sortHoldings(holdings)
	valuations := make([]model.HoldingValuation, 0, len(sorted))
	for _, h := range sorted {
		pos := Replay(h.TradingRecords, Seed(h.Initial))
		valuations = append(valuations, valueHolding(h, pos, navs[h.Code]))
	}
	return valuations
}

func valueHolding(h model.Holding, pos Position, q model.NAVQuote) model.HoldingValuation {
	v := model.HoldingValuation{
		Code:           h.Code,
		Name:           h.Name,
		Tag:            h.Tag,
		Shares:         pos.Shares,
		AverageCost:    pos.AverageCost(),
		CostBasis:      pos.TotalCost,
		RealizedProfit: pos.RealizedProfit,
	}

	if q.Latest > 0 {
		v.Valued = true
		v.LatestNAV = q.Latest
		v.MarketValue = pos.Shares * q.Latest
		v.HoldingProfit = v.MarketValue - pos.TotalCost
		v.DailyProfit = dailyProfit(pos.Shares, q)
		if q.Recent > 0 {
			v.RecentProfit = pos.Shares * (q.Latest - q.Recent)
		}
	}

	v.CumulativeValue = v.MarketValue + v.RealizedProfit
	v.TotalProfit = v.HoldingProfit + v.RealizedProfit
	v.HoldingProfitRate = percent(v.HoldingProfit, v.CostBasis)
	v.TotalProfitRate = percent(v.TotalProfit, v.CostBasis)
	v.DailyProfitRate = percent(v.DailyProfit, v.MarketValue-v.DailyProfit)
	return v
}

// AggregateByTag rolls valuations up per tag. A holding with N tags contributes its
// full figures to each of the N buckets; holdings without tags go to UntaggedLabel.
//
// Cost, value and profit shares are measured against portfolio totals in which each
// holding counts once. Efficiency ratios are profitShare/costShare and
// profitShare/valueShare, reported as 0 whenever they are undefined.
// Output is ordered by tag name.
func AggregateByTag(valuations []model.HoldingValuation) []model.TagAnalysis {
	var portfolioCost, portfolioValue, portfolioProfit float64
	buckets := make(map[string]*model.TagAnalysis)

	for _, v := range valuations {
		portfolioCost += v.CostBasis
		portfolioValue += v.MarketValue
		portfolioProfit += v.TotalProfit

		tags := SplitTags(v.Tag)
		if len(tags) == 0 {
			tags = []string{UntaggedLabel}
		}
		for _, tag := range tags {
			b, ok := buckets[tag]
			if !ok {
				b = &model.TagAnalysis{Tag: tag}
				buckets[tag] = b
			}
			b.FundCount++
			b.CostBasis += v.CostBasis
			b.MarketValue += v.MarketValue
			b.CumulativeValue += v.CumulativeValue
			b.HoldingProfit += v.HoldingProfit
			b.TotalProfit += v.TotalProfit
			b.DailyProfit += v.DailyProfit
			b.RecentProfit += v.RecentProfit
		}
	}

	result := make([]model.TagAnalysis, 0, len(buckets))
	for _, b := range buckets {
		b.HoldingProfitRate = percent(b.HoldingProfit, b.CostBasis)
		b.TotalProfitRate = percent(b.TotalProfit, b.CostBasis)
		b.DailyProfitRate = percent(b.DailyProfit, b.MarketValue-b.DailyProfit)
		b.CostShare = ratio(b.CostBasis, portfolioCost)
		b.ValueShare = ratio(b.MarketValue, portfolioValue)
		b.ProfitShare = ratio(b.TotalProfit, portfolioProfit)
		b.CostEfficiency = ratio(b.ProfitShare, b.CostShare)
		b.ValueEfficiency = ratio(b.ProfitShare, b.ValueShare)
		result = append(result, *b)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Tag < result[j].Tag })
	return result
}

// SortTags returns a copy of tags sorted by key in the given order.
// Equal values keep their input order.
func SortTags(tags []model.TagAnalysis, key string, order SortOrder) ([]model.TagAnalysis, error) {
	get, ok := tagSortKeys[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownSortKey, key)
	}

	var less func(a, b float64) bool
	switch order {
	case SortAsc:
		less = func(a, b float64) bool { return a < b }
	case SortDesc:
		less = func(a, b float64) bool { return a > b }
	case SortAbsAsc:
		less = func(a, b float64) bool { return math.Abs(a) < math.Abs(b) }
	case SortAbsDesc:
		less = func(a, b float64) bool { return math.Abs(a) > math.Abs(b) }
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownSortOrder, order)
	}

	sorted := make([]model.TagAnalysis, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(get(sorted[i]), get(sorted[j]))
	})
	return sorted, nil
}
