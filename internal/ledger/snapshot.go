package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// NAVBook maps fund codes to their NAV quotes. It is the only market data the
// engine sees; callers build it per computation.
type NAVBook map[string]model.NAVQuote

// Latest returns the latest NAV of code, or 0 when none is known.
func (b NAVBook) Latest(code string) float64 {
	q, ok := b[code]
	if !ok || q.Latest <= 0 {
		return 0
	}
	return q.Latest
}

// totals accumulates valuation figures over a set of positions.
// Positions without a NAV count towards cost and realized profit only.
type totals struct {
	cost          float64
	valuedCost    float64
	market        float64
	realized      float64
	holdingProfit float64
	daily         float64
}

func (t *totals) add(p Position, q model.NAVQuote) {
	t.cost += p.TotalCost
	t.realized += p.RealizedProfit
	if q.Latest <= 0 {
		return
	}
	value := p.Shares * q.Latest
	t.market += value
	t.valuedCost += p.TotalCost
	t.holdingProfit += value - p.TotalCost
	t.daily += dailyProfit(p.Shares, q)
}

// snapshot converts the totals into snapshot figures.
// HoldingProfit only exists for positions with a NAV, so HoldingProfitRate is
// measured against their cost alone. TotalProfit also carries the realized profit
// of unvalued positions, so TotalProfitRate is measured against the full cost basis.
func (t totals) snapshot(date string) model.PortfolioSnapshot {
	totalProfit := t.holdingProfit + t.realized
	return model.PortfolioSnapshot{
		Date:              date,
		CostBasis:         t.cost,
		MarketValue:       t.market,
		CumulativeValue:   t.market + t.realized,
		RealizedProfit:    t.realized,
		HoldingProfit:     t.holdingProfit,
		HoldingProfitRate: percent(t.holdingProfit, t.valuedCost),
		TotalProfit:       totalProfit,
		TotalProfitRate:   percent(totalProfit, t.cost),
		DailyProfit:       t.daily,
		DailyProfitRate:   percent(t.daily, t.market-t.daily),
	}
}

func dailyProfit(shares float64, q model.NAVQuote) float64 {
	if q.Latest <= 0 || q.Previous <= 0 {
		return 0
	}
	return shares * (q.Latest - q.Previous)
}

// BuildBaseline values every holding at its initial position: the portfolio as it
// would stand had no tracked record ever been made. The result has no Operation.
func BuildBaseline(holdings []model.Holding, navs NAVBook) model.PortfolioSnapshot {
	var base totals
	for _, h := range sortHoldings(holdings) {
		base.add(Seed(h.Initial), navs[h.Code])
	}
	return base.snapshot(model.BaselineDate)
}

// BuildSnapshot aggregates all confirmed records dated on date across holdings.
//
// Each holding is replayed up to the start of date, then the date's records are
// attributed one by one against the position just before each of them. Valuation
// fields describe the portfolio after the date's records, valued at the latest NAVs.
//
// Operation fields:
//   - netAmountChange = totalBuyAmount - totalSellAmount
//   - operationProfit = totalBuyFloatingProfit + totalSellOpportunityProfit
//   - profitPerHundred = operationProfit / |netAmountChange| * 100, 0 when netAmountChange is ~0
//   - profitCaused = dailyProfit after the date's records - dailyProfit with none of them applied
//   - operationEffect = (dailyProfit - baseline dailyProfit) / |baseline dailyProfit| * 100,
//     100 when the baseline daily profit is ~0
func BuildSnapshot(date time.Time, holdings []model.Holding, navs NAVBook) model.PortfolioSnapshot {
	day := Day(date)

	var after, before, base totals
	op := &model.OperationAttribution{Records: []model.RecordAttribution{}}
	marketValueChange := 0.0

	for _, h := range sortHoldings(holdings) {
		quote := navs[h.Code]
		latest := navs.Latest(h.Code)
		seed := Seed(h.Initial)
		records := SortRecords(h.TradingRecords)

		pos := ReplayAsOf(records, day, seed)
		startShares := pos.Shares
		before.add(pos, quote)
		base.add(seed, quote)

		for _, r := range records {
			if r.IsPending() || !Day(r.Date).Equal(day) {
				continue
			}
			addAttribution(op, Attribute(r, pos, latest))
			pos = pos.Apply(r)
		}

		after.add(pos, quote)
		if latest > 0 {
			marketValueChange += (pos.Shares - startShares) * latest
		}
	}

	snap := after.snapshot(day.Format(model.DateLayout))
	snap.NetAmountChange = op.TotalBuyAmount - op.TotalSellAmount
	snap.MarketValueChange = marketValueChange

	op.OperationProfit = op.TotalBuyFloatingProfit + op.TotalSellOpportunityProfit
	op.ProfitPerHundred = perHundred(op.OperationProfit, snap.NetAmountChange)
	op.ProfitCaused = after.daily - before.daily
	op.ProfitCausedPerHundred = perHundred(op.ProfitCaused, snap.NetAmountChange)
	op.OperationEffect = operationEffect(after.daily, base.daily)
	snap.Operation = op

	return snap
}

// BuildSnapshots returns one snapshot per date carrying at least one confirmed record,
// newest first, followed by the baseline snapshot.
func BuildSnapshots(holdings []model.Holding, navs NAVBook) []model.PortfolioSnapshot {
	dates := ActivityDates(holdings)

	snapshots := make([]model.PortfolioSnapshot, 0, len(dates)+1)
	for i := len(dates) - 1; i >= 0; i-- {
		snapshots = append(snapshots, BuildSnapshot(dates[i], holdings, navs))
	}
	return append(snapshots, BuildBaseline(holdings, navs))
}

// ActivityDates returns the distinct dates of all confirmed records, oldest first.
func ActivityDates(holdings []model.Holding) []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, h := range holdings {
		for _, r := range h.TradingRecords {
			if r.IsPending() {
				continue
			}
			d := Day(r.Date)
			if !seen[d] {
				seen[d] = true
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func addAttribution(op *model.OperationAttribution, attr model.RecordAttribution) {
	switch attr.Type {
	case model.RecordTypeBuy:
		op.TotalBuyAmount += attr.Amount
		op.TotalBuyFloatingProfit += attr.FloatingProfit
	case model.RecordTypeSell:
		op.TotalSellAmount += math.Abs(attr.Amount)
		op.TotalSellOpportunityProfit += attr.OpportunityProfit
		op.TotalSellRealizedProfit += attr.RealizedProfit
	case model.RecordTypeDividendCash:
		op.TotalDividendCash += attr.RealizedProfit
	case model.RecordTypeDividendReinvest:
		op.TotalReinvestedShares += attr.SharesChange
	}
	op.Records = append(op.Records, attr)
}

func perHundred(profit, netAmount float64) float64 {
	return percent(profit, math.Abs(netAmount))
}

func operationEffect(daily, baselineDaily float64) float64 {
	if math.Abs(baselineDaily) < nearZero {
		return 100
	}
	return percent(daily-baselineDaily, math.Abs(baselineDaily))
}

// sortHoldings orders holdings by code so that floating-point sums do not depend
// on the caller's ordering.
func sortHoldings(holdings []model.Holding) []model.Holding {
	sorted := make([]model.Holding, len(holdings))
	copy(sorted, holdings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
	return sorted
}
