// Package ledger is the position ledger and profit-attribution engine.
//
// Every function in this package is a pure function of its arguments: holdings,
// their trading records and an explicit NAVBook. Nothing reads global state or
// performs I/O, so rebuilding any result from identical inputs yields identical output.
package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// shareEpsilon is the floor below which a share count is treated as exactly zero.
const shareEpsilon = 1e-6

// Position is the weighted-average cost state of one holding at an instant.
type Position struct {
	Shares         float64
	TotalCost      float64
	RealizedProfit float64
}

// Seed returns the position a holding starts from before its first record.
func Seed(initial model.InitialPosition) Position {
	return Position{
		Shares:         initial.Shares,
		TotalCost:      initial.Cost,
		RealizedProfit: initial.RealizedProfit,
	}.floor()
}

// AverageCost is the weighted-average cost per share, 0 for an empty position.
func (p Position) AverageCost() float64 {
	if p.Shares <= 0 {
		return 0
	}
	return p.TotalCost / p.Shares
}

// Apply returns the position after one record. Pending records leave it unchanged.
//
// Transition rules (weighted-average cost):
//   - buy: shares and total cost grow by the execution's shares and amount
//   - dividend-reinvest: shares grow, total cost is unchanged
//   - sell: total cost shrinks by costPerShare*|sharesChange|, so average cost is unchanged
//   - dividend-cash: shares and cost unchanged, realized profit grows
//
// Shares below shareEpsilon snap shares and cost to exactly zero.
func (p Position) Apply(r model.TradingRecord) Position {
	exec, ok := r.Execution()
	if !ok {
		return p
	}

	switch r.Type {
	case model.RecordTypeBuy:
		p.Shares += exec.SharesChange
		p.TotalCost += exec.Amount
	case model.RecordTypeDividendReinvest:
		p.Shares += exec.SharesChange
	case model.RecordTypeSell:
		costPerShare := p.AverageCost()
		p.TotalCost -= costPerShare * math.Abs(exec.SharesChange)
		p.Shares += exec.SharesChange
		p.RealizedProfit += exec.RealizedProfit()
	case model.RecordTypeDividendCash:
		p.RealizedProfit += exec.RealizedProfit()
	}

	return p.floor()
}

func (p Position) floor() Position {
	if p.Shares < shareEpsilon {
		p.Shares = 0
		p.TotalCost = 0
	}
	return p
}

// ReplayAsOf derives the position at the start of cutoff: confirmed records dated
// strictly before cutoff are applied in (date, sequence) order on top of seed.
// Records dated on cutoff itself are excluded.
func ReplayAsOf(records []model.TradingRecord, cutoff time.Time, seed Position) Position {
	cutoff = Day(cutoff)
	pos := seed
	for _, r := range SortRecords(records) {
		if !r.Date.Before(cutoff) {
			break
		}
		pos = pos.Apply(r)
	}
	return pos
}

// Replay applies every confirmed record on top of seed.
func Replay(records []model.TradingRecord, seed Position) Position {
	pos := seed
	for _, r := range SortRecords(records) {
		pos = pos.Apply(r)
	}
	return pos
}

// StateBefore returns the position immediately before target, honoring the order
// of records sharing target's date. Target itself does not need to be confirmed.
func StateBefore(records []model.TradingRecord, target model.TradingRecord, seed Position) Position {
	pos := seed
	for _, r := range SortRecords(records) {
		if !recordLess(r, target) {
			break
		}
		pos = pos.Apply(r)
	}
	return pos
}

// SortRecords returns a copy of records ordered by date, then by sequence.
// Records with the same date and sequence keep their input order.
func SortRecords(records []model.TradingRecord) []model.TradingRecord {
	sorted := make([]model.TradingRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return recordLess(sorted[i], sorted[j])
	})
	return sorted
}

func recordLess(a, b model.TradingRecord) bool {
	da, db := Day(a.Date), Day(b.Date)
	if !da.Equal(db) {
		return da.Before(db)
	}
	return a.Sequence < b.Sequence
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
