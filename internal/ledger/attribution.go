package ledger

import (
	"math"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// nearZero is the tolerance below which a denominator counts as zero.
const nearZero = 1e-6

// Attribute computes the hindsight profit contribution of one confirmed record.
//
// before is the position immediately before the record and latestNAV the most recent
// known NAV of the holding. A latestNAV of zero or less means no valuation is available:
// floating and opportunity profits are then reported as zero.
//
//   - buy: floatingProfit = (latestNAV - nav) * sharesChange, as a percentage of amount
//   - sell: opportunityProfit = (nav - latestNAV) * |sharesChange|, as a percentage of nav;
//     realizedProfit is the booked realizedProfitChange, as a percentage of the average cost before the sale
//   - dividend-cash: realizedProfit is the booked realizedProfitChange
//   - dividend-reinvest: costBasisDelta is the change of the average cost per share
//
// Pending records yield an attribution carrying only their identity.
func Attribute(r model.TradingRecord, before Position, latestNAV float64) model.RecordAttribution {
	attr := model.RecordAttribution{
		RecordID:    r.ID,
		HoldingCode: r.HoldingCode,
		Type:        r.Type,
		LatestNAV:   latestNAV,
	}

	exec, ok := r.Execution()
	if !ok {
		return attr
	}
	attr.NAV = exec.NAV
	attr.SharesChange = exec.SharesChange
	attr.Amount = exec.Amount

	valued := latestNAV > 0

	switch r.Type {
	case model.RecordTypeBuy:
		if valued {
			attr.FloatingProfit = (latestNAV - exec.NAV) * exec.SharesChange
		}
		if exec.Amount > 0 && exec.NAV > 0 {
			attr.FloatingProfitPercent = percent(attr.FloatingProfit, exec.Amount)
		}
	case model.RecordTypeSell:
		sold := math.Abs(exec.SharesChange)
		if valued {
			attr.OpportunityProfit = (exec.NAV - latestNAV) * sold
			if exec.NAV > 0 {
				attr.OpportunityProfitPercent = percent(exec.NAV-latestNAV, exec.NAV)
			}
		}
		attr.RealizedProfit = exec.RealizedProfit()
		if avgCost := before.AverageCost(); avgCost > 0 {
			attr.RealizedProfitPercent = percent(exec.NAV-avgCost, avgCost)
		}
	case model.RecordTypeDividendCash:
		attr.RealizedProfit = exec.RealizedProfit()
	case model.RecordTypeDividendReinvest:
		after := before.Apply(r)
		attr.CostBasisDelta = after.AverageCost() - before.AverageCost()
	}

	return attr
}

// percent returns part/whole*100, or 0 when whole is (near) zero or the result is not finite.
func percent(part, whole float64) float64 {
	return ratio(part, whole) * 100
}

// ratio returns a/b, or 0 when b is (near) zero or the result is not finite.
func ratio(a, b float64) float64 {
	if math.Abs(b) < nearZero {
		return 0
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
