package ledger

import (
	"fmt"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// Confirm fixes a pending record at nav and returns the confirmed record.
// before is the holding's position immediately before the record.
//
// The pending value is interpreted per type:
//   - buy: cash invested; sharesChange = value/nav, amount = value
//   - sell: shares sold; sharesChange = -value, amount = -value*nav,
//     realizedProfitChange = (nav - averageCost) * value
//   - dividend-cash: cash received; realizedProfitChange = value
//   - dividend-reinvest: shares received; sharesChange = value
func Confirm(r model.TradingRecord, nav float64, before Position) (model.TradingRecord, error) {
	pending, ok := r.Pending()
	if !ok {
		return r, fmt.Errorf("record %s: %w", r.ID, apperrors.ErrRecordAlreadyConfirmed)
	}
	if nav <= 0 {
		return r, fmt.Errorf("record %s: %w", r.ID, apperrors.ErrInvalidNAV)
	}

	value := pending.Value
	var exec model.Execution

	switch r.Type {
	case model.RecordTypeBuy:
		exec = model.Execution{NAV: nav, SharesChange: value / nav, Amount: value}
	case model.RecordTypeSell:
		if value > before.Shares+shareEpsilon {
			return r, fmt.Errorf("record %s sells %.4f of %.4f shares: %w",
				r.ID, value, before.Shares, apperrors.ErrInsufficientShares)
		}
		realized := (nav - before.AverageCost()) * value
		exec = model.Execution{
			NAV:                  nav,
			SharesChange:         -value,
			Amount:               -value * nav,
			RealizedProfitChange: &realized,
		}
	case model.RecordTypeDividendCash:
		realized := value
		exec = model.Execution{NAV: nav, RealizedProfitChange: &realized}
	case model.RecordTypeDividendReinvest:
		exec = model.Execution{NAV: nav, SharesChange: value}
	default:
		return r, fmt.Errorf("record %s has unknown type %q", r.ID, r.Type)
	}

	r.Settlement = exec
	return r, nil
}
