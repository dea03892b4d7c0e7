package ledger_test

import (
	"fmt"
	"time"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

var recordCounter int

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func confirmed(code, date string, typ model.RecordType, exec model.Execution) model.TradingRecord {
	recordCounter++
	return model.TradingRecord{
		ID:          fmt.Sprintf("rec-%d", recordCounter),
		HoldingCode: code,
		Date:        day(date),
		Type:        typ,
		Sequence:    recordCounter,
		Settlement:  exec,
	}
}

func pending(code, date string, typ model.RecordType, value float64) model.TradingRecord {
	recordCounter++
	return model.TradingRecord{
		ID:          fmt.Sprintf("rec-%d", recordCounter),
		HoldingCode: code,
		Date:        day(date),
		Type:        typ,
		Sequence:    recordCounter,
		Settlement:  model.PendingOrder{Value: value},
	}
}

func buy(code, date string, nav, amount float64) model.TradingRecord {
	return confirmed(code, date, model.RecordTypeBuy, model.Execution{
		NAV: nav, SharesChange: amount / nav, Amount: amount,
	})
}

func sell(code, date string, nav, shares, realized float64) model.TradingRecord {
	return confirmed(code, date, model.RecordTypeSell, model.Execution{
		NAV: nav, SharesChange: -shares, Amount: -shares * nav, RealizedProfitChange: &realized,
	})
}

func dividendCash(code, date string, nav, cash float64) model.TradingRecord {
	return confirmed(code, date, model.RecordTypeDividendCash, model.Execution{
		NAV: nav, RealizedProfitChange: &cash,
	})
}

func reinvest(code, date string, nav, shares float64) model.TradingRecord {
	return confirmed(code, date, model.RecordTypeDividendReinvest, model.Execution{
		NAV: nav, SharesChange: shares,
	})
}
