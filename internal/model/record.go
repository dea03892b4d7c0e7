package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used for record dates, NAV dates and snapshot keys.
const DateLayout = "2006-01-02"

// RecordType identifies what a trading record does to a holding.
type RecordType string

// Supported record types.
const (
	RecordTypeBuy              RecordType = "buy"
	RecordTypeSell             RecordType = "sell"
	RecordTypeDividendCash     RecordType = "dividend-cash"
	RecordTypeDividendReinvest RecordType = "dividend-reinvest"
)

// Valid reports whether t is one of the supported record types.
func (t RecordType) Valid() bool {
	switch t {
	case RecordTypeBuy, RecordTypeSell, RecordTypeDividendCash, RecordTypeDividendReinvest:
		return true
	}
	return false
}

// Record statuses as exposed in JSON.
const (
	RecordStatusPending   = "pending"
	RecordStatusConfirmed = "confirmed"
)

// Settlement is the type-specific payload of a trading record.
// It is either a PendingOrder or an Execution.
type Settlement interface {
	settlement()
}

// PendingOrder is a record waiting for its NAV fixing.
// Value is a cash amount for buy and dividend-cash, and a share count for sell and dividend-reinvest.
type PendingOrder struct {
	Value float64
}

// Execution is a confirmed record.
// SharesChange is positive for buy and dividend-reinvest, negative for sell and zero for dividend-cash.
// Amount is the signed cash delta: positive for buy, negative for sell, zero for dividends.
// RealizedProfitChange is set for sell and dividend-cash.
type Execution struct {
	NAV                  float64
	SharesChange         float64
	Amount               float64
	RealizedProfitChange *float64
}

func (PendingOrder) settlement() {}
func (Execution) settlement()    {}

// TradingRecord is one transaction on one date for one holding.
// Records of a holding are ordered by Date, then by Sequence (insertion order).
type TradingRecord struct {
	ID          string
	HoldingCode string
	Date        time.Time
	Type        RecordType
	Sequence    int
	Settlement  Settlement
	CreatedAt   time.Time
}

// Pending returns the pending payload if the record has not been confirmed yet.
func (r TradingRecord) Pending() (PendingOrder, bool) {
	p, ok := r.Settlement.(PendingOrder)
	return p, ok
}

// Execution returns the confirmed payload if the record has been confirmed.
func (r TradingRecord) Execution() (Execution, bool) {
	e, ok := r.Settlement.(Execution)
	return e, ok
}

// IsPending reports whether the record still waits for a NAV.
func (r TradingRecord) IsPending() bool {
	_, ok := r.Settlement.(Execution)
	return !ok
}

// RealizedProfit returns the realized profit booked by the execution, or 0.
func (e Execution) RealizedProfit() float64 {
	if e.RealizedProfitChange == nil {
		return 0
	}
	return *e.RealizedProfitChange
}

type tradingRecordJSON struct {
	ID                   string     `json:"id"`
	HoldingCode          string     `json:"holdingCode"`
	Date                 string     `json:"date"`
	Type                 RecordType `json:"type"`
	Sequence             int        `json:"sequence"`
	Status               string     `json:"status"`
	Value                *float64   `json:"value,omitempty"`
	NAV                  *float64   `json:"nav,omitempty"`
	SharesChange         *float64   `json:"sharesChange,omitempty"`
	Amount               *float64   `json:"amount,omitempty"`
	RealizedProfitChange *float64   `json:"realizedProfitChange,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// MarshalJSON flattens the settlement payload next to the record header.
func (r TradingRecord) MarshalJSON() ([]byte, error) {
	out := tradingRecordJSON{
		ID:          r.ID,
		HoldingCode: r.HoldingCode,
		Date:        r.Date.Format(DateLayout),
		Type:        r.Type,
		Sequence:    r.Sequence,
		CreatedAt:   r.CreatedAt,
	}

	switch s := r.Settlement.(type) {
	case Execution:
		out.Status = RecordStatusConfirmed
		out.NAV = &s.NAV
		out.SharesChange = &s.SharesChange
		out.Amount = &s.Amount
		out.RealizedProfitChange = s.RealizedProfitChange
	case PendingOrder:
		out.Status = RecordStatusPending
		out.Value = &s.Value
	default:
		return nil, fmt.Errorf("record %s has no settlement", r.ID)
	}

	return json.Marshal(out)
}

// UnmarshalJSON restores the settlement payload from its flattened form.
// A record carrying a nav is an Execution; otherwise it must carry a value.
func (r *TradingRecord) UnmarshalJSON(data []byte) error {
	var in tradingRecordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	date, err := time.Parse(DateLayout, in.Date)
	if err != nil {
		return fmt.Errorf("invalid record date %q: %w", in.Date, err)
	}

	rec := TradingRecord{
		ID:          in.ID,
		HoldingCode: in.HoldingCode,
		Date:        date,
		Type:        in.Type,
		Sequence:    in.Sequence,
		CreatedAt:   in.CreatedAt,
	}

	switch {
	case in.NAV != nil:
		exec := Execution{NAV: *in.NAV, RealizedProfitChange: in.RealizedProfitChange}
		if in.SharesChange != nil {
			exec.SharesChange = *in.SharesChange
		}
		if in.Amount != nil {
			exec.Amount = *in.Amount
		}
		rec.Settlement = exec
	case in.Value != nil:
		rec.Settlement = PendingOrder{Value: *in.Value}
	default:
		return fmt.Errorf("record %s has neither nav nor value", in.ID)
	}

	*r = rec
	return nil
}
