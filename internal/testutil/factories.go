package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	// Simple creation with defaults
//	holding := testutil.NewHolding().Build(t, db)
//
//	// Customized holding
//	holding := testutil.NewHolding().
//	    WithCode("110011").
//	    WithTag("bond,core").
//	    WithInitial(1000, 1000, 0).
//	    Build(t, db)
type HoldingBuilder struct {
	Code    string
	Name    string
	Tag     string
	Initial model.InitialPosition
}

// NewHolding creates a HoldingBuilder with sensible defaults and no initial position.
func NewHolding() *HoldingBuilder {
	return &HoldingBuilder{
		Code: MakeFundCode(),
		Name: MakeFundName("Test Fund"),
	}
}

// WithCode sets a custom fund code.
func (b *HoldingBuilder) WithCode(code string) *HoldingBuilder {
	b.Code = code
	return b
}

// WithName sets a custom name.
func (b *HoldingBuilder) WithName(name string) *HoldingBuilder {
	b.Name = name
	return b
}

// WithTag sets the comma-joined tag string.
func (b *HoldingBuilder) WithTag(tag string) *HoldingBuilder {
	b.Tag = tag
	return b
}

// WithInitial sets the initial position.
func (b *HoldingBuilder) WithInitial(shares, cost, realizedProfit float64) *HoldingBuilder {
	b.Initial = model.InitialPosition{Shares: shares, Cost: cost, RealizedProfit: realizedProfit}
	return b
}

// Build inserts the holding. Its projection equals the initial position.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	seed := ledger.Seed(b.Initial)
	h := model.Holding{
		Code:           b.Code,
		Name:           b.Name,
		Tag:            b.Tag,
		Shares:         seed.Shares,
		AverageCost:    seed.AverageCost(),
		RealizedProfit: seed.RealizedProfit,
		Initial:        b.Initial,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}

	query := `
		INSERT INTO holding (
			code, name, tag, shares, average_cost, realized_profit,
			initial_shares, initial_cost, initial_realized_profit, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		h.Code, h.Name, h.Tag, h.Shares, h.AverageCost, h.RealizedProfit,
		h.Initial.Shares, h.Initial.Cost, h.Initial.RealizedProfit,
		h.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return h
}

// RecordBuilder provides a fluent interface for creating trading records.
// Records are pending unless Confirmed is called.
//
// Example usage:
//
//	rec := testutil.NewRecord(holding.Code).
//	    Buy(1000).
//	    OnDate(testutil.Date("2024-03-01")).
//	    Confirmed(1.25).
//	    Build(t, db)
type RecordBuilder struct {
	ID          string
	HoldingCode string
	Date        time.Time
	Type        model.RecordType
	Sequence    int
	Value       float64
	NAV         *float64
}

// NewRecord creates a pending buy of 1000 dated today.
func NewRecord(holdingCode string) *RecordBuilder {
	return &RecordBuilder{
		ID:          MakeID(),
		HoldingCode: holdingCode,
		Date:        ledger.Day(time.Now()),
		Type:        model.RecordTypeBuy,
		Sequence:    1,
		Value:       1000,
	}
}

// WithID sets a custom ID.
func (b *RecordBuilder) WithID(id string) *RecordBuilder {
	b.ID = id
	return b
}

// OnDate sets the record date.
func (b *RecordBuilder) OnDate(date time.Time) *RecordBuilder {
	b.Date = ledger.Day(date)
	return b
}

// WithSequence sets the order within the record's date.
func (b *RecordBuilder) WithSequence(seq int) *RecordBuilder {
	b.Sequence = seq
	return b
}

// Buy makes the record a buy of amount cash.
func (b *RecordBuilder) Buy(amount float64) *RecordBuilder {
	b.Type, b.Value = model.RecordTypeBuy, amount
	return b
}

// Sell makes the record a sell of shares.
func (b *RecordBuilder) Sell(shares float64) *RecordBuilder {
	b.Type, b.Value = model.RecordTypeSell, shares
	return b
}

// DividendCash makes the record a cash dividend of amount.
func (b *RecordBuilder) DividendCash(amount float64) *RecordBuilder {
	b.Type, b.Value = model.RecordTypeDividendCash, amount
	return b
}

// DividendReinvest makes the record a reinvested dividend of shares.
func (b *RecordBuilder) DividendReinvest(shares float64) *RecordBuilder {
	b.Type, b.Value = model.RecordTypeDividendReinvest, shares
	return b
}

// Confirmed confirms the record at nav when built. The position before the record
// is taken to be empty, so confirmed sells must be built through the services instead.
func (b *RecordBuilder) Confirmed(nav float64) *RecordBuilder {
	b.NAV = &nav
	return b
}

// Build inserts the record without touching the holding projection.
func (b *RecordBuilder) Build(t *testing.T, db *sql.DB) model.TradingRecord {
	t.Helper()

	rec := model.TradingRecord{
		ID:          b.ID,
		HoldingCode: b.HoldingCode,
		Date:        b.Date,
		Type:        b.Type,
		Sequence:    b.Sequence,
		Settlement:  model.PendingOrder{Value: b.Value},
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}

	var value, nav, sharesChange, amount, realized sql.NullFloat64
	if b.NAV != nil {
		confirmed, err := ledger.Confirm(rec, *b.NAV, ledger.Position{Shares: b.Value})
		if err != nil {
			t.Fatalf("Failed to confirm test record: %v", err)
		}
		rec = confirmed
		exec, _ := rec.Execution()
		nav = sql.NullFloat64{Float64: exec.NAV, Valid: true}
		sharesChange = sql.NullFloat64{Float64: exec.SharesChange, Valid: true}
		amount = sql.NullFloat64{Float64: exec.Amount, Valid: true}
		if exec.RealizedProfitChange != nil {
			realized = sql.NullFloat64{Float64: *exec.RealizedProfitChange, Valid: true}
		}
	} else {
		value = sql.NullFloat64{Float64: b.Value, Valid: true}
	}

	query := `
		INSERT INTO trading_record (
			id, holding_code, sequence, date, type, value, nav, shares_change, amount,
			realized_profit_change, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		rec.ID, rec.HoldingCode, rec.Sequence, rec.Date.Format(model.DateLayout), string(rec.Type),
		value, nav, sharesChange, amount, realized,
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create trading record: %v", err)
	}

	return rec
}

// NAVBuilder provides a fluent interface for creating NAV points.
type NAVBuilder struct {
	Code string
	Date time.Time
	NAV  float64
}

// NewNAV creates a NAV point of 1.0 for code dated today.
func NewNAV(code string) *NAVBuilder {
	return &NAVBuilder{
		Code: code,
		Date: ledger.Day(time.Now()),
		NAV:  1.0,
	}
}

// OnDate sets the NAV date.
func (b *NAVBuilder) OnDate(date time.Time) *NAVBuilder {
	b.Date = ledger.Day(date)
	return b
}

// WithNAV sets the NAV value.
func (b *NAVBuilder) WithNAV(nav float64) *NAVBuilder {
	b.NAV = nav
	return b
}

// Build inserts the NAV point.
func (b *NAVBuilder) Build(t *testing.T, db *sql.DB) model.NAVPoint {
	t.Helper()

	_, err := db.Exec(`INSERT INTO fund_nav (code, date, nav) VALUES (?, ?, ?)`,
		b.Code, b.Date.Format(model.DateLayout), b.NAV)
	if err != nil {
		t.Fatalf("Failed to create nav point: %v", err)
	}

	return model.NAVPoint{Code: b.Code, Date: b.Date, NAV: b.NAV}
}

// CreateNAVSeries inserts one NAV per entry of navs on consecutive days starting at start.
//
// Example usage:
//
//	testutil.CreateNAVSeries(t, db, "110011", testutil.Date("2024-03-01"), 1.0, 1.02, 0.99)
func CreateNAVSeries(t *testing.T, db *sql.DB, code string, start time.Time, navs ...float64) []model.NAVPoint {
	t.Helper()

	points := make([]model.NAVPoint, 0, len(navs))
	for i, nav := range navs {
		points = append(points, NewNAV(code).OnDate(start.AddDate(0, 0, i)).WithNAV(nav).Build(t, db))
	}
	return points
}
