package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// RecordRepository provides data access methods for the trading_record table.
//
// Records are never updated in place: writers replace the full record set of a
// holding with ReplaceRecords inside a transaction.
type RecordRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewRecordRepository creates a new RecordRepository with the provided database connection.
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// WithTx returns a copy of the repository that runs every statement inside tx.
func (r *RecordRepository) WithTx(tx *sql.Tx) *RecordRepository {
	return &RecordRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *RecordRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const recordColumns = `
	id, holding_code, sequence, date, type, value, nav, shares_change, amount,
	realized_profit_change, created_at`

func scanRecord(row interface{ Scan(dest ...any) error }) (model.TradingRecord, error) {
	var rec model.TradingRecord
	var dateStr, recordType string
	var value, nav, sharesChange, amount, realized sql.NullFloat64
	var createdAt sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.HoldingCode,
		&rec.Sequence,
		&dateStr,
		&recordType,
		&value,
		&nav,
		&sharesChange,
		&amount,
		&realized,
		&createdAt,
	)
	if err != nil {
		return model.TradingRecord{}, err
	}

	rec.Date, err = parseDate(dateStr)
	if err != nil {
		return model.TradingRecord{}, err
	}
	rec.Type = model.RecordType(recordType)
	rec.CreatedAt = parseTimestamp(createdAt)

	if nav.Valid {
		exec := model.Execution{
			NAV:          nav.Float64,
			SharesChange: sharesChange.Float64,
			Amount:       amount.Float64,
		}
		if realized.Valid {
			rpc := realized.Float64
			exec.RealizedProfitChange = &rpc
		}
		rec.Settlement = exec
	} else {
		rec.Settlement = model.PendingOrder{Value: value.Float64}
	}

	return rec, nil
}

func (r *RecordRepository) queryRecords(ctx context.Context, query string, args ...any) ([]model.TradingRecord, error) {
	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trading_record table: %w", err)
	}
	defer rows.Close()

	records := []model.TradingRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trading_record table results: %w", err)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trading_record table: %w", err)
	}

	return records, nil
}

// GetRecordsByHolding retrieves the records of one holding in (date, sequence) order.
func (r *RecordRepository) GetRecordsByHolding(ctx context.Context, code string) ([]model.TradingRecord, error) {
	query := `SELECT ` + recordColumns + `
		FROM trading_record
		WHERE holding_code = ?
		ORDER BY date ASC, sequence ASC`

	return r.queryRecords(ctx, query, code)
}

// GetRecords retrieves records grouped by holding code for the given codes.
// An empty codes slice loads the records of every holding.
func (r *RecordRepository) GetRecords(ctx context.Context, codes []string) (map[string][]model.TradingRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM trading_record`
	args := make([]any, 0, len(codes))

	if len(codes) > 0 {
		//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
		query += ` WHERE holding_code IN (` + placeholders(len(codes)) + `)`
		for _, c := range codes {
			args = append(args, c)
		}
	}
	query += ` ORDER BY holding_code ASC, date ASC, sequence ASC`

	records, err := r.queryRecords(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	byHolding := make(map[string][]model.TradingRecord)
	for _, rec := range records {
		byHolding[rec.HoldingCode] = append(byHolding[rec.HoldingCode], rec)
	}
	return byHolding, nil
}

// GetPendingHoldingCodes returns the codes of holdings that have at least one pending record.
func (r *RecordRepository) GetPendingHoldingCodes(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT holding_code
		FROM trading_record
		WHERE nav IS NULL
		ORDER BY holding_code ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trading_record table: %w", err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan trading_record table results: %w", err)
		}
		codes = append(codes, code)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trading_record table: %w", err)
	}

	return codes, nil
}

// GetRecord retrieves a single record by ID.
// Returns apperrors.ErrRecordNotFound if no record has that ID.
func (r *RecordRepository) GetRecord(ctx context.Context, id string) (model.TradingRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM trading_record WHERE id = ?`

	rec, err := scanRecord(r.getQuerier().QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.TradingRecord{}, apperrors.ErrRecordNotFound
		}
		return model.TradingRecord{}, fmt.Errorf("failed to query trading_record table: %w", err)
	}
	return rec, nil
}

// ReplaceRecords swaps the stored record set of a holding for records.
// Callers run it inside a transaction (see WithTx) so readers never observe a
// partially written set.
func (r *RecordRepository) ReplaceRecords(ctx context.Context, code string, records []model.TradingRecord) error {
	q := r.getQuerier()

	if _, err := q.ExecContext(ctx, `DELETE FROM trading_record WHERE holding_code = ?`, code); err != nil {
		return fmt.Errorf("failed to clear trading records of %s: %w", code, err)
	}

	query := `
		INSERT INTO trading_record (
			id, holding_code, sequence, date, type, value, nav, shares_change, amount,
			realized_profit_change, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, rec := range records {
		if rec.HoldingCode != code {
			return fmt.Errorf("record %s belongs to %s, not %s: %w",
				rec.ID, rec.HoldingCode, code, apperrors.ErrDataInconsistency)
		}

		var value, nav, sharesChange, amount, realized sql.NullFloat64
		switch s := rec.Settlement.(type) {
		case model.Execution:
			nav = sql.NullFloat64{Float64: s.NAV, Valid: true}
			sharesChange = sql.NullFloat64{Float64: s.SharesChange, Valid: true}
			amount = sql.NullFloat64{Float64: s.Amount, Valid: true}
			if s.RealizedProfitChange != nil {
				realized = sql.NullFloat64{Float64: *s.RealizedProfitChange, Valid: true}
			}
		case model.PendingOrder:
			value = sql.NullFloat64{Float64: s.Value, Valid: true}
		default:
			return fmt.Errorf("record %s has no settlement: %w", rec.ID, apperrors.ErrDataInconsistency)
		}

		_, err := q.ExecContext(ctx, query,
			rec.ID,
			rec.HoldingCode,
			rec.Sequence,
			rec.Date.Format("2006-01-02"),
			string(rec.Type),
			value,
			nav,
			sharesChange,
			amount,
			realized,
			rec.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("failed to insert trading record %s: %w", rec.ID, err)
		}
	}

	return nil
}
