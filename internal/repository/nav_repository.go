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

// NAVRepository provides data access methods for the fund_nav table,
// the daily unit NAV series supplied by market-data collaborators.
type NAVRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewNAVRepository creates a new NAVRepository with the provided database connection.
func NewNAVRepository(db *sql.DB) *NAVRepository {
	return &NAVRepository{db: db}
}

// WithTx returns a copy of the repository that runs every statement inside tx.
func (r *NAVRepository) WithTx(tx *sql.Tx) *NAVRepository {
	return &NAVRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *NAVRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// UpsertNAVs inserts NAV points, overwriting the NAV of existing (code, date) pairs.
func (r *NAVRepository) UpsertNAVs(ctx context.Context, points []model.NAVPoint) error {
	query := `
		INSERT INTO fund_nav (code, date, nav)
		VALUES (?, ?, ?)
		ON CONFLICT(code, date) DO UPDATE SET nav = excluded.nav
	`

	for _, p := range points {
		_, err := r.getQuerier().ExecContext(ctx, query, p.Code, p.Date.Format(model.DateLayout), p.NAV)
		if err != nil {
			return fmt.Errorf("failed to upsert fund_nav %s %s: %w", p.Code, p.Date.Format(model.DateLayout), err)
		}
	}

	return nil
}

// GetNAVHistory retrieves the NAV series of code between startDate and endDate inclusive,
// oldest first.
func (r *NAVRepository) GetNAVHistory(ctx context.Context, code string, startDate, endDate time.Time) ([]model.NAVPoint, error) {
	if startDate.After(endDate) {
		return nil, fmt.Errorf("startDate (%s) must be before or equal to endDate (%s): %w",
			startDate.Format("2006-01-02"), endDate.Format("2006-01-02"), apperrors.ErrInvalidDateRange)
	}

	query := `
		SELECT code, date, nav
		FROM fund_nav
		WHERE code = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query,
		code,
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund_nav table: %w", err)
	}
	defer rows.Close()

	points := []model.NAVPoint{}
	for rows.Next() {
		p, err := scanNAVPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund_nav table: %w", err)
	}

	return points, nil
}

// GetNAVOnDate returns the NAV of code fixed on date.
// Returns apperrors.ErrNAVNotFound when that day has no NAV.
func (r *NAVRepository) GetNAVOnDate(ctx context.Context, code string, date time.Time) (float64, error) {
	var nav float64
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT nav FROM fund_nav WHERE code = ? AND date = ?`,
		code, date.Format("2006-01-02"),
	).Scan(&nav)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.ErrNAVNotFound
		}
		return 0, fmt.Errorf("failed to query fund_nav table: %w", err)
	}
	return nav, nil
}

// GetQuotes builds a NAVQuote for each of codes that has at least one NAV.
//
// Latest is the most recent NAV, Previous the one before it, and Recent the NAV
// recentWindow trading days before the latest (or the oldest available when the
// series is shorter). An empty codes slice quotes every fund in the table.
func (r *NAVRepository) GetQuotes(ctx context.Context, codes []string, recentWindow int) (map[string]model.NAVQuote, error) {
	if recentWindow < 1 {
		recentWindow = 1
	}

	where := ""
	args := make([]any, 0, len(codes)+1)
	if len(codes) > 0 {
		//#nosec G202 -- Safe: placeholders are generated programmatically, not from user input
		where = `WHERE code IN (` + placeholders(len(codes)) + `)`
		for _, c := range codes {
			args = append(args, c)
		}
	}
	args = append(args, recentWindow+1)

	query := `
		SELECT code, date, nav FROM (
			SELECT code, date, nav,
				ROW_NUMBER() OVER (PARTITION BY code ORDER BY date DESC) AS rn
			FROM fund_nav
			` + where + `
		)
		WHERE rn <= ?
		ORDER BY code ASC, date DESC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund_nav table: %w", err)
	}
	defer rows.Close()

	series := make(map[string][]model.NAVPoint)
	for rows.Next() {
		p, err := scanNAVPoint(rows)
		if err != nil {
			return nil, err
		}
		series[p.Code] = append(series[p.Code], p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund_nav table: %w", err)
	}

	quotes := make(map[string]model.NAVQuote, len(series))
	for code, points := range series {
		q := model.NAVQuote{
			Code:       code,
			LatestDate: points[0].Date,
			Latest:     points[0].NAV,
		}
		if len(points) > 1 {
			q.Previous = points[1].NAV
			q.Recent = points[len(points)-1].NAV
		}
		quotes[code] = q
	}

	return quotes, nil
}

func scanNAVPoint(rows *sql.Rows) (model.NAVPoint, error) {
	var p model.NAVPoint
	var dateStr string

	if err := rows.Scan(&p.Code, &dateStr, &p.NAV); err != nil {
		return model.NAVPoint{}, fmt.Errorf("failed to scan fund_nav table results: %w", err)
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return model.NAVPoint{}, err
	}
	p.Date = date
	return p, nil
}

// GetAllNAVs returns every stored NAV point ordered by code and date.
func (r *NAVRepository) GetAllNAVs(ctx context.Context) ([]model.NAVPoint, error) {
	rows, err := r.getQuerier().QueryContext(ctx, `SELECT code, date, nav FROM fund_nav ORDER BY code ASC, date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund_nav table: %w", err)
	}
	defer rows.Close()

	points := []model.NAVPoint{}
	for rows.Next() {
		p, err := scanNAVPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fund_nav table: %w", err)
	}

	return points, nil
}

// DeleteAllNAVs clears the fund_nav table.
func (r *NAVRepository) DeleteAllNAVs(ctx context.Context) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM fund_nav`); err != nil {
		return fmt.Errorf("failed to delete fund_nav rows: %w", err)
	}
	return nil
}
