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

// HoldingRepository provides data access methods for the holding table.
// Trading records are loaded separately through RecordRepository.
type HoldingRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// WithTx returns a copy of the repository that runs every statement inside tx.
func (r *HoldingRepository) WithTx(tx *sql.Tx) *HoldingRepository {
	return &HoldingRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *HoldingRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const holdingColumns = `
	code, name, tag, shares, average_cost, realized_profit,
	initial_shares, initial_cost, initial_realized_profit, created_at`

func scanHolding(row interface{ Scan(dest ...any) error }) (model.Holding, error) {
	var h model.Holding
	var createdAt sql.NullString

	err := row.Scan(
		&h.Code,
		&h.Name,
		&h.Tag,
		&h.Shares,
		&h.AverageCost,
		&h.RealizedProfit,
		&h.Initial.Shares,
		&h.Initial.Cost,
		&h.Initial.RealizedProfit,
		&createdAt,
	)
	if err != nil {
		return model.Holding{}, err
	}
	h.CreatedAt = parseTimestamp(createdAt)
	return h, nil
}

// GetHoldings retrieves all holdings ordered by code.
// Returns an empty slice if no holdings exist.
func (r *HoldingRepository) GetHoldings(ctx context.Context) ([]model.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding ORDER BY code ASC`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}
		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// GetHolding retrieves a single holding by fund code.
// Returns apperrors.ErrHoldingNotFound if the code is unknown.
func (r *HoldingRepository) GetHolding(ctx context.Context, code string) (model.Holding, error) {
	query := `SELECT ` + holdingColumns + ` FROM holding WHERE code = ?`

	h, err := scanHolding(r.getQuerier().QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Holding{}, apperrors.ErrHoldingNotFound
		}
		return model.Holding{}, fmt.Errorf("failed to query holding table: %w", err)
	}
	return h, nil
}

// InsertHolding stores a new holding. Returns apperrors.ErrDuplicateEntry if the code exists.
func (r *HoldingRepository) InsertHolding(ctx context.Context, h *model.Holding) error {
	if _, err := r.GetHolding(ctx, h.Code); err == nil {
		return fmt.Errorf("holding %s: %w", h.Code, apperrors.ErrDuplicateEntry)
	} else if !errors.Is(err, apperrors.ErrHoldingNotFound) {
		return err
	}

	query := `
		INSERT INTO holding (
			code, name, tag, shares, average_cost, realized_profit,
			initial_shares, initial_cost, initial_realized_profit, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		h.Code,
		h.Name,
		h.Tag,
		h.Shares,
		h.AverageCost,
		h.RealizedProfit,
		h.Initial.Shares,
		h.Initial.Cost,
		h.Initial.RealizedProfit,
		h.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}

	return nil
}

// UpdateHolding rewrites the descriptive fields, the initial position and the
// position projection of an existing holding.
func (r *HoldingRepository) UpdateHolding(ctx context.Context, h *model.Holding) error {
	query := `
		UPDATE holding
		SET name = ?, tag = ?, shares = ?, average_cost = ?, realized_profit = ?,
			initial_shares = ?, initial_cost = ?, initial_realized_profit = ?
		WHERE code = ?
	`

	result, err := r.getQuerier().ExecContext(ctx, query,
		h.Name,
		h.Tag,
		h.Shares,
		h.AverageCost,
		h.RealizedProfit,
		h.Initial.Shares,
		h.Initial.Cost,
		h.Initial.RealizedProfit,
		h.Code,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}

	return requireAffected(result, apperrors.ErrHoldingNotFound)
}

// DeleteHolding removes a holding; its records are removed by the foreign key cascade.
func (r *HoldingRepository) DeleteHolding(ctx context.Context, code string) error {
	result, err := r.getQuerier().ExecContext(ctx, `DELETE FROM holding WHERE code = ?`, code)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	return requireAffected(result, apperrors.ErrHoldingNotFound)
}

// DeleteAllHoldings removes every holding and, through the cascade, every record.
func (r *HoldingRepository) DeleteAllHoldings(ctx context.Context) error {
	if _, err := r.getQuerier().ExecContext(ctx, `DELETE FROM holding`); err != nil {
		return fmt.Errorf("failed to delete holdings: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
