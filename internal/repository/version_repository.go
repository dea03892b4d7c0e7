package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// Store names tracked in the store_version table.
const (
	StoreRecords = "records"
	StoreNAV     = "nav"
)

// VersionRepository provides access to the store_version counters.
type VersionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewVersionRepository creates a new VersionRepository with the provided database connection.
func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// WithTx returns a copy of the repository that runs every statement inside tx.
func (r *VersionRepository) WithTx(tx *sql.Tx) *VersionRepository {
	return &VersionRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *VersionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetVersions reads both store versions in one statement.
func (r *VersionRepository) GetVersions(ctx context.Context) (model.StoreVersions, error) {
	query := `
		SELECT
			COALESCE(MAX(CASE WHEN name = ? THEN version END), 0),
			COALESCE(MAX(CASE WHEN name = ? THEN version END), 0)
		FROM store_version
	`

	var v model.StoreVersions
	if err := r.getQuerier().QueryRowContext(ctx, query, StoreRecords, StoreNAV).Scan(&v.Records, &v.NAV); err != nil {
		return model.StoreVersions{}, fmt.Errorf("failed to query store_version table: %w", err)
	}
	return v, nil
}

// Bump increments the version of store. Run it in the same transaction as the write it covers.
func (r *VersionRepository) Bump(ctx context.Context, store string) error {
	query := `
		INSERT INTO store_version (name, version, updated_at)
		VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET version = version + 1, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.getQuerier().ExecContext(ctx, query, store); err != nil {
		return fmt.Errorf("failed to bump %s version: %w", store, err)
	}
	return nil
}
