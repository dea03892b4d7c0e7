package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
	"go.uber.org/zap"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
)

// BackupFormatVersion identifies the layout of Backup.
const BackupFormatVersion = 1

// Backup is the complete content of the store: holdings with their records and
// every NAV point.
type Backup struct {
	FormatVersion int              `json:"formatVersion"`
	ExportedAt    time.Time        `json:"exportedAt"`
	Holdings      []model.Holding  `json:"holdings"`
	NAVs          []model.NAVPoint `json:"navs"`
}

// ImportSummary reports what an import restored.
type ImportSummary struct {
	Holdings int `json:"holdings"`
	Records  int `json:"records"`
	NAVs     int `json:"navs"`
}

// BackupService exports and restores the store as fernet tokens.
// Tokens are encrypted and signed with the configured key and never expire.
type BackupService struct {
	store  *recordStore
	key    *fernet.Key
	logger *zap.Logger
}

// NewBackupService creates a BackupService. encodedKey is a base64 fernet key; when it
// is empty every operation fails with apperrors.ErrBackupNotConfigured.
func NewBackupService(db *sql.DB, encodedKey string, logger *zap.Logger) (*BackupService, error) {
	s := &BackupService{
		store:  newRecordStore(db),
		logger: logger.Named("backup"),
	}

	if encodedKey == "" {
		return s, nil
	}

	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid backup key: %w", err)
	}
	s.key = key
	return s, nil
}

// Configured reports whether a backup key is available.
func (s *BackupService) Configured() bool {
	return s.key != nil
}

// Export reads the whole store in one transaction and returns it as a fernet token.
func (s *BackupService) Export(ctx context.Context) ([]byte, error) {
	if s.key == nil {
		return nil, apperrors.ErrBackupNotConfigured
	}

	backup := Backup{
		FormatVersion: BackupFormatVersion,
		ExportedAt:    time.Now().UTC(),
	}

	err := s.store.inTx(ctx, func(repos txRepos) error {
		holdings, err := repos.holdings.GetHoldings(ctx)
		if err != nil {
			return err
		}

		records, err := repos.records.GetRecords(ctx, nil)
		if err != nil {
			return err
		}
		for i := range holdings {
			holdings[i].TradingRecords = records[holdings[i].Code]
			if holdings[i].TradingRecords == nil {
				holdings[i].TradingRecords = []model.TradingRecord{}
			}
		}

		navs, err := repos.navs.GetAllNAVs(ctx)
		if err != nil {
			return err
		}

		backup.Holdings = holdings
		backup.NAVs = navs
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToExportBackup, err)
	}

	payload, err := json.Marshal(backup)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToExportBackup, err)
	}

	token, err := fernet.EncryptAndSign(payload, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToExportBackup, err)
	}

	s.logger.Info("backup exported",
		zap.Int("holdings", len(backup.Holdings)),
		zap.Int("navs", len(backup.NAVs)),
	)
	return token, nil
}

// Import replaces the whole store with the content of token.
// Holding projections are recomputed from the restored records, and both store
// versions are bumped. A token that fails verification or parsing returns
// apperrors.ErrInvalidBackup and leaves the store untouched.
func (s *BackupService) Import(ctx context.Context, token []byte) (ImportSummary, error) {
	if s.key == nil {
		return ImportSummary{}, apperrors.ErrBackupNotConfigured
	}

	payload := fernet.VerifyAndDecrypt(token, -1, []*fernet.Key{s.key})
	if payload == nil {
		return ImportSummary{}, fmt.Errorf("%w: token verification failed", apperrors.ErrInvalidBackup)
	}

	var backup Backup
	if err := json.Unmarshal(payload, &backup); err != nil {
		return ImportSummary{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidBackup, err)
	}
	if err := checkBackup(backup); err != nil {
		return ImportSummary{}, err
	}

	summary := ImportSummary{Holdings: len(backup.Holdings), NAVs: len(backup.NAVs)}

	err := s.store.inTx(ctx, func(repos txRepos) error {
		if err := repos.holdings.DeleteAllHoldings(ctx); err != nil {
			return err
		}
		if err := repos.navs.DeleteAllNAVs(ctx); err != nil {
			return err
		}

		for _, h := range backup.Holdings {
			records := h.TradingRecords
			project(&h, records)
			h.TradingRecords = nil

			if err := repos.holdings.InsertHolding(ctx, &h); err != nil {
				return err
			}
			if err := repos.records.ReplaceRecords(ctx, h.Code, records); err != nil {
				return err
			}
			summary.Records += len(records)
		}

		if err := repos.navs.UpsertNAVs(ctx, backup.NAVs); err != nil {
			return err
		}

		if err := repos.versions.Bump(ctx, repository.StoreRecords); err != nil {
			return err
		}
		return repos.versions.Bump(ctx, repository.StoreNAV)
	})
	if err != nil {
		return ImportSummary{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToImportBackup, err)
	}

	s.logger.Info("backup imported",
		zap.Int("holdings", summary.Holdings),
		zap.Int("records", summary.Records),
		zap.Int("navs", summary.NAVs),
	)
	return summary, nil
}

func checkBackup(b Backup) error {
	if b.FormatVersion != BackupFormatVersion {
		return fmt.Errorf("%w: unsupported format version %d", apperrors.ErrInvalidBackup, b.FormatVersion)
	}

	seen := make(map[string]bool, len(b.Holdings))
	for _, h := range b.Holdings {
		if h.Code == "" {
			return fmt.Errorf("%w: holding without code", apperrors.ErrInvalidBackup)
		}
		if seen[h.Code] {
			return fmt.Errorf("%w: duplicate holding %s", apperrors.ErrInvalidBackup, h.Code)
		}
		seen[h.Code] = true

		for _, r := range h.TradingRecords {
			if r.HoldingCode != h.Code {
				return fmt.Errorf("%w: record %s filed under %s belongs to %s",
					apperrors.ErrInvalidBackup, r.ID, h.Code, r.HoldingCode)
			}
			if !r.Type.Valid() {
				return fmt.Errorf("%w: record %s has type %q", apperrors.ErrInvalidBackup, r.ID, r.Type)
			}
		}
	}

	for _, p := range b.NAVs {
		if p.NAV <= 0 {
			return fmt.Errorf("%w: nav of %s on %s is not positive",
				apperrors.ErrInvalidBackup, p.Code, p.Date.Format(model.DateLayout))
		}
	}

	return nil
}
