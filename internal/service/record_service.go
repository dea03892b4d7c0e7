package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
)

// RecordService handles trading record business logic: creating, confirming and
// deleting records. All writes go through the atomic record store.
type RecordService struct {
	store       *recordStore
	holdingRepo *repository.HoldingRepository
	recordRepo  *repository.RecordRepository
	logger      *zap.Logger
}

// NewRecordService creates a new RecordService on db.
func NewRecordService(db *sql.DB, logger *zap.Logger) *RecordService {
	return &RecordService{
		store:       newRecordStore(db),
		holdingRepo: repository.NewHoldingRepository(db),
		recordRepo:  repository.NewRecordRepository(db),
		logger:      logger.Named("records"),
	}
}

// GetRecords retrieves the records of a holding in (date, sequence) order.
// Returns apperrors.ErrHoldingNotFound when the holding does not exist.
func (s *RecordService) GetRecords(ctx context.Context, code string) ([]model.TradingRecord, error) {
	if _, err := s.holdingRepo.GetHolding(ctx, code); err != nil {
		return nil, err
	}
	return s.recordRepo.GetRecordsByHolding(ctx, code)
}

// GetRecord retrieves a single record by ID.
func (s *RecordService) GetRecord(ctx context.Context, id string) (model.TradingRecord, error) {
	return s.recordRepo.GetRecord(ctx, id)
}

// CreateRecord appends a record to a holding.
//
// The record takes the next sequence number of the holding, so it sorts after every
// existing record of the same date. It is confirmed in the same transaction when the
// request carries a NAV or the NAV store already has one for its date; otherwise it
// stays pending. A sell that exceeds the shares held at that point fails with
// apperrors.ErrInsufficientShares and nothing is written.
func (s *RecordService) CreateRecord(ctx context.Context, code string, req request.CreateRecordRequest) (model.TradingRecord, error) {
	date, err := time.Parse(model.DateLayout, req.Date)
	if err != nil {
		return model.TradingRecord{}, err
	}

	rec := model.TradingRecord{
		ID:          uuid.New().String(),
		HoldingCode: code,
		Date:        date,
		Type:        model.RecordType(req.Type),
		Settlement:  model.PendingOrder{Value: req.Value},
		CreatedAt:   time.Now().UTC(),
	}

	_, err = s.store.mutate(ctx, code, func(repos txRepos, h *model.Holding, records []model.TradingRecord) ([]model.TradingRecord, error) {
		rec.Sequence = nextSequence(records)

		nav, ok, err := resolveNAV(ctx, repos.navs, code, date, req.NAV)
		if err != nil {
			return nil, err
		}
		if ok {
			before := ledger.StateBefore(records, rec, ledger.Seed(h.Initial))
			rec, err = ledger.Confirm(rec, nav, before)
			if err != nil {
				return nil, err
			}
		}

		return append(records, rec), nil
	})
	if err != nil {
		return model.TradingRecord{}, fmt.Errorf("failed to create trading record: %w", err)
	}

	s.logger.Info("trading record created",
		zap.String("id", rec.ID),
		zap.String("holding", code),
		zap.String("type", string(rec.Type)),
		zap.Bool("pending", rec.IsPending()),
	)
	return rec, nil
}

// ConfirmRecord confirms a pending record at nav, or at the stored NAV of its date
// when nav is nil. Later records are not recomputed.
func (s *RecordService) ConfirmRecord(ctx context.Context, id string, nav *float64) (model.TradingRecord, error) {
	existing, err := s.recordRepo.GetRecord(ctx, id)
	if err != nil {
		return model.TradingRecord{}, err
	}
	if !existing.IsPending() {
		return model.TradingRecord{}, fmt.Errorf("record %s: %w", id, apperrors.ErrRecordAlreadyConfirmed)
	}

	var confirmed model.TradingRecord
	_, err = s.store.mutate(ctx, existing.HoldingCode, func(repos txRepos, h *model.Holding, records []model.TradingRecord) ([]model.TradingRecord, error) {
		idx := indexOfRecord(records, id)
		if idx < 0 {
			return nil, apperrors.ErrRecordNotFound
		}
		rec := records[idx]

		price, ok, err := resolveNAV(ctx, repos.navs, rec.HoldingCode, rec.Date, nav)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s on %s: %w", rec.HoldingCode, rec.Date.Format(model.DateLayout), apperrors.ErrNAVNotFound)
		}

		before := ledger.StateBefore(records, rec, ledger.Seed(h.Initial))
		confirmed, err = ledger.Confirm(rec, price, before)
		if err != nil {
			return nil, err
		}

		records[idx] = confirmed
		return records, nil
	})
	if err != nil {
		return model.TradingRecord{}, err
	}

	s.logger.Info("trading record confirmed", zap.String("id", id), zap.String("holding", confirmed.HoldingCode))
	return confirmed, nil
}

// DeleteRecord removes a record and re-projects its holding.
func (s *RecordService) DeleteRecord(ctx context.Context, id string) error {
	existing, err := s.recordRepo.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.store.mutate(ctx, existing.HoldingCode, func(_ txRepos, _ *model.Holding, records []model.TradingRecord) ([]model.TradingRecord, error) {
		idx := indexOfRecord(records, id)
		if idx < 0 {
			return nil, apperrors.ErrRecordNotFound
		}
		return append(records[:idx], records[idx+1:]...), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("trading record deleted", zap.String("id", id), zap.String("holding", existing.HoldingCode))
	return nil
}

// ConfirmPendingForHolding confirms, in (date, sequence) order, every pending record of
// a holding whose date has a stored NAV. Records that cannot be confirmed (no NAV yet,
// or a sell exceeding the shares held) stay pending. Returns the number confirmed.
func (s *RecordService) ConfirmPendingForHolding(ctx context.Context, code string) (int, error) {
	confirmedCount := 0

	_, err := s.store.mutate(ctx, code, func(repos txRepos, h *model.Holding, records []model.TradingRecord) ([]model.TradingRecord, error) {
		seed := ledger.Seed(h.Initial)
		for i, rec := range records {
			if !rec.IsPending() {
				continue
			}

			nav, err := repos.navs.GetNAVOnDate(ctx, code, rec.Date)
			if errors.Is(err, apperrors.ErrNAVNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}

			confirmed, err := ledger.Confirm(rec, nav, ledger.StateBefore(records, rec, seed))
			if errors.Is(err, apperrors.ErrInsufficientShares) {
				s.logger.Warn("pending sell left unconfirmed",
					zap.String("id", rec.ID),
					zap.String("holding", code),
					zap.Error(err),
				)
				continue
			}
			if err != nil {
				return nil, err
			}

			records[i] = confirmed
			confirmedCount++
		}
		if confirmedCount == 0 {
			return nil, errNoChange
		}
		return records, nil
	})
	if err != nil {
		return 0, err
	}

	return confirmedCount, nil
}

// ConfirmPending runs ConfirmPendingForHolding for every holding with pending records.
// Each holding is confirmed in its own transaction.
func (s *RecordService) ConfirmPending(ctx context.Context) (int, error) {
	codes, err := s.recordRepo.GetPendingHoldingCodes(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, code := range codes {
		n, err := s.ConfirmPendingForHolding(ctx, code)
		if err != nil {
			return total, fmt.Errorf("failed to confirm pending records of %s: %w", code, err)
		}
		total += n
	}

	if total > 0 {
		s.logger.Info("pending records confirmed", zap.Int("count", total), zap.Int("holdings", len(codes)))
	}
	return total, nil
}

// resolveNAV returns the explicit nav when given, otherwise the stored NAV of code on date.
// ok is false when neither is available.
func resolveNAV(ctx context.Context, navs *repository.NAVRepository, code string, date time.Time, explicit *float64) (float64, bool, error) {
	if explicit != nil {
		return *explicit, true, nil
	}

	nav, err := navs.GetNAVOnDate(ctx, code, date)
	if errors.Is(err, apperrors.ErrNAVNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return nav, true, nil
}

func nextSequence(records []model.TradingRecord) int {
	next := 1
	for _, r := range records {
		if r.Sequence >= next {
			next = r.Sequence + 1
		}
	}
	return next
}

func indexOfRecord(records []model.TradingRecord, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}
