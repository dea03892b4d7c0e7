package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
)

// HoldingService handles holding business logic operations.
type HoldingService struct {
	store       *recordStore
	holdingRepo *repository.HoldingRepository
	recordRepo  *repository.RecordRepository
	logger      *zap.Logger
}

// NewHoldingService creates a new HoldingService on db.
func NewHoldingService(db *sql.DB, logger *zap.Logger) *HoldingService {
	return &HoldingService{
		store:       newRecordStore(db),
		holdingRepo: repository.NewHoldingRepository(db),
		recordRepo:  repository.NewRecordRepository(db),
		logger:      logger.Named("holdings"),
	}
}

// GetHoldings returns every holding with its stored position projection.
// Records are not attached.
func (s *HoldingService) GetHoldings(ctx context.Context) ([]model.Holding, error) {
	return s.holdingRepo.GetHoldings(ctx)
}

// GetHolding returns one holding with its records attached.
func (s *HoldingService) GetHolding(ctx context.Context, code string) (model.Holding, error) {
	h, err := s.holdingRepo.GetHolding(ctx, code)
	if err != nil {
		return model.Holding{}, err
	}

	records, err := s.recordRepo.GetRecordsByHolding(ctx, code)
	if err != nil {
		return model.Holding{}, err
	}
	h.TradingRecords = records
	return h, nil
}

// CreateHolding stores a new holding. Its projection starts at the initial position.
func (s *HoldingService) CreateHolding(ctx context.Context, req request.CreateHoldingRequest) (model.Holding, error) {
	h := model.Holding{
		Code:      req.Code,
		Name:      strings.TrimSpace(req.Name),
		Tag:       strings.TrimSpace(req.Tag),
		CreatedAt: time.Now().UTC(),
	}
	if req.InitialPosition != nil {
		h.Initial = initialPosition(*req.InitialPosition)
	}
	project(&h, nil)
	h.TradingRecords = []model.TradingRecord{}

	err := s.store.inTx(ctx, func(repos txRepos) error {
		if err := repos.holdings.InsertHolding(ctx, &h); err != nil {
			return err
		}
		return repos.versions.Bump(ctx, repository.StoreRecords)
	})
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to create holding: %w", err)
	}

	s.logger.Info("holding created", zap.String("code", h.Code))
	return h, nil
}

// UpdateHolding changes the name, tag or initial position of a holding.
// Changing the initial position re-projects the holding from its records.
func (s *HoldingService) UpdateHolding(ctx context.Context, code string, req request.UpdateHoldingRequest) (model.Holding, error) {
	h, err := s.store.mutate(ctx, code, func(_ txRepos, h *model.Holding, records []model.TradingRecord) ([]model.TradingRecord, error) {
		if req.Name != nil {
			h.Name = strings.TrimSpace(*req.Name)
		}
		if req.Tag != nil {
			h.Tag = strings.TrimSpace(*req.Tag)
		}
		if req.InitialPosition != nil {
			h.Initial = initialPosition(*req.InitialPosition)
		}
		return records, nil
	})
	if err != nil {
		return model.Holding{}, err
	}

	s.logger.Info("holding updated", zap.String("code", code))
	return h, nil
}

// DeleteHolding removes a holding together with its records.
func (s *HoldingService) DeleteHolding(ctx context.Context, code string) error {
	err := s.store.inTx(ctx, func(repos txRepos) error {
		if err := repos.holdings.DeleteHolding(ctx, code); err != nil {
			return err
		}
		return repos.versions.Bump(ctx, repository.StoreRecords)
	})
	if err != nil {
		return err
	}

	s.logger.Info("holding deleted", zap.String("code", code))
	return nil
}

func initialPosition(p request.InitialPositionRequest) model.InitialPosition {
	return model.InitialPosition{
		Shares:         p.Shares,
		Cost:           p.Cost,
		RealizedProfit: p.RealizedProfit,
	}
}
