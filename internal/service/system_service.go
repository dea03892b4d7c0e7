package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/database"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/repository"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db          *sql.DB
	versionRepo *repository.VersionRepository
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db:          db,
		versionRepo: repository.NewVersionRepository(db),
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion reports the application version, the applied schema version and the
// current store versions.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	dbVersion, pending, err := database.SchemaStatus(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	storeVersions, err := s.versionRepo.GetVersions(ctx)
	if err != nil {
		return model.VersionInfo{}, err
	}

	info := model.VersionInfo{
		AppVersion:      version.Version,
		DbVersion:       fmt.Sprintf("%d", dbVersion),
		MigrationNeeded: pending,
		StoreVersions:   storeVersions,
	}
	if pending {
		msg := "database schema is behind the application; run fundctl migrate"
		info.MigrationMessage = &msg
	}

	return info, nil
}
