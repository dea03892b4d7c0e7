package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
)

// TestRecentWindow is the recent-profit window used by test services.
const TestRecentWindow = 7

func NewTestHoldingService(t *testing.T, db *sql.DB) *service.HoldingService {
	t.Helper()

	return service.NewHoldingService(db, zap.NewNop())
}

func NewTestRecordService(t *testing.T, db *sql.DB) *service.RecordService {
	t.Helper()

	return service.NewRecordService(db, zap.NewNop())
}

func NewTestNAVService(t *testing.T, db *sql.DB) *service.NAVService {
	t.Helper()

	return service.NewNAVService(db, TestRecentWindow, zap.NewNop())
}

func NewTestDataLoaderService(t *testing.T, db *sql.DB) *service.DataLoaderService {
	t.Helper()

	return service.NewDataLoaderService(db, TestRecentWindow, zap.NewNop())
}

func NewTestAnalysisService(t *testing.T, db *sql.DB) *service.AnalysisService {
	t.Helper()

	return service.NewAnalysisService(NewTestDataLoaderService(t, db), zap.NewNop())
}

// NewTestBackupService creates a BackupService with a freshly generated key.
// Pass an empty key to get an unconfigured service.
func NewTestBackupService(t *testing.T, db *sql.DB, key string) *service.BackupService {
	t.Helper()

	svc, err := service.NewBackupService(db, key, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create backup service: %v", err)
	}
	return svc
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeFundCode generates a random six-digit fund code.
//
// Example usage:
//
//	code := testutil.MakeFundCode()
//	// Returns: "048213"
func MakeFundCode() string {
	const digits = "0123456789"
	result := make([]byte, 6)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = digits[rand.Intn(len(digits))]
	}
	return string(result)
}

// MakeFundName generates a unique fund name for testing.
//
// Example usage:
//
//	name := testutil.MakeFundName("Tech Fund")
//	// Returns: "Tech Fund XYZ789"
func MakeFundName(base string) string {
	if base == "" {
		base = "Fund"
	}
	return base + " " + randomAlphanumeric(6)
}

// Date parses a YYYY-MM-DD date and panics on malformed input.
func Date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
