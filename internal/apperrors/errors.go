package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrHoldingNotFound indicates that no holding exists for the given fund code.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrRecordNotFound indicates that a trading record with the given ID does not exist.
	ErrRecordNotFound = errors.New("trading record not found")

	// ErrNAVNotFound indicates no NAV for a specific fund code and date combination.
	ErrNAVNotFound = errors.New("nav not found")

	// ErrSnapshotNotFound indicates that no snapshot exists for the requested date,
	// i.e. no confirmed record was dated on that day.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientShares indicates that a sell record asks for more shares than the holding has.
	ErrInsufficientShares = errors.New("insufficient shares for sale")

	// ErrRecordAlreadyConfirmed indicates an attempt to confirm a record twice.
	// Confirmed records are immutable.
	ErrRecordAlreadyConfirmed = errors.New("trading record already confirmed")

	// ErrInvalidNAV indicates a NAV that is zero or negative.
	ErrInvalidNAV = errors.New("nav must be positive")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrUnknownSortKey and ErrUnknownSortOrder reject unsupported tag sorting parameters.
	ErrUnknownSortKey   = errors.New("unknown sort key")
	ErrUnknownSortOrder = errors.New("unknown sort order")

	// ErrBackupNotConfigured indicates that no BACKUP_KEY was provided.
	ErrBackupNotConfigured = errors.New("backup encryption key not configured")

	// ErrInvalidBackup indicates a backup token that cannot be decrypted or parsed.
	ErrInvalidBackup = errors.New("invalid backup token")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrieveHoldings = errors.New("failed to retrieve holdings")
	ErrFailedToRetrieveHolding  = errors.New("failed to retrieve holding")
	ErrFailedToRetrieveRecords  = errors.New("failed to retrieve trading records")
	ErrFailedToRetrieveRecord   = errors.New("failed to retrieve trading record")
	ErrFailedToRetrieveNAV      = errors.New("failed to retrieve nav")
	ErrFailedToUpdateNAV        = errors.New("failed to update nav")
	ErrFailedToBuildSnapshots   = errors.New("failed to build snapshots")
	ErrFailedToAnalyzeTags      = errors.New("failed to analyze tags")
	ErrFailedToValueHoldings    = errors.New("failed to value holdings")
	ErrFailedToGetVersionInfo   = errors.New("failed to get version information")
	ErrFailedToExportBackup     = errors.New("failed to export backup")
	ErrFailedToImportBackup     = errors.New("failed to import backup")
)

// Data integrity errors represent inconsistencies in stored data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., a record references a holding that does not exist).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)
