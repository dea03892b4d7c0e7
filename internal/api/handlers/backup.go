package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
)

// maxBackupBytes bounds the size of an uploaded backup token.
const maxBackupBytes = 64 << 20

// BackupHandler exports and imports encrypted store backups.
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new BackupHandler with the provided service dependency.
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{
		backupService: backupService,
	}
}

// Export handles GET requests to download the whole store as a fernet token.
//
// Endpoint: GET /api/backup/export
// Response: 200 OK with the token as text/plain attachment
// Error: 401 Unauthorized without valid API key and time token (middleware)
// Error: 503 Service Unavailable if no backup key is configured
// Error: 500 Internal Server Error if the export fails
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	token, err := h.backupService.Export(r.Context())
	if err != nil {
		respondBackupError(w, err, apperrors.ErrFailedToExportBackup.Error())
		return
	}

	filename := fmt.Sprintf("fund-ledger-%s.backup", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(token)
}

// Import handles POST requests to replace the store with the content of a backup token.
//
// Endpoint: POST /api/backup/import
// Request Body: the token as produced by Export
// Response: 200 OK with ImportSummary
// Error: 400 Bad Request if the token is empty, tampered with or malformed
// Error: 401 Unauthorized without valid API key and time token (middleware)
// Error: 503 Service Unavailable if no backup key is configured
// Error: 500 Internal Server Error if the import fails
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBackupBytes))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	token := strings.TrimSpace(string(body))
	if token == "" {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", "request body is empty")
		return
	}

	summary, err := h.backupService.Import(r.Context(), []byte(token))
	if err != nil {
		respondBackupError(w, err, apperrors.ErrFailedToImportBackup.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

func respondBackupError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrBackupNotConfigured):
		response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrBackupNotConfigured.Error(), err.Error())
	case errors.Is(err, apperrors.ErrInvalidBackup):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidBackup.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback, err.Error())
	}
}
