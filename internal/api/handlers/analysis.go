package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/ledger"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
)

// AnalysisHandler serves snapshots, holding valuations and tag rollups.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler with the provided service dependency.
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// Snapshots handles GET requests for the portfolio snapshot of every activity date.
//
// Endpoint: GET /api/analysis/snapshot
// Response: 200 OK with array of PortfolioSnapshot, newest first, baseline last
// Error: 500 Internal Server Error if computation fails
func (h *AnalysisHandler) Snapshots(w http.ResponseWriter, r *http.Request) {
	snapshots, err := h.analysisService.Snapshots(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToBuildSnapshots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshots)
}

// Snapshot handles GET requests for the snapshot of one date.
//
// Endpoint: GET /api/analysis/snapshot/{date} (YYYY-MM-DD or "baseline")
// Response: 200 OK with PortfolioSnapshot
// Error: 400 Bad Request if the date is malformed
// Error: 404 Not Found if the date has no confirmed activity
// Error: 500 Internal Server Error if computation fails
func (h *AnalysisHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")

	if date != model.BaselineDate {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid date format", err.Error())
			return
		}
	}

	snapshot, err := h.analysisService.Snapshot(r.Context(), date)
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrSnapshotNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToBuildSnapshots.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, snapshot)
}

// Holdings handles GET requests for every holding valued at its latest NAV.
//
// Endpoint: GET /api/analysis/holding
// Response: 200 OK with array of HoldingValuation
// Error: 500 Internal Server Error if computation fails
func (h *AnalysisHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	valuations, err := h.analysisService.HoldingValuations(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToValueHoldings.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, valuations)
}

// Tags handles GET requests for the tag rollup.
//
// Endpoint: GET /api/analysis/tag?sortBy=marketValue&order=desc
// Response: 200 OK with array of TagAnalysis
// Error: 400 Bad Request if sortBy or order is unsupported
// Error: 500 Internal Server Error if computation fails
func (h *AnalysisHandler) Tags(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sortBy")
	order := ledger.SortOrder(r.URL.Query().Get("order"))

	tags, err := h.analysisService.TagAnalysis(r.Context(), sortBy, order)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnknownSortKey):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrUnknownSortKey.Error(), err.Error())
		case errors.Is(err, apperrors.ErrUnknownSortOrder):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrUnknownSortOrder.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAnalyzeTags.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, tags)
}
