package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/validation"
)

// defaultHistoryDays is the span of NAV history returned when no startDate is given.
const defaultHistoryDays = 365

// NAVHandler handles HTTP requests for fund NAV endpoints.
type NAVHandler struct {
	navService *service.NAVService
}

// NewNAVHandler creates a new NAVHandler with the provided service dependency.
func NewNAVHandler(navService *service.NAVService) *NAVHandler {
	return &NAVHandler{
		navService: navService,
	}
}

// NAVHistory handles GET requests to retrieve the NAV series of a fund.
// endDate defaults to today and startDate to one year before endDate.
//
// Endpoint: GET /api/nav/{code}?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
// Response: 200 OK with array of NAVPoint, oldest first
// Error: 400 Bad Request if a date is malformed or startDate is after endDate
// Error: 500 Internal Server Error if retrieval fails
func (h *NAVHandler) NAVHistory(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	endDate := time.Now().UTC()
	if v := r.URL.Query().Get("endDate"); v != "" {
		parsed, err := time.Parse(model.DateLayout, v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid endDate format", err.Error())
			return
		}
		endDate = parsed
	}

	startDate := endDate.AddDate(0, 0, -defaultHistoryDays)
	if v := r.URL.Query().Get("startDate"); v != "" {
		parsed, err := time.Parse(model.DateLayout, v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid startDate format", err.Error())
			return
		}
		startDate = parsed
	}

	points, err := h.navService.GetNAVHistory(r.Context(), code, startDate, endDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDateRange) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidDateRange.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveNAV.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, points)
}

// UpsertNAV handles PUT requests to store NAV points of a fund, overwriting existing days.
//
// Endpoint: PUT /api/nav/{code}
// Request Body: UpsertNAVRequest (points: [{date, nav}])
// Response: 200 OK with the stored NAVPoints
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if the update fails
func (h *NAVHandler) UpsertNAV(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	req, err := parseJSON[request.UpsertNAVRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpsertNAV(req); err != nil {
		respondValidation(w, err)
		return
	}

	points, err := h.navService.UpsertNAVs(r.Context(), code, req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToUpdateNAV.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, points)
}

// Quotes handles GET requests for the latest, previous and recent NAV of funds.
//
// Endpoint: GET /api/nav/quote?codes=a,b
// Response: 200 OK with array of NAVQuote; funds without NAV are omitted
// Error: 400 Bad Request if a code is malformed
// Error: 500 Internal Server Error if retrieval fails
func (h *NAVHandler) Quotes(w http.ResponseWriter, r *http.Request) {
	var codes []string
	if v := r.URL.Query().Get("codes"); v != "" {
		for _, c := range strings.Split(v, ",") {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			if err := validation.ValidateFundCode(c); err != nil {
				respondValidation(w, err)
				return
			}
			codes = append(codes, c)
		}
	}

	quotes, err := h.navService.GetQuotes(r.Context(), codes)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveNAV.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, quotes)
}
