package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/response"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/apperrors"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/service"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/validation"
)

// HoldingHandler handles HTTP requests for holding endpoints.
type HoldingHandler struct {
	holdingService *service.HoldingService
}

// NewHoldingHandler creates a new HoldingHandler with the provided service dependency.
func NewHoldingHandler(holdingService *service.HoldingService) *HoldingHandler {
	return &HoldingHandler{
		holdingService: holdingService,
	}
}

// Holdings handles GET requests to list every holding with its position projection.
//
// Endpoint: GET /api/holding
// Response: 200 OK with array of Holding
// Error: 500 Internal Server Error if retrieval fails
func (h *HoldingHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.holdingService.GetHoldings(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveHoldings.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}

// GetHolding handles GET requests to retrieve one holding with its trading records.
//
// Endpoint: GET /api/holding/{code}
// Response: 200 OK with Holding
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *HoldingHandler) GetHolding(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	holding, err := h.holdingService.GetHolding(r.Context(), code)
	if err != nil {
		respondStoreError(w, err, apperrors.ErrFailedToRetrieveHolding.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, holding)
}

// CreateHolding handles POST requests to create a holding.
//
// Endpoint: POST /api/holding
// Request Body: CreateHoldingRequest (code, name, tag, initialPosition)
// Response: 201 Created with Holding
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if a holding with the code exists
// Error: 500 Internal Server Error if creation fails
func (h *HoldingHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateHolding(req); err != nil {
		respondValidation(w, err)
		return
	}

	holding, err := h.holdingService.CreateHolding(r.Context(), req)
	if err != nil {
		respondStoreError(w, err, "failed to create holding")
		return
	}

	response.RespondJSON(w, http.StatusCreated, holding)
}

// UpdateHolding handles PUT requests to change the name, tag or initial position of a holding.
//
// Endpoint: PUT /api/holding/{code}
// Request Body: UpdateHoldingRequest (all fields optional)
// Response: 200 OK with updated Holding
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if the update fails
func (h *HoldingHandler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	req, err := parseJSON[request.UpdateHoldingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateHolding(req); err != nil {
		respondValidation(w, err)
		return
	}

	holding, err := h.holdingService.UpdateHolding(r.Context(), code, req)
	if err != nil {
		respondStoreError(w, err, "failed to update holding")
		return
	}

	response.RespondJSON(w, http.StatusOK, holding)
}

// DeleteHolding handles DELETE requests to remove a holding and its records.
//
// Endpoint: DELETE /api/holding/{code}
// Response: 204 No Content
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if deletion fails
func (h *HoldingHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if err := h.holdingService.DeleteHolding(r.Context(), code); err != nil {
		respondStoreError(w, err, "failed to delete holding")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
