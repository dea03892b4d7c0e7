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

// RecordHandler handles HTTP requests for trading record endpoints.
type RecordHandler struct {
	recordService *service.RecordService
}

// NewRecordHandler creates a new RecordHandler with the provided service dependency.
func NewRecordHandler(recordService *service.RecordService) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
	}
}

// RecordsPerHolding handles GET requests to list the records of a holding in (date, sequence) order.
//
// Endpoint: GET /api/holding/{code}/record
// Response: 200 OK with array of TradingRecord
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *RecordHandler) RecordsPerHolding(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	records, err := h.recordService.GetRecords(r.Context(), code)
	if err != nil {
		respondStoreError(w, err, apperrors.ErrFailedToRetrieveRecords.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, records)
}

// CreateRecord handles POST requests to add a trading record to a holding.
// The record is confirmed immediately when a NAV is given or known for its date.
//
// Endpoint: POST /api/holding/{code}/record
// Request Body: CreateRecordRequest (date, type, value, nav)
// Response: 201 Created with TradingRecord
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if the holding does not exist
// Error: 409 Conflict if a sell exceeds the shares held
// Error: 500 Internal Server Error if creation fails
func (h *RecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	req, err := parseJSON[request.CreateRecordRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateRecord(req); err != nil {
		respondValidation(w, err)
		return
	}

	record, err := h.recordService.CreateRecord(r.Context(), code, req)
	if err != nil {
		respondStoreError(w, err, "failed to create trading record")
		return
	}

	response.RespondJSON(w, http.StatusCreated, record)
}

// ConfirmHoldingRecords handles POST requests to confirm every pending record of a
// holding whose NAV is stored.
//
// Endpoint: POST /api/holding/{code}/record/confirm
// Response: 200 OK with {"confirmed": n}
// Error: 404 Not Found if the holding does not exist
// Error: 500 Internal Server Error if confirmation fails
func (h *RecordHandler) ConfirmHoldingRecords(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	n, err := h.recordService.ConfirmPendingForHolding(r.Context(), code)
	if err != nil {
		respondStoreError(w, err, "failed to confirm pending records")
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"confirmed": n})
}

// GetRecord handles GET requests to retrieve a single record.
//
// Endpoint: GET /api/record/{uuid}
// Response: 200 OK with TradingRecord
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the record does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *RecordHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")

	record, err := h.recordService.GetRecord(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, apperrors.ErrFailedToRetrieveRecord.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, record)
}

// ConfirmRecord handles POST requests to confirm one pending record. Without a body
// NAV the stored NAV of the record's date is used.
//
// Endpoint: POST /api/record/{uuid}/confirm
// Request Body: ConfirmRecordRequest (nav, optional; body may be empty)
// Response: 200 OK with the confirmed TradingRecord
// Error: 400 Bad Request if the NAV is invalid
// Error: 404 Not Found if the record does not exist or no NAV is known
// Error: 409 Conflict if already confirmed or a sell exceeds the shares held
// Error: 500 Internal Server Error if confirmation fails
func (h *RecordHandler) ConfirmRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")

	var req request.ConfirmRecordRequest
	if r.ContentLength != 0 {
		parsed, err := parseJSON[request.ConfirmRecordRequest](r)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		req = parsed
	}

	if err := validation.ValidateConfirmRecord(req); err != nil {
		respondValidation(w, err)
		return
	}

	record, err := h.recordService.ConfirmRecord(r.Context(), id, req.NAV)
	if err != nil {
		respondStoreError(w, err, "failed to confirm trading record")
		return
	}

	response.RespondJSON(w, http.StatusOK, record)
}

// DeleteRecord handles DELETE requests to remove a record.
//
// Endpoint: DELETE /api/record/{uuid}
// Response: 204 No Content
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the record does not exist
// Error: 500 Internal Server Error if deletion fails
func (h *RecordHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "uuid")

	if err := h.recordService.DeleteRecord(r.Context(), id); err != nil {
		respondStoreError(w, err, "failed to delete trading record")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
