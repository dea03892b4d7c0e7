package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// ValidateCreateRecord validates a trading record creation request.
//
// Required fields:
//   - date: Must be in YYYY-MM-DD format
//   - type: Must be one of: buy, sell, dividend-cash, dividend-reinvest
//   - value: Must be positive
//
// Optional nav must be positive when provided.
func ValidateCreateRecord(req request.CreateRecordRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		errors["date"] = "date must be in YYYY-MM-DD format"
	}

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !model.RecordType(req.Type).Valid() {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if req.Value <= 0.0 {
		errors["value"] = "value must be positive"
	}

	if req.NAV != nil && *req.NAV <= 0.0 {
		errors["nav"] = "nav must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateConfirmRecord validates a confirmation request.
func ValidateConfirmRecord(req request.ConfirmRecordRequest) error {
	if req.NAV != nil && *req.NAV <= 0.0 {
		return &Error{Fields: map[string]string{"nav": "nav must be positive"}}
	}
	return nil
}
