package validation

import (
	"fmt"
	"time"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
	"github.com/ndewijer/Fund-Ledger-Backend/internal/model"
)

// ValidateUpsertNAV validates a batch of NAV points. Every point needs a
// YYYY-MM-DD date and a positive NAV; dates must be unique within the batch.
func ValidateUpsertNAV(req request.UpsertNAVRequest) error {
	errors := make(map[string]string)

	if len(req.Points) == 0 {
		errors["points"] = "at least one point is required"
	}

	seen := make(map[string]bool, len(req.Points))
	for i, p := range req.Points {
		if _, err := time.Parse(model.DateLayout, p.Date); err != nil {
			errors[fmt.Sprintf("points[%d].date", i)] = "date must be in YYYY-MM-DD format"
		} else if seen[p.Date] {
			errors[fmt.Sprintf("points[%d].date", i)] = fmt.Sprintf("duplicate date: %s", p.Date)
		}
		seen[p.Date] = true

		if p.NAV <= 0.0 {
			errors[fmt.Sprintf("points[%d].nav", i)] = "nav must be positive"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
