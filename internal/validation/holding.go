package validation

import (
	"regexp"
	"strings"

	"github.com/ndewijer/Fund-Ledger-Backend/internal/api/request"
)

var fundCodePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,32}$`)

// ValidateFundCode checks the format of a fund code used in URLs and requests.
func ValidateFundCode(code string) error {
	if !fundCodePattern.MatchString(code) {
		return &Error{Fields: map[string]string{"code": "code must be 1-32 letters, digits, '.', '_' or '-'"}}
	}
	return nil
}

// ValidateCreateHolding validates a holding creation request.
//
// Required fields:
//   - code: 1-32 letters, digits, '.', '_' or '-'
//   - name: non-empty, at most 100 characters
//
// The optional initialPosition must have non-negative shares and cost,
// and a cost of zero when it has no shares.
func ValidateCreateHolding(req request.CreateHoldingRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Code) == "" {
		errors["code"] = "code is required"
	} else if !fundCodePattern.MatchString(req.Code) {
		errors["code"] = "code must be 1-32 letters, digits, '.', '_' or '-'"
	}

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if len(req.Tag) > 200 {
		errors["tag"] = "tag must be 200 characters or less"
	}

	if req.InitialPosition != nil {
		validateInitialPosition(*req.InitialPosition, errors)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateUpdateHolding validates a holding update request.
// All fields are optional, but if provided they must meet the same constraints as create.
func ValidateUpdateHolding(req request.UpdateHoldingRequest) error {
	errors := make(map[string]string)

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			errors["name"] = "name cannot be empty"
		} else if len(*req.Name) > 100 {
			errors["name"] = "name must be 100 characters or less"
		}
	}

	if req.Tag != nil && len(*req.Tag) > 200 {
		errors["tag"] = "tag must be 200 characters or less"
	}

	if req.InitialPosition != nil {
		validateInitialPosition(*req.InitialPosition, errors)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func validateInitialPosition(p request.InitialPositionRequest, errors map[string]string) {
	if p.Shares < 0 {
		errors["initialPosition.shares"] = "shares cannot be negative"
	}
	if p.Cost < 0 {
		errors["initialPosition.cost"] = "cost cannot be negative"
	} else if p.Shares == 0 && p.Cost > 0 {
		errors["initialPosition.cost"] = "cost must be zero without shares"
	}
}
