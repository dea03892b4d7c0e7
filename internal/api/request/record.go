package request

// CreateRecordRequest creates a trading record on a holding.
// Value is cash for buy and dividend-cash, shares for sell and dividend-reinvest.
// When NAV is set the record is confirmed immediately.
type CreateRecordRequest struct {
	Date  string   `json:"date"`
	Type  string   `json:"type"`
	Value float64  `json:"value"`
	NAV   *float64 `json:"nav,omitempty"`
}

// ConfirmRecordRequest confirms a pending record. Without NAV the stored NAV of the
// record's date is used.
type ConfirmRecordRequest struct {
	NAV *float64 `json:"nav,omitempty"`
}
