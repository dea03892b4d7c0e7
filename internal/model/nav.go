package model

import "time"

// NAVPoint is the unit net asset value of a fund on one trading day.
type NAVPoint struct {
	Code string    `json:"code"`
	Date time.Time `json:"date"`
	NAV  float64   `json:"nav"`
}

// NAVQuote summarizes the NAV series of one fund for valuation.
// Previous is the NAV of the trading day before LatestDate and Recent the NAV at the
// start of the recent window; both are 0 when the series is too short.
type NAVQuote struct {
	Code       string    `json:"code"`
	LatestDate time.Time `json:"latestDate"`
	Latest     float64   `json:"latest"`
	Previous   float64   `json:"previous"`
	Recent     float64   `json:"recent"`
}
