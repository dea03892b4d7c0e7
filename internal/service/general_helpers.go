package service

import (
	"math"

	"github.com/shopspring/decimal"
)

// Decimal places of figures in API responses.
const (
	// MoneyPrecision covers money amounts and percentage rates.
	MoneyPrecision = 2
	// NAVPrecision covers per-unit prices such as average cost.
	NAVPrecision = 4
	// SharePrecision covers share counts.
	SharePrecision = 4
	// RatioPrecision covers 0-1 fractions and the efficiencies derived from them.
	RatioPrecision = 4
)

// roundTo rounds value half away from zero to places decimal places.
// Rounding goes through decimal so 1.005 becomes 1.01 rather than 1.00.
// NaN and infinities collapse to 0.
//
// Example:
//
//	roundTo(123.456789, 2)  // returns 123.46
//	roundTo(1.005, 2)       // returns 1.01
//	roundTo(1.23456, 4)     // returns 1.2346
func roundTo(value float64, places int32) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return decimal.NewFromFloat(value).Round(places).InexactFloat64()
}

// round rounds a money amount or percentage.
func round(value float64) float64 {
	return roundTo(value, MoneyPrecision)
}

func roundNAV(value float64) float64 {
	return roundTo(value, NAVPrecision)
}

func roundShares(value float64) float64 {
	return roundTo(value, SharePrecision)
}

func roundRatio(value float64) float64 {
	return roundTo(value, RatioPrecision)
}
