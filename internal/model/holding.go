package model

import "time"

// InitialPosition is the state a holding had before its first tracked record.
// It seeds every replay and the baseline snapshot.
type InitialPosition struct {
	Shares         float64 `json:"shares"`
	Cost           float64 `json:"cost"`
	RealizedProfit float64 `json:"realizedProfit"`
}

// Holding represents one fund position identified by its fund code.
// Shares, AverageCost and RealizedProfit are a stored projection of a full replay
// of TradingRecords starting from Initial.
type Holding struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Tag            string          `json:"tag"`
	Shares         float64         `json:"shares"`
	AverageCost    float64         `json:"averageCost"`
	RealizedProfit float64         `json:"realizedProfit"`
	Initial        InitialPosition `json:"initialPosition"`
	TradingRecords []TradingRecord `json:"tradingRecords,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// HoldingValuation is a holding valued at its latest known NAV.
// Valued is false when no NAV quote was available; value-dependent fields are then zero.
type HoldingValuation struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Tag               string  `json:"tag"`
	Shares            float64 `json:"shares"`
	AverageCost       float64 `json:"averageCost"`
	CostBasis         float64 `json:"costBasis"`
	LatestNAV         float64 `json:"latestNav"`
	MarketValue       float64 `json:"marketValue"`
	RealizedProfit    float64 `json:"realizedProfit"`
	CumulativeValue   float64 `json:"cumulativeValue"`
	HoldingProfit     float64 `json:"holdingProfit"`
	HoldingProfitRate float64 `json:"holdingProfitRate"`
	TotalProfit       float64 `json:"totalProfit"`
	TotalProfitRate   float64 `json:"totalProfitRate"`
	DailyProfit       float64 `json:"dailyProfit"`
	DailyProfitRate   float64 `json:"dailyProfitRate"`
	RecentProfit      float64 `json:"recentProfit"`
	Valued            bool    `json:"valued"`
}
