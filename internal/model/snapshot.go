package model

// BaselineDate is the date sentinel of the synthetic no-transaction snapshot.
const BaselineDate = "baseline"

// PortfolioSnapshot is the aggregate state of all holdings on one date,
// or on the baseline when Date is BaselineDate.
//
// Valuation fields use the latest NAV of each holding; DailyProfit compares the
// latest NAV with the prior trading day's NAV. Operation is nil for the baseline.
type PortfolioSnapshot struct {
	Date              string                `json:"date"`
	CostBasis         float64               `json:"costBasis"`
	MarketValue       float64               `json:"marketValue"`
	CumulativeValue   float64               `json:"cumulativeValue"`
	RealizedProfit    float64               `json:"realizedProfit"`
	HoldingProfit     float64               `json:"holdingProfit"`
	// HoldingProfitRate is relative to the cost of holdings that have a NAV.
	HoldingProfitRate float64               `json:"holdingProfitRate"`
	TotalProfit       float64               `json:"totalProfit"`
	// TotalProfitRate is relative to the cost basis of every holding.
	TotalProfitRate   float64               `json:"totalProfitRate"`
	DailyProfit       float64               `json:"dailyProfit"`
	DailyProfitRate   float64               `json:"dailyProfitRate"`
	NetAmountChange   float64               `json:"netAmountChange"`
	MarketValueChange float64               `json:"marketValueChange"`
	Operation         *OperationAttribution `json:"operation"`
}

// IsBaseline reports whether the snapshot is the synthetic baseline.
func (s PortfolioSnapshot) IsBaseline() bool {
	return s.Date == BaselineDate
}

// OperationAttribution decomposes the trading activity of one date.
type OperationAttribution struct {
	TotalBuyAmount             float64             `json:"totalBuyAmount"`
	TotalBuyFloatingProfit     float64             `json:"totalBuyFloatingProfit"`
	TotalSellAmount            float64             `json:"totalSellAmount"`
	TotalSellOpportunityProfit float64             `json:"totalSellOpportunityProfit"`
	TotalSellRealizedProfit    float64             `json:"totalSellRealizedProfit"`
	TotalDividendCash          float64             `json:"totalDividendCash"`
	TotalReinvestedShares      float64             `json:"totalReinvestedShares"`
	OperationProfit            float64             `json:"operationProfit"`
	ProfitPerHundred           float64             `json:"profitPerHundred"`
	ProfitCaused               float64             `json:"profitCaused"`
	ProfitCausedPerHundred     float64             `json:"profitCausedPerHundred"`
	OperationEffect            float64             `json:"operationEffect"`
	Records                    []RecordAttribution `json:"records"`
}

// RecordAttribution is the profit contribution of a single confirmed record,
// measured against the latest NAV of its holding.
type RecordAttribution struct {
	RecordID                 string     `json:"recordId"`
	HoldingCode              string     `json:"holdingCode"`
	Type                     RecordType `json:"type"`
	NAV                      float64    `json:"nav"`
	LatestNAV                float64    `json:"latestNav"`
	SharesChange             float64    `json:"sharesChange"`
	Amount                   float64    `json:"amount"`
	FloatingProfit           float64    `json:"floatingProfit"`
	FloatingProfitPercent    float64    `json:"floatingProfitPercent"`
	OpportunityProfit        float64    `json:"opportunityProfit"`
	OpportunityProfitPercent float64    `json:"opportunityProfitPercent"`
	RealizedProfit           float64    `json:"realizedProfit"`
	RealizedProfitPercent    float64    `json:"realizedProfitPercent"`
	CostBasisDelta           float64    `json:"costBasisDelta"`
}

// TagAnalysis aggregates the holdings sharing one tag.
// A holding carrying several tags contributes fully to each of them.
type TagAnalysis struct {
	Tag               string  `json:"tag"`
	FundCount         int     `json:"fundCount"`
	CostBasis         float64 `json:"costBasis"`
	MarketValue       float64 `json:"marketValue"`
	CumulativeValue   float64 `json:"cumulativeValue"`
	HoldingProfit     float64 `json:"holdingProfit"`
	TotalProfit       float64 `json:"totalProfit"`
	DailyProfit       float64 `json:"dailyProfit"`
	RecentProfit      float64 `json:"recentProfit"`
	HoldingProfitRate float64 `json:"holdingProfitRate"`
	TotalProfitRate   float64 `json:"totalProfitRate"`
	DailyProfitRate   float64 `json:"dailyProfitRate"`
	CostShare         float64 `json:"costShare"`
	ValueShare        float64 `json:"valueShare"`
	ProfitShare       float64 `json:"profitShare"`
	CostEfficiency    float64 `json:"costEfficiency"`
	ValueEfficiency   float64 `json:"valueEfficiency"`
}
