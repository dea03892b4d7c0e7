package request

// InitialPositionRequest is the pre-tracking state of a holding.
type InitialPositionRequest struct {
	Shares         float64 `json:"shares"`
	Cost           float64 `json:"cost"`
	RealizedProfit float64 `json:"realizedProfit"`
}

type CreateHoldingRequest struct {
	Code            string                  `json:"code"`
	Name            string                  `json:"name"`
	Tag             string                  `json:"tag"`
	InitialPosition *InitialPositionRequest `json:"initialPosition,omitempty"`
}

type UpdateHoldingRequest struct {
	Name            *string                 `json:"name,omitempty"`
	Tag             *string                 `json:"tag,omitempty"`
	InitialPosition *InitialPositionRequest `json:"initialPosition,omitempty"`
}
