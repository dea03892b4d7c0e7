package request

type NAVPointRequest struct {
	Date string  `json:"date"`
	NAV  float64 `json:"nav"`
}

type UpsertNAVRequest struct {
	Points []NAVPointRequest `json:"points"`
}
