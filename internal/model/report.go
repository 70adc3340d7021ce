package model

// FlashMetric is one line of a flash diagnostic report.
type FlashMetric struct {
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	Interpretation string  `json:"interpretation"`
}

// FlashReportRequest carries user-entered score overrides for a territory.
// Keys of Scores are upstream field names such as "score_water".
type FlashReportRequest struct {
	CodeSiren string             `json:"code_siren"`
	Scores    map[string]float64 `json:"scores"`
	Comments  string             `json:"comments,omitempty"`
}

// FlashReportResponse is the generated flash diagnostic.
type FlashReportResponse struct {
	TerritoryName string        `json:"territory_name"`
	CodeSiren     string        `json:"code_siren"`
	BaselineScore float64       `json:"baseline_score"`
	AdjustedScore float64       `json:"adjusted_score"`
	Metrics       []FlashMetric `json:"metrics"`
	Summary       string        `json:"summary"`
}

// TerritoryListResponse is the paged territory listing from upstream.
type TerritoryListResponse struct {
	Items []TerritoryRecord `json:"items"`
	Total int               `json:"total"`
}
