package models

// ExternalSentimentResponse is the JSON document the hosted model is asked
// to return.
type ExternalSentimentResponse struct {
	Score      *float64 `json:"score"`
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"`
	Flagged    bool     `json:"flagged"`
	Reasons    []string `json:"reasons"`
}
