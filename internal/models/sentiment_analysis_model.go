package models

import "time"

type SentimentLabel string

const (
	LabelPositive SentimentLabel = "positive"
	LabelNegative SentimentLabel = "negative"
	LabelNeutral  SentimentLabel = "neutral"
)

type AnalysisMethod string

const (
	MethodRuleBased       AnalysisMethod = "rule_based"
	MethodFallbackLexicon AnalysisMethod = "fallback_lexicon"
	MethodExternalModel   AnalysisMethod = "external_model"
)

type SentimentResult struct {
	Score        float64        `json:"score"`
	Label        SentimentLabel `json:"label"`
	Confidence   float64        `json:"confidence"`
	Flagged      bool           `json:"flagged"`
	MatchedTerms []string       `json:"matched_terms"`
	Method       AnalysisMethod `json:"method"`
}

// ReviewSubmitted is published by the booking app when a review is created.
type ReviewSubmitted struct {
	ReviewID    string    `json:"review_id"`
	CourtID     string    `json:"court_id"`
	UserID      string    `json:"user_id"`
	Text        string    `json:"text"`
	Language    string    `json:"language,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// ReviewModeration is the outcome persisted against the review record.
type ReviewModeration struct {
	ReviewID   string          `json:"review_id"`
	CourtID    string          `json:"court_id"`
	Language   string          `json:"language"`
	Sentiment  SentimentResult `json:"sentiment"`
	Hidden     bool            `json:"hidden"`
	AnalyzedAt time.Time       `json:"analyzed_at"`
}
