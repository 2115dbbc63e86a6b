package models

import "time"

type PolarityClass string

const (
	PolarityPositive       PolarityClass = "positive"
	PolarityNegative       PolarityClass = "negative"
	PolarityStrongNegative PolarityClass = "strong_negative"
)

// PolarityClasses lists every class in scoring order.
var PolarityClasses = []PolarityClass{PolarityPositive, PolarityNegative, PolarityStrongNegative}

func (p PolarityClass) Valid() bool {
	switch p {
	case PolarityPositive, PolarityNegative, PolarityStrongNegative:
		return true
	}
	return false
}

// Keyword is one lexicon entry. ID is zero for fallback entries.
type Keyword struct {
	ID         int64         `json:"id"`
	Text       string        `json:"keyword"`
	Polarity   PolarityClass `json:"type"`
	Weight     float64       `json:"weight"`
	Language   string        `json:"language"`
	Active     bool          `json:"active"`
	CategoryID *int64        `json:"category_id,omitempty"`
	CreatedBy  string        `json:"created_by,omitempty"`
	UpdatedBy  string        `json:"updated_by,omitempty"`
	CreatedAt  time.Time     `json:"created_at,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at,omitempty"`
}

// KeywordInput is the payload for adding a keyword.
type KeywordInput struct {
	Text       string        `json:"keyword" validate:"required"`
	Polarity   PolarityClass `json:"type" validate:"required,oneof=positive negative strong_negative"`
	Weight     *float64      `json:"weight,omitempty" validate:"omitnil,gte=0.1,lte=2"`
	Language   string        `json:"language" validate:"required"`
	CategoryID *int64        `json:"category_id,omitempty"`
	Active     *bool         `json:"active,omitempty"`
}

// KeywordPatch is a partial update; nil fields are left untouched.
type KeywordPatch struct {
	Text       *string        `json:"keyword,omitempty"`
	Polarity   *PolarityClass `json:"type,omitempty"`
	Weight     *float64       `json:"weight,omitempty"`
	CategoryID *int64         `json:"category_id,omitempty"`
	Active     *bool          `json:"active,omitempty"`
}

func (p KeywordPatch) Empty() bool {
	return p.Text == nil && p.Polarity == nil && p.Weight == nil && p.CategoryID == nil && p.Active == nil
}

type KeywordFilter struct {
	Language   string
	Polarity   PolarityClass
	Active     *bool
	CategoryID *int64
	Search     string
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Active      bool   `json:"active"`
}

type LexiconSource string

const (
	LexiconFromStore    LexiconSource = "store"
	LexiconFromFallback LexiconSource = "fallback"
)

// LexiconSnapshot is the grouped, read-only view of one language's active
// keywords. Snapshots are replaced wholesale, never mutated after creation.
type LexiconSnapshot struct {
	Language       string        `json:"language"`
	Positive       []Keyword     `json:"positive"`
	Negative       []Keyword     `json:"negative"`
	StrongNegative []Keyword     `json:"strong_negative"`
	Source         LexiconSource `json:"source"`
	LoadedAt       time.Time     `json:"loaded_at"`
}

func (s *LexiconSnapshot) Size() int {
	return len(s.Positive) + len(s.Negative) + len(s.StrongNegative)
}

// Group returns the keywords of one polarity class.
func (s *LexiconSnapshot) Group(p PolarityClass) []Keyword {
	switch p {
	case PolarityPositive:
		return s.Positive
	case PolarityNegative:
		return s.Negative
	case PolarityStrongNegative:
		return s.StrongNegative
	}
	return nil
}
