package keywords

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrKeywordNotFound  = errors.New("keyword not found")
	ErrDuplicateKeyword = errors.New("keyword already exists for this type and language")

	errNoStore = errors.New("no keyword store configured")
)

// Violation is one failed field rule.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError carries every rule a keyword mutation violated.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "invalid keyword: " + strings.Join(msgs, "; ")
}

// Has reports whether the named field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// StoreUnavailableError wraps any failure talking to the keyword store.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("keyword store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// writeError keeps domain sentinels visible to the caller and marks
// everything else as a store failure.
func writeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var verr *ValidationError
	if errors.Is(err, ErrKeywordNotFound) || errors.Is(err, ErrDuplicateKeyword) || errors.As(err, &verr) {
		return fmt.Errorf("[KeywordAccessor] %s: %w", op, err)
	}
	return &StoreUnavailableError{Op: op, Err: err}
}
