package sentiment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/spacesedan/courtsense/internal/models"
)

const (
	positiveMultiplier       = 0.3
	negativeMultiplier       = 0.4
	strongNegativeMultiplier = 0.6
)

// MatchCounts is the number of keyword occurrences found per class.
type MatchCounts struct {
	Positive       int
	Negative       int
	StrongNegative int
}

func (m MatchCounts) Total() int {
	return m.Positive + m.Negative + m.StrongNegative
}

type tally struct {
	score float64
	words int
	terms []string
	MatchCounts
}

var patterns sync.Map

// keywordPattern compiles a case-insensitive literal matcher. Keywords are
// quoted so characters like '.', '(' and '+' match themselves.
func keywordPattern(keyword string) *regexp.Regexp {
	if re, ok := patterns.Load(keyword); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(keyword))
	patterns.Store(keyword, re)
	return re
}

// countOccurrences counts non-overlapping matches of keyword in text.
func countOccurrences(text, keyword string) int {
	if keyword == "" {
		return 0
	}
	return len(keywordPattern(keyword).FindAllStringIndex(text, -1))
}

// tallyLexicon walks the lexicon in positive, negative, strong negative
// order. The score is left unclamped.
func tallyLexicon(text string, snap *models.LexiconSnapshot) tally {
	lowered := strings.ToLower(text)
	t := tally{words: len(strings.Fields(lowered))}
	if t.words < 1 {
		t.words = 1
	}
	if snap == nil {
		return t
	}

	for _, kw := range snap.Positive {
		if n := countOccurrences(lowered, kw.Text); n > 0 {
			t.Positive += n
			t.score += float64(n) * kw.Weight * positiveMultiplier
			t.terms = append(t.terms, annotate("+", kw, n))
		}
	}
	for _, kw := range snap.Negative {
		if n := countOccurrences(lowered, kw.Text); n > 0 {
			t.Negative += n
			t.score -= float64(n) * kw.Weight * negativeMultiplier
			t.terms = append(t.terms, annotate("-", kw, n))
		}
	}
	for _, kw := range snap.StrongNegative {
		if n := countOccurrences(lowered, kw.Text); n > 0 {
			t.StrongNegative += n
			t.score -= float64(n) * kw.Weight * strongNegativeMultiplier
			t.terms = append(t.terms, annotate("--", kw, n))
		}
	}
	return t
}

func (t tally) density() float64 {
	return float64(t.Total()) / float64(t.words)
}

func annotate(prefix string, kw models.Keyword, count int) string {
	return fmt.Sprintf("%s%s (%dx, w:%s)", prefix, kw.Text, count, strconv.FormatFloat(kw.Weight, 'f', -1, 64))
}
