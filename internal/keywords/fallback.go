package keywords

import (
	"sort"

	"github.com/spacesedan/courtsense/internal/models"
)

const FallbackLanguage = "vi"

type seedTerm struct {
	text   string
	weight float64
}

var fallbackTerms = map[models.PolarityClass][]seedTerm{
	models.PolarityPositive: {
		{"tốt", 1.0}, {"hay", 1.0}, {"đẹp", 1.1}, {"tuyệt", 1.4}, {"xuất sắc", 1.5},
		{"hoàn hảo", 1.5}, {"hài lòng", 1.3}, {"tuyệt vời", 1.4}, {"chất lượng", 1.2}, {"sạch sẽ", 1.2},
	},
	models.PolarityNegative: {
		{"tệ", 1.0}, {"dở", 1.0}, {"kém", 1.0}, {"xấu", 1.0}, {"tồi", 1.0},
		{"thất vọng", 1.3}, {"không hài lòng", 1.2}, {"bẩn", 1.2}, {"hỏng", 1.1}, {"chán", 0.8},
	},
	models.PolarityStrongNegative: {
		{"rất tệ", 2.0}, {"quá tệ", 2.0}, {"kinh khủng", 2.0}, {"thảm họa", 2.0}, {"lừa đảo", 2.0},
		{"không bao giờ quay lại", 1.8}, {"tệ nhất", 1.8},
	},
}

// extendedTerms are court-review terms seeded alongside the fallback lexicon
// on reseed. They are never used when the store is unreachable.
var extendedTerms = map[models.PolarityClass][]seedTerm{
	models.PolarityPositive: {
		{"thân thiện", 1.1}, {"nhiệt tình", 1.2}, {"rộng rãi", 1.0}, {"thoáng mát", 1.0},
		{"giá hợp lý", 1.2}, {"đáng tiền", 1.3}, {"chuyên nghiệp", 1.2}, {"tiện lợi", 1.0},
		{"mặt sân tốt", 1.3}, {"đèn sáng", 1.0},
	},
	models.PolarityNegative: {
		{"chật", 0.9}, {"đắt", 1.0}, {"ồn ào", 0.9}, {"trơn", 1.0}, {"thiếu đèn", 1.0},
		{"phục vụ chậm", 1.1}, {"thô lỗ", 1.3}, {"mất đồ", 1.2}, {"xuống cấp", 1.1},
	},
	models.PolarityStrongNegative: {
		{"lừa khách", 1.9}, {"ăn cắp", 2.0}, {"cực kỳ tệ", 2.0}, {"tồi tệ nhất", 2.0},
	},
}

// FallbackLexicon returns a fresh copy of the hardcoded Vietnamese lexicon.
// It is used whole, never merged with store rows.
func FallbackLexicon() *models.LexiconSnapshot {
	snap := &models.LexiconSnapshot{
		Language: FallbackLanguage,
		Source:   models.LexiconFromFallback,
	}
	snap.Positive = termsToKeywords(fallbackTerms[models.PolarityPositive], models.PolarityPositive)
	snap.Negative = termsToKeywords(fallbackTerms[models.PolarityNegative], models.PolarityNegative)
	snap.StrongNegative = termsToKeywords(fallbackTerms[models.PolarityStrongNegative], models.PolarityStrongNegative)
	return snap
}

// DefaultKeywords is the reseed dataset: the fallback lexicon followed by the
// extended terms, all active.
func DefaultKeywords() []models.Keyword {
	var out []models.Keyword
	for _, p := range models.PolarityClasses {
		out = append(out, termsToKeywords(fallbackTerms[p], p)...)
		out = append(out, termsToKeywords(extendedTerms[p], p)...)
	}
	return out
}

func termsToKeywords(terms []seedTerm, polarity models.PolarityClass) []models.Keyword {
	out := make([]models.Keyword, 0, len(terms))
	for _, t := range terms {
		out = append(out, models.Keyword{
			Text:     t.text,
			Polarity: polarity,
			Weight:   t.weight,
			Language: FallbackLanguage,
			Active:   true,
		})
	}
	sortByWeight(out)
	return out
}

// sortByWeight orders keywords by descending weight, then text.
func sortByWeight(kws []models.Keyword) {
	sort.SliceStable(kws, func(i, j int) bool {
		if kws[i].Weight != kws[j].Weight {
			return kws[i].Weight > kws[j].Weight
		}
		return kws[i].Text < kws[j].Text
	})
}
