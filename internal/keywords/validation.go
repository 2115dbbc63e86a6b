package keywords

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spacesedan/courtsense/internal/models"
)

const (
	MinWeight     = 0.1
	MaxWeight     = 2.0
	DefaultWeight = 1.0
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

type keywordPatchRules struct {
	Text     *string               `json:"keyword" validate:"omitnil,min=1"`
	Polarity *models.PolarityClass `json:"type" validate:"omitnil,oneof=positive negative strong_negative"`
	Weight   *float64              `json:"weight" validate:"omitnil,gte=0.1,lte=2"`
}

// ValidateInput trims and lower-cases the input, then checks every rule.
// The returned input is the normalized form that should be persisted.
func ValidateInput(in models.KeywordInput) (models.KeywordInput, error) {
	in.Text = normalizeText(in.Text)
	in.Language = NormalizeLanguage(in.Language)

	if err := validate.Struct(in); err != nil {
		return in, toValidationError(err)
	}
	return in, nil
}

// ValidatePatch checks the fields a partial update sets.
func ValidatePatch(p models.KeywordPatch) (models.KeywordPatch, error) {
	if p.Empty() {
		return p, &ValidationError{Violations: []Violation{{
			Field: "patch", Rule: "required", Message: "at least one field must be updated",
		}}}
	}
	if p.Text != nil {
		text := normalizeText(*p.Text)
		p.Text = &text
	}

	rules := keywordPatchRules{Text: p.Text, Polarity: p.Polarity, Weight: p.Weight}
	if err := validate.Struct(rules); err != nil {
		return p, toValidationError(err)
	}
	return p, nil
}

func toValidationError(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("[KeywordValidation] %w", err)
	}

	verr := &ValidationError{Violations: make([]Violation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Violations = append(verr.Violations, Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: violationMessage(fe),
		})
	}
	return verr
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "keyword":
		return "keyword text must not be empty"
	case "type":
		return fmt.Sprintf("type must be one of %s, %s, %s",
			models.PolarityPositive, models.PolarityNegative, models.PolarityStrongNegative)
	case "weight":
		return fmt.Sprintf("weight must be between %.1f and %.1f", MinWeight, MaxWeight)
	case "language":
		return "language must not be empty"
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeLanguage trims and lower-cases a language tag.
func NormalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}
