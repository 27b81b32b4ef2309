// Package validate checks user input against the item business rules.
// All functions are pure: they never mutate their arguments.
package validate

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vyrodovalexey/itemdesk/internal/model"
)

// MinSearchLength is the minimum number of characters of a trimmed search term.
const MinSearchLength = 2

// Validation errors.
var (
	ErrSearchTooShort    = errors.New("search must contain at least 2 characters")
	ErrInvalidIdentifier = errors.New("invalid item ID")
)

// Messages stored in ValidationErrors for required form fields.
var requiredMessages = map[model.Field]string{
	model.FieldName:        "name is required",
	model.FieldCategory:    "category is required",
	model.FieldDescription: "description is required",
}

// Form checks that every form field is non-empty after trimming.
// The returned map is empty when the form is valid.
func Form(draft model.FormState) model.ValidationErrors {
	errs := make(model.ValidationErrors)

	for _, field := range model.FormFields {
		value, _ := draft.Get(field)
		if strings.TrimSpace(value) == "" {
			errs[field] = requiredMessages[field]
		}
	}

	return errs
}

// SearchTerm fails when the trimmed term is shorter than MinSearchLength.
// The empty string is not special-cased; callers decide whether to check it.
func SearchTerm(term string) error {
	if utf8.RuneCountInString(strings.TrimSpace(term)) < MinSearchLength {
		return ErrSearchTooShort
	}
	return nil
}

// decimalNumber matches plain decimal notation with an optional exponent.
// Hex floats and the Inf/NaN spellings accepted by strconv do not match.
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Identifier fails when id is empty or not a finite decimal number.
func Identifier(id string) error {
	trimmed := strings.TrimSpace(id)
	if !decimalNumber.MatchString(trimmed) {
		return ErrInvalidIdentifier
	}

	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return ErrInvalidIdentifier
	}

	return nil
}
