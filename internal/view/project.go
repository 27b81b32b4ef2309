// Package view derives the displayed list from the local collection.
package view

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/vyrodovalexey/itemdesk/internal/model"
)

// DefaultLocale is the collation locale used by Project.
var DefaultLocale = language.English

// Projector filters and sorts items for display using a fixed collation locale.
type Projector struct {
	locale language.Tag
}

// NewProjector creates a Projector that sorts names according to locale.
func NewProjector(locale language.Tag) *Projector {
	return &Projector{locale: locale}
}

// Project returns the items matching filter, sorted by name.
// The input slice is never modified.
func (p *Projector) Project(items []model.Item, filter model.ViewFilter) []model.Item {
	search := strings.ToLower(strings.TrimSpace(filter.SearchTerm))
	category := strings.TrimSpace(filter.FilterCategory)

	out := make([]model.Item, 0, len(items))
	for _, item := range items {
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		if category != "" && !strings.EqualFold(item.Category, category) {
			continue
		}
		out = append(out, item)
	}

	// A Collator keeps internal buffers and must not be shared between goroutines.
	c := collate.New(p.locale)
	descending := filter.SortOrder == model.SortDescending
	slices.SortStableFunc(out, func(a, b model.Item) int {
		if descending {
			return c.CompareString(b.Name, a.Name)
		}
		return c.CompareString(a.Name, b.Name)
	})

	return out
}

// Project filters and sorts items with the DefaultLocale collation.
func Project(items []model.Item, filter model.ViewFilter) []model.Item {
	return NewProjector(DefaultLocale).Project(items, filter)
}
