package model

// SortOrder is the direction the view is sorted by name.
type SortOrder string

// Sort orders.
const (
	SortAscending  SortOrder = "ascending"
	SortDescending SortOrder = "descending"
)

// Toggle returns the opposite order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortDescending {
		return SortAscending
	}
	return SortDescending
}

// ViewFilter is the search, category and sort configuration of the displayed list.
type ViewFilter struct {
	SearchTerm     string
	FilterCategory string
	SortOrder      SortOrder
}

// DefaultViewFilter returns a filter that shows everything in ascending order.
func DefaultViewFilter() ViewFilter {
	return ViewFilter{SortOrder: SortAscending}
}
