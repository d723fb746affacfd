package model

// Category labels a slot or range. The set is open: documents may carry
// categories this package does not declare, and they are passed through as-is.
type Category string

const (
	// Available is the implicit baseline. It is never stored on a grid nor
	// encoded as a range.
	Available   Category = "available"
	Unavailable Category = "unavailable"
	Preferred   Category = "preferred"
)

// DefaultCategories are the non-baseline statuses the availability grid offers.
var DefaultCategories = []Category{Unavailable, Preferred}

func (c Category) String() string { return string(c) }

// IsBaseline reports whether c is the implicit default status.
func (c Category) IsBaseline() bool {
	return c == Available || c == ""
}

// Next returns the status a click on a grid cell moves to:
// available -> preferred -> unavailable -> available.
// Categories outside the default cycle reset to the baseline.
func (c Category) Next() Category {
	switch {
	case c.IsBaseline():
		return Preferred
	case c == Preferred:
		return Unavailable
	default:
		return Available
	}
}
