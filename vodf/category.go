package vodf

import (
	"strconv"
)

// DefaultBandHalfWidth is the half width of the numeric band that selects events of one category.
const DefaultBandHalfWidth = 0.5

// Category is an optional integer event category tag (e.g. a reconstruction quality class).
// The zero value is NoCategory.
type Category struct {
	value int
	set   bool
}

// NoCategory marks a bundle that is not restricted to an event category.
var NoCategory = Category{}

// CategoryOf returns the Category tagged n.
func CategoryOf(n int) Category {
	return Category{value: n, set: true}
}

// Value returns the tag and whether one is set.
func (c Category) Value() (int, bool) {
	return c.value, c.set
}

// IsSet reports whether the category carries a tag.
func (c Category) IsSet() bool {
	return c.set
}

// Band returns the half-open numeric band [n-halfWidth, n+halfWidth) around the tag.
// It returns ok == false for NoCategory.
func (c Category) Band(halfWidth float64) (lo, hi float64, ok bool) {
	if !c.set {
		return 0, 0, false
	}

	return float64(c.value) - halfWidth, float64(c.value) + halfWidth, true
}

// Compare orders NoCategory before every tagged category, tagged ones by value.
func (c Category) Compare(other Category) int {
	switch {
	case !c.set && !other.set:
		return 0
	case !c.set:
		return -1
	case !other.set:
		return 1
	case c.value < other.value:
		return -1
	case c.value > other.value:
		return 1
	default:
		return 0
	}
}

func (c Category) String() string {
	if !c.set {
		return "none"
	}

	return strconv.Itoa(c.value)
}
