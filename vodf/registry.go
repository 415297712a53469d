package vodf

import (
	"fmt"
	"iter"
	"slices"
	"time"
)

// Registry is an ordered collection of Bundles (IRF groups).
//
// Insertion order is the addressable order; nothing is reordered or deduplicated.
// Correct time lookup requires that bundles with overlapping categories do not overlap
// in time. This is not enforced: Validate reports violations on request.
//
// A Registry is not safe for concurrent mutation.
type Registry struct {
	bundles []Bundle
}

// NewRegistry returns a Registry holding the given bundles in order.
func NewRegistry(bundles ...Bundle) *Registry {
	return &Registry{bundles: slices.Clone(bundles)}
}

// Len returns the number of bundles.
func (r *Registry) Len() int {
	return len(r.bundles)
}

// Get returns the bundle at index.
func (r *Registry) Get(index int) (Bundle, error) {
	if err := r.checkIndex(index, len(r.bundles)); err != nil {
		return Bundle{}, err
	}

	return r.bundles[index], nil
}

// Set replaces the bundle at index.
func (r *Registry) Set(index int, bundle Bundle) error {
	if err := r.checkIndex(index, len(r.bundles)); err != nil {
		return err
	}

	r.bundles[index] = bundle

	return nil
}

// Delete removes the bundle at index, shifting later bundles down.
func (r *Registry) Delete(index int) error {
	if err := r.checkIndex(index, len(r.bundles)); err != nil {
		return err
	}

	r.bundles = slices.Delete(r.bundles, index, index+1)

	return nil
}

// Insert places bundle at index, shifting later bundles up. index == Len appends.
func (r *Registry) Insert(index int, bundle Bundle) error {
	if err := r.checkIndex(index, len(r.bundles)+1); err != nil {
		return err
	}

	r.bundles = slices.Insert(r.bundles, index, bundle)

	return nil
}

// Append adds bundles at the end.
func (r *Registry) Append(bundles ...Bundle) {
	r.bundles = append(r.bundles, bundles...)
}

// Slice returns a new Registry with the bundles in [from, to).
func (r *Registry) Slice(from, to int) (*Registry, error) {
	if from < 0 || to > len(r.bundles) || from > to {
		return nil, &IndexOutOfRangeError{Index: from, Len: len(r.bundles)}
	}

	return NewRegistry(r.bundles[from:to]...), nil
}

// All iterates over index and bundle in registry order.
func (r *Registry) All() iter.Seq2[int, Bundle] {
	return func(yield func(int, Bundle) bool) {
		for i, b := range r.bundles {
			if !yield(i, b) {
				return
			}
		}
	}
}

// Bundles returns a copy of the bundles in registry order.
func (r *Registry) Bundles() []Bundle {
	return slices.Clone(r.bundles)
}

// TimeRanges lists the validity interval of every bundle in registry order.
func (r *Registry) TimeRanges() []Interval {
	ranges := make([]Interval, 0, len(r.bundles))
	for _, b := range r.bundles {
		ranges = append(ranges, b.Validity)
	}

	return ranges
}

// EventCategories returns the distinct categories present, NoCategory first, then ascending.
func (r *Registry) EventCategories() []Category {
	categories := make([]Category, 0, len(r.bundles))
	for _, b := range r.bundles {
		categories = append(categories, b.Category)
	}

	slices.SortFunc(categories, Category.Compare)
	categories = slices.Compact(categories)

	return slices.Clip(categories)
}

// FindAt returns the first bundle whose validity strictly contains t.
//
// The test is open at both ends: a time equal to a start or stop boundary matches no bundle,
// even when two adjacent bundles share that boundary. ok is false when nothing matches.
func (r *Registry) FindAt(t time.Time) (Bundle, bool) {
	for _, b := range r.bundles {
		if b.Validity.ContainsOpen(t) {
			return b, true
		}
	}

	return Bundle{}, false
}

// Validate reports the first pair of bundles that share a category and overlap in time.
// Bundles without a category share every category.
func (r *Registry) Validate() error {
	for i := range r.bundles {
		for j := i + 1; j < len(r.bundles); j++ {
			a, b := r.bundles[i], r.bundles[j]

			sharesCategory := !a.Category.IsSet() || !b.Category.IsSet() || a.Category == b.Category
			if sharesCategory && a.Validity.Overlaps(b.Validity) {
				return fmt.Errorf("%w: bundle %d %s and bundle %d %s", ErrOverlappingBundles, i, a.Validity, j, b.Validity)
			}
		}
	}

	return nil
}

func (r *Registry) checkIndex(index, bound int) error {
	if index < 0 || index >= bound {
		return &IndexOutOfRangeError{Index: index, Len: len(r.bundles)}
	}

	return nil
}
