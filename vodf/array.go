package vodf

import (
	"fmt"
	"slices"
	"strconv"
)

// AxisEventCategory is the axis name used by ArrayFromSplit.
const AxisEventCategory = "event_category"

/***** Axis *****/

// Axis is a named, ordered list of bin edges. Bin i spans [Edges[i], Edges[i+1]).
type Axis struct {
	name  string
	edges []float64
}

// NewAxis builds an Axis. It fails with ErrInvalidAxis unless edges holds at least two
// strictly increasing values.
func NewAxis(name string, edges ...float64) (Axis, error) {
	if len(edges) < 2 {
		return Axis{}, fmt.Errorf("%w: axis %q has %d edges", ErrInvalidAxis, name, len(edges))
	}

	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return Axis{}, fmt.Errorf("%w: axis %q edge %d", ErrInvalidAxis, name, i)
		}
	}

	return Axis{name: name, edges: slices.Clone(edges)}, nil
}

func (a Axis) Name() string {
	return a.name
}

// NBins returns the number of bins.
func (a Axis) NBins() int {
	if len(a.edges) == 0 {
		return 0
	}

	return len(a.edges) - 1
}

// Edges returns a copy of the bin edges.
func (a Axis) Edges() []float64 {
	return slices.Clone(a.edges)
}

// Center returns the center of bin i.
func (a Axis) Center(i int) float64 {
	return (a.edges[i] + a.edges[i+1]) / 2
}

// Bin returns the index of the bin containing x, or false when x is off the axis.
func (a Axis) Bin(x float64) (int, bool) {
	if a.NBins() == 0 || x < a.edges[0] || x >= a.edges[len(a.edges)-1] {
		return 0, false
	}

	// first edge strictly greater than x closes the bin
	i, _ := slices.BinarySearchFunc(a.edges, x, func(edge, target float64) int {
		if edge <= target {
			return -1
		}

		return 1
	})

	return i - 1, true
}

/***** ObservationsArray *****/

// ArrayEntry is one observation of an ObservationsArray with its name.
type ArrayEntry struct {
	Name        string
	Observation Observation
}

// ObservationsArray lays observations out along one Axis, one observation per bin.
type ObservationsArray struct {
	axis    Axis
	entries []ArrayEntry
}

// CreateObservationsArray copies reference once per bin of axis. Each copy is named
// "<obs>_<axis>_<center>".
func CreateObservationsArray(reference Observation, axis Axis) (ObservationsArray, error) {
	if axis.NBins() == 0 {
		return ObservationsArray{}, ErrInvalidAxis
	}

	entries := make([]ArrayEntry, 0, axis.NBins())
	for i := range axis.NBins() {
		entries = append(entries, ArrayEntry{
			Name:        arrayEntryName(reference.ObsID, axis.Name(), axis.Center(i)),
			Observation: reference,
		})
	}

	return ObservationsArray{axis: axis, entries: entries}, nil
}

// ArrayFromSplit arranges the output of Split along the event category axis, one bin of
// width 1 centered on every category. Untagged observations cannot be placed on the
// axis and are rejected, as are observations sharing a category.
func ArrayFromSplit(observations Observations) (ObservationsArray, error) {
	if observations.Len() == 0 {
		return ObservationsArray{}, fmt.Errorf("%w: no observations", ErrInvalidAxis)
	}

	sorted := slices.Clone(observations)
	slices.SortStableFunc(sorted, func(a, b Observation) int { return a.Category.Compare(b.Category) })

	edges := make([]float64, 0, sorted.Len()+1)
	for i, o := range sorted {
		lo, hi, ok := o.Category.Band(DefaultBandHalfWidth)
		if !ok {
			return ObservationsArray{}, fmt.Errorf("%w: observation %d has no event category", ErrInvalidAxis, o.ObsID)
		}

		if i == 0 {
			edges = append(edges, lo)
		} else if lo < edges[len(edges)-1] {
			return ObservationsArray{}, fmt.Errorf("%w: event category %s is repeated", ErrInvalidAxis, o.Category)
		} else if lo > edges[len(edges)-1] {
			return ObservationsArray{}, fmt.Errorf("%w: event categories are not contiguous at %s", ErrInvalidAxis, o.Category)
		}

		edges = append(edges, hi)
	}

	axis, err := NewAxis(AxisEventCategory, edges...)
	if err != nil {
		return ObservationsArray{}, err
	}

	entries := make([]ArrayEntry, 0, sorted.Len())
	for i, o := range sorted {
		entries = append(entries, ArrayEntry{
			Name:        arrayEntryName(o.ObsID, axis.Name(), axis.Center(i)),
			Observation: o,
		})
	}

	return ObservationsArray{axis: axis, entries: entries}, nil
}

func arrayEntryName(obsID int64, axis string, center float64) string {
	return strconv.FormatInt(obsID, 10) + "_" + axis + "_" + strconv.FormatFloat(center, 'g', -1, 64)
}

// Axis returns the axis of the array.
func (a ObservationsArray) Axis() Axis {
	return a.axis
}

// Len returns the number of observations.
func (a ObservationsArray) Len() int {
	return len(a.entries)
}

// Names returns the entry names in bin order.
func (a ObservationsArray) Names() []string {
	names := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		names = append(names, e.Name)
	}

	return names
}

// Entries returns a copy of the entries in bin order.
func (a ObservationsArray) Entries() []ArrayEntry {
	return slices.Clone(a.entries)
}

// GetByCoord returns the observation whose bin contains x.
func (a ObservationsArray) GetByCoord(x float64) (ArrayEntry, bool) {
	i, ok := a.axis.Bin(x)
	if !ok {
		return ArrayEntry{}, false
	}

	return a.entries[i], true
}

// Observations returns the observations in bin order.
func (a ObservationsArray) Observations() Observations {
	result := make(Observations, 0, len(a.entries))
	for _, e := range a.entries {
		result = append(result, e.Observation)
	}

	return result
}
