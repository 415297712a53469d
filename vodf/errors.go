package vodf

import (
	"errors"
	"fmt"
	"strings"
)

var ErrAmbiguousResponse = errors.New("observation contains more than one response group")
var ErrIndexOutOfRange = errors.New("registry index out of range")
var ErrUnknownObservation = errors.New("unknown observation id")
var ErrInvalidComponent = errors.New("invalid response component")
var ErrMissingRequiredComponent = errors.New("missing required response component")
var ErrInvalidInterval = errors.New("interval start is after stop")
var ErrOverlappingBundles = errors.New("bundles with overlapping categories overlap in time")
var ErrComponentNotLoaded = errors.New("response component is not loaded")
var ErrNilComponentResolver = errors.New("nil component resolver supplied")
var ErrNilComponentIndex = errors.New("nil component index supplied")
var ErrInvalidAxis = errors.New("axis needs at least two strictly increasing edges")

// AmbiguousResponseError is returned when a single-bundle accessor is used on a registry
// that does not hold exactly one bundle.
type AmbiguousResponseError struct {
	Count int
}

func (e *AmbiguousResponseError) Error() string {
	return fmt.Sprintf("%s: registry holds %d bundles", ErrAmbiguousResponse.Error(), e.Count)
}

func (e *AmbiguousResponseError) Unwrap() error {
	return ErrAmbiguousResponse
}

// IndexOutOfRangeError is returned by positional registry access beyond its bounds.
type IndexOutOfRangeError struct {
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: index %d, length %d", ErrIndexOutOfRange.Error(), e.Index, e.Len)
}

func (e *IndexOutOfRangeError) Unwrap() error {
	return ErrIndexOutOfRange
}

// UnknownObservationError is returned when an observation id is absent from a ComponentIndex.
type UnknownObservationError struct {
	ObsID int64
}

func (e *UnknownObservationError) Error() string {
	return fmt.Sprintf("%s: %d", ErrUnknownObservation.Error(), e.ObsID)
}

func (e *UnknownObservationError) Unwrap() error {
	return ErrUnknownObservation
}

// InvalidComponentError is returned for a component name outside the recognized vocabulary.
type InvalidComponentError struct {
	Name string
}

func (e *InvalidComponentError) Error() string {
	return fmt.Sprintf("%s: %q (valid: %s)", ErrInvalidComponent.Error(), e.Name, strings.Join(componentKindNames(), ", "))
}

func (e *InvalidComponentError) Unwrap() error {
	return ErrInvalidComponent
}

// MissingRequiredComponentError lists every required component that the index does not
// provide for one observation.
type MissingRequiredComponentError struct {
	ObsID   int64
	Missing []ComponentKind
}

func (e *MissingRequiredComponentError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, kind := range e.Missing {
		names = append(names, kind.String())
	}

	return fmt.Sprintf("%s: observation %d lacks %s", ErrMissingRequiredComponent.Error(), e.ObsID, strings.Join(names, ", "))
}

func (e *MissingRequiredComponentError) Unwrap() error {
	return ErrMissingRequiredComponent
}
