package vodf

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ComponentKind names one piece of the instrument response.
type ComponentKind string

const (
	ComponentGTI    ComponentKind = "gti"
	ComponentAEff   ComponentKind = "aeff"
	ComponentEDisp  ComponentKind = "edisp"
	ComponentPSF    ComponentKind = "psf"
	ComponentBkg    ComponentKind = "bkg"
	ComponentRadMax ComponentKind = "rad_max"
)

// componentKinds is the recognized vocabulary, in canonical order.
var componentKinds = []ComponentKind{
	ComponentGTI,
	ComponentAEff,
	ComponentEDisp,
	ComponentPSF,
	ComponentBkg,
	ComponentRadMax,
}

// ComponentKinds returns the recognized component vocabulary in canonical order.
func ComponentKinds() []ComponentKind {
	return slices.Clone(componentKinds)
}

// ParseComponentKind validates name against the recognized vocabulary.
func ParseComponentKind(name string) (ComponentKind, error) {
	kind := ComponentKind(name)
	if !slices.Contains(componentKinds, kind) {
		return "", &InvalidComponentError{Name: name}
	}

	return kind, nil
}

func (k ComponentKind) String() string {
	return string(k)
}

// rank returns the position of k in the canonical order.
func (k ComponentKind) rank() int {
	return slices.Index(componentKinds, k)
}

func componentKindNames() []string {
	names := make([]string, 0, len(componentKinds))
	for _, kind := range componentKinds {
		names = append(names, kind.String())
	}

	return names
}

// Location points at the stored payload of one component, e.g. an HDU inside a file
// addressed by a blob store key.
type Location struct {
	Key string
	HDU string
}

func (l Location) String() string {
	if l.HDU == "" {
		return l.Key
	}

	return l.Key + "[" + l.HDU + "]"
}

// ComponentResolver fetches the payload stored at a Location.
type ComponentResolver interface {
	Resolve(ctx context.Context, loc Location) ([]byte, error)
}

// Component is one response component in one of two explicit states:
// Unloaded (only its Location is known) or Loaded (its payload is held).
type Component struct {
	Kind    ComponentKind
	Ref     Location
	payload []byte
	loaded  bool
}

// UnloadedComponent returns a component that only references its payload.
func UnloadedComponent(kind ComponentKind, ref Location) *Component {
	return &Component{Kind: kind, Ref: ref}
}

// LoadedComponent returns a component holding payload.
func LoadedComponent(kind ComponentKind, payload []byte) *Component {
	return &Component{Kind: kind, payload: slices.Clone(payload), loaded: true}
}

// IsLoaded reports whether the payload has been resolved.
func (c *Component) IsLoaded() bool {
	return c != nil && c.loaded
}

// Payload returns the resolved payload. ok is false while the component is unloaded.
func (c *Component) Payload() (payload []byte, ok bool) {
	if !c.IsLoaded() {
		return nil, false
	}

	return c.payload, true
}

// MustPayload returns the payload or ErrComponentNotLoaded.
func (c *Component) MustPayload() ([]byte, error) {
	payload, ok := c.Payload()
	if !ok {
		return nil, fmt.Errorf("%w: %s at %s", ErrComponentNotLoaded, c.Kind, c.Ref)
	}

	return payload, nil
}

// Load resolves the payload and returns a new, loaded component.
// The receiver is never modified. Loading an already loaded component returns it as is.
func (c *Component) Load(ctx context.Context, resolver ComponentResolver) (*Component, error) {
	if c.IsLoaded() {
		return c, nil
	}

	if resolver == nil {
		return nil, ErrNilComponentResolver
	}

	payload, err := resolver.Resolve(ctx, c.Ref)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("resolving %s at %s failed", c.Kind, c.Ref), err)
	}

	return &Component{Kind: c.Kind, Ref: c.Ref, payload: payload, loaded: true}, nil
}

// Equal reports whether two components have the same kind, reference, state and payload.
func (c *Component) Equal(other *Component) bool {
	if c == nil || other == nil {
		return c == other
	}

	return c.Kind == other.Kind &&
		c.Ref == other.Ref &&
		c.loaded == other.loaded &&
		slices.Equal(c.payload, other.payload)
}
