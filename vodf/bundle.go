package vodf

import (
	"context"
)

// Bundle groups the response components valid together over one Interval for one Category
// (an IRF group). Every component is optional: a bundle may carry a partial response.
//
// A Bundle should only be constructed with BuildBundle and is not modified afterward.
type Bundle struct {
	AEff      *Component
	EDisp     *Component
	PSF       *Component
	Bkg       *Component
	RadMax    *Component
	Validity  Interval
	Category  Category
	PointLike bool
}

// BundleOption configures a Bundle under construction.
type BundleOption func(*Bundle)

// WithAEff sets the effective area.
func WithAEff(c *Component) BundleOption {
	return func(b *Bundle) { b.AEff = c }
}

// WithEDisp sets the energy dispersion.
func WithEDisp(c *Component) BundleOption {
	return func(b *Bundle) { b.EDisp = c }
}

// WithPSF sets the point spread function.
func WithPSF(c *Component) BundleOption {
	return func(b *Bundle) { b.PSF = c }
}

// WithBkg sets the background rate model.
func WithBkg(c *Component) BundleOption {
	return func(b *Bundle) { b.Bkg = c }
}

// WithRadMax sets the RAD_MAX table. Only meaningful for point-like bundles;
// a fixed cut is a table with a single bin.
func WithRadMax(c *Component) BundleOption {
	return func(b *Bundle) { b.RadMax = c }
}

// WithCategory tags the bundle with an event category.
func WithCategory(c Category) BundleOption {
	return func(b *Bundle) { b.Category = c }
}

// WithPointLike marks the bundle as designed for point-like analysis.
func WithPointLike(pointLike bool) BundleOption {
	return func(b *Bundle) { b.PointLike = pointLike }
}

// WithComponent sets the field matching c.Kind. Components of kind gti are ignored,
// validity is always supplied as an Interval.
func WithComponent(c *Component) BundleOption {
	return func(b *Bundle) {
		if c == nil {
			return
		}

		if field := b.field(c.Kind); field != nil {
			*field = c
		}
	}
}

// BuildBundle is the factory method for Bundle.
func BuildBundle(validity Interval, options ...BundleOption) Bundle {
	b := Bundle{Validity: validity}

	for _, option := range options {
		option(&b)
	}

	return b
}

// Component returns the component of the given kind, nil when absent.
// ComponentGTI always yields nil: validity is held as an Interval.
func (b Bundle) Component(kind ComponentKind) *Component {
	if field := b.field(kind); field != nil {
		return *field
	}

	return nil
}

// Components returns the present components in canonical order.
func (b Bundle) Components() []*Component {
	present := make([]*Component, 0, len(componentKinds))

	for _, kind := range componentKinds {
		if c := b.Component(kind); c != nil {
			present = append(present, c)
		}
	}

	return present
}

// Load returns a copy of the bundle with every present component loaded.
func (b Bundle) Load(ctx context.Context, resolver ComponentResolver) (Bundle, error) {
	loaded := b

	for _, kind := range componentKinds {
		field := loaded.field(kind)
		if field == nil || *field == nil {
			continue
		}

		c, err := (*field).Load(ctx, resolver)
		if err != nil {
			return Bundle{}, err
		}

		*field = c
	}

	return loaded, nil
}

// IsLoaded reports whether every present component is loaded.
func (b Bundle) IsLoaded() bool {
	for _, c := range b.Components() {
		if !c.IsLoaded() {
			return false
		}
	}

	return true
}

func (b *Bundle) field(kind ComponentKind) **Component {
	switch kind {
	case ComponentAEff:
		return &b.AEff
	case ComponentEDisp:
		return &b.EDisp
	case ComponentPSF:
		return &b.PSF
	case ComponentBkg:
		return &b.Bkg
	case ComponentRadMax:
		return &b.RadMax
	default:
		return nil
	}
}
