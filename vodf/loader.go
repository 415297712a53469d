package vodf

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"
)

var ErrUnknownPreset = errors.New("unknown component preset")
var ErrLookupFailed = errors.New("component index lookup failed")

const (
	// PresetFullEnclosure requires validity, effective area, energy dispersion, PSF and background.
	PresetFullEnclosure = "full-enclosure"

	// PresetPointLike requires validity, effective area and energy dispersion.
	PresetPointLike = "point-like"

	logMsgBundleLoaded   = "bundle loaded"
	logMsgRegistryLoaded = "registry loaded"
	logMsgLoadFailed     = "loading bundle failed"
	logAttrBundles       = "bundles"
	operationLoad        = "load"
)

// presets maps preset names to the fixed component sets they require.
var presets = map[string][]ComponentKind{
	PresetFullEnclosure: {ComponentGTI, ComponentAEff, ComponentEDisp, ComponentPSF, ComponentBkg},
	PresetPointLike:     {ComponentGTI, ComponentAEff, ComponentEDisp},
}

// PresetComponents returns the components required by a preset.
func PresetComponents(name string) ([]ComponentKind, error) {
	kinds, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}

	return slices.Clone(kinds), nil
}

/***** Requirement *****/

// Requirement names the components a bundle must provide: either an explicit set of
// component names or a preset. Names are validated when the requirement is used.
type Requirement struct {
	names  []string
	preset string
}

// RequireComponents requires an explicit set of component names.
func RequireComponents(names ...string) Requirement {
	return Requirement{names: slices.Clone(names)}
}

// RequirePreset requires the components of a named preset.
func RequirePreset(name string) Requirement {
	return Requirement{preset: name}
}

// Preset returns the preset name, empty for an explicit set.
func (r Requirement) Preset() string {
	return r.preset
}

// Kinds validates the requirement and returns its components, deduplicated in canonical order.
func (r Requirement) Kinds() ([]ComponentKind, error) {
	if r.preset != "" {
		return PresetComponents(r.preset)
	}

	kinds := make([]ComponentKind, 0, len(r.names))
	for _, name := range r.names {
		kind, err := ParseComponentKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}

	slices.SortFunc(kinds, func(a, b ComponentKind) int { return a.rank() - b.rank() })

	return slices.Compact(kinds), nil
}

/***** ComponentIndex *****/

// IndexEntry locates one stored response component of one observation.
//
// Entries sharing Validity, Category and PointLike form one bundle. Component names outside
// the recognized vocabulary (e.g. the event list itself) are ignored by the loader.
type IndexEntry struct {
	ObsID     int64
	Component string
	Location  Location
	Validity  Interval
	Category  Category
	PointLike bool
}

// ComponentIndex maps observation ids to the locations of their response components.
type ComponentIndex interface {
	// Lookup returns the entries of obsID in index order. It returns an error matching
	// ErrUnknownObservation when the id is absent.
	Lookup(ctx context.Context, obsID int64) ([]IndexEntry, error)
}

// MemoryIndex is an in-memory ComponentIndex. It is safe for concurrent use.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[int64][]IndexEntry
}

// NewMemoryIndex returns a MemoryIndex holding entries.
func NewMemoryIndex(entries ...IndexEntry) *MemoryIndex {
	idx := &MemoryIndex{entries: make(map[int64][]IndexEntry)}
	idx.Add(entries...)

	return idx
}

// Add appends entries to the index.
func (idx *MemoryIndex) Add(entries ...IndexEntry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, e := range entries {
		idx.entries[e.ObsID] = append(idx.entries[e.ObsID], e)
	}
}

// ObsIDs returns the indexed observation ids in ascending order.
func (idx *MemoryIndex) ObsIDs() []int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return slices.Sorted(maps.Keys(idx.entries))
}

// Lookup implements ComponentIndex.
func (idx *MemoryIndex) Lookup(_ context.Context, obsID int64) ([]IndexEntry, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entries, ok := idx.entries[obsID]
	if !ok {
		return nil, &UnknownObservationError{ObsID: obsID}
	}

	return slices.Clone(entries), nil
}

/***** Loading *****/

// LoadOption configures LoadBundle and LoadRegistry.
type LoadOption func(*loadConfig)

type loadConfig struct {
	resolver ComponentResolver
	observer observer
}

// WithEagerResolution resolves every component through resolver while loading.
// Without it, components are returned unloaded and only carry their Location.
func WithEagerResolution(resolver ComponentResolver) LoadOption {
	return func(c *loadConfig) { c.resolver = resolver }
}

// WithLoadLogger sets the contextual logger of the load operation.
func WithLoadLogger(logger ContextualLogger) LoadOption {
	return func(c *loadConfig) { c.observer.logger = logger }
}

// WithLoadMetrics sets the metrics collector of the load operation.
func WithLoadMetrics(collector MetricsCollector) LoadOption {
	return func(c *loadConfig) { c.observer.metrics = collector }
}

// WithLoadTracing sets the tracing collector of the load operation.
func WithLoadTracing(collector TracingCollector) LoadOption {
	return func(c *loadConfig) { c.observer.tracing = collector }
}

// LoadBundle builds the single bundle of obsID from index, checking that every component
// of req is present.
//
// It fails with *UnknownObservationError, *InvalidComponentError, or
// *MissingRequiredComponentError listing every missing component. When the index holds
// several bundles for obsID it fails with *AmbiguousResponseError; use LoadRegistry then.
func LoadBundle(ctx context.Context, index ComponentIndex, obsID int64, req Requirement, options ...LoadOption) (Bundle, error) {
	bundles, err := load(ctx, index, obsID, req, options...)
	if err != nil {
		return Bundle{}, err
	}

	if len(bundles) != 1 {
		return Bundle{}, &AmbiguousResponseError{Count: len(bundles)}
	}

	return bundles[0], nil
}

// LoadRegistry builds one bundle per distinct (validity, category, point-like) group that
// the index holds for obsID, in index order. Every group must satisfy req.
func LoadRegistry(ctx context.Context, index ComponentIndex, obsID int64, req Requirement, options ...LoadOption) (*Registry, error) {
	bundles, err := load(ctx, index, obsID, req, options...)
	if err != nil {
		return nil, err
	}

	return NewRegistry(bundles...), nil
}

func load(ctx context.Context, index ComponentIndex, obsID int64, req Requirement, options ...LoadOption) ([]Bundle, error) {
	cfg := loadConfig{}
	for _, option := range options {
		option(&cfg)
	}
	obs := cfg.observer

	ctx, span := obs.startSpan(ctx, SpanLoadBundle, map[string]string{LabelObsID: strconv.FormatInt(obsID, 10)})
	start := time.Now()

	bundles, err := loadBundles(ctx, index, obsID, req, cfg.resolver)
	duration := time.Since(start)

	if err != nil {
		obs.logError(ctx, logMsgLoadFailed, err, logAttrObsID, obsID)
		obs.incrementCounter(ctx, MetricLoadErrors, map[string]string{
			LabelOperation: operationLoad,
			LabelErrorType: loadErrorType(err),
		})
		obs.recordDuration(ctx, MetricLoadDuration, duration, map[string]string{LabelOperation: operationLoad, LabelStatus: StatusError})
		obs.finishSpan(span, StatusError, map[string]string{LabelErrorType: loadErrorType(err)})

		return nil, err
	}

	obs.recordDuration(ctx, MetricLoadDuration, duration, map[string]string{LabelOperation: operationLoad, LabelStatus: StatusSuccess})
	obs.info(ctx, logMsgBundleLoaded, logAttrObsID, obsID, logAttrBundles, len(bundles), logAttrDurationMS, toMilliseconds(duration))
	obs.finishSpan(span, StatusSuccess, map[string]string{logAttrBundles: strconv.Itoa(len(bundles))})

	return bundles, nil
}

// bundleKey groups index entries by instant, not by time.Time identity, so that equal
// windows carrying different Locations fall into one bundle.
type bundleKey struct {
	startNano int64
	stopNano  int64
	category  Category
	pointLike bool
}

func keyOf(e IndexEntry) bundleKey {
	return bundleKey{
		startNano: e.Validity.Start.UnixNano(),
		stopNano:  e.Validity.Stop.UnixNano(),
		category:  e.Category,
		pointLike: e.PointLike,
	}
}

func loadBundles(ctx context.Context, index ComponentIndex, obsID int64, req Requirement, resolver ComponentResolver) ([]Bundle, error) {
	if index == nil {
		return nil, ErrNilComponentIndex
	}

	required, err := req.Kinds()
	if err != nil {
		return nil, err
	}

	entries, err := index.Lookup(ctx, obsID)
	if err != nil {
		if errors.Is(err, ErrUnknownObservation) {
			return nil, err
		}

		return nil, errors.Join(ErrLookupFailed, err)
	}

	if len(entries) == 0 {
		return nil, &UnknownObservationError{ObsID: obsID}
	}

	keys := make([]bundleKey, 0)
	groups := make(map[bundleKey]map[ComponentKind]Location)
	validities := make(map[bundleKey]Interval)

	for _, e := range entries {
		kind, err := ParseComponentKind(e.Component)
		if err != nil {
			continue
		}

		key := keyOf(e)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
			groups[key] = make(map[ComponentKind]Location)
			validities[key] = e.Validity
		}

		if _, dup := groups[key][kind]; !dup {
			groups[key][kind] = e.Location
		}
	}

	if len(keys) == 0 {
		return nil, &MissingRequiredComponentError{ObsID: obsID, Missing: required}
	}

	bundles := make([]Bundle, 0, len(keys))

	for _, key := range keys {
		bundle, err := buildIndexedBundle(ctx, obsID, key, validities[key], groups[key], required, req.Preset() == PresetPointLike, resolver)
		if err != nil {
			return nil, err
		}

		bundles = append(bundles, bundle)
	}

	return bundles, nil
}

func buildIndexedBundle(
	ctx context.Context,
	obsID int64,
	key bundleKey,
	validity Interval,
	located map[ComponentKind]Location,
	required []ComponentKind,
	pointLikePreset bool,
	resolver ComponentResolver,
) (Bundle, error) {
	missing := make([]ComponentKind, 0)
	for _, kind := range required {
		if _, ok := located[kind]; !ok {
			missing = append(missing, kind)
		}
	}

	if len(missing) > 0 {
		return Bundle{}, &MissingRequiredComponentError{ObsID: obsID, Missing: missing}
	}

	options := []BundleOption{
		WithCategory(key.category),
		WithPointLike(key.pointLike || pointLikePreset),
	}

	for _, kind := range componentKinds {
		if loc, ok := located[kind]; ok {
			options = append(options, WithComponent(UnloadedComponent(kind, loc)))
		}
	}

	bundle := BuildBundle(validity, options...)

	if resolver == nil {
		return bundle, nil
	}

	return bundle.Load(ctx, resolver)
}

// loadErrorType extracts a label value for error metrics.
func loadErrorType(err error) string {
	switch {
	case errors.Is(err, ErrUnknownObservation):
		return "unknown_observation"
	case errors.Is(err, ErrInvalidComponent):
		return "invalid_component"
	case errors.Is(err, ErrUnknownPreset):
		return "unknown_preset"
	case errors.Is(err, ErrMissingRequiredComponent):
		return "missing_component"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	default:
		return "other"
	}
}
