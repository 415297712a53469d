package vodf

// Observation is a time- and category-homogeneous observation: one set of response
// components, the full shared event list and the filter selecting its events.
//
// Events are not copied when the observation is built; Events applies the filter on demand.
type Observation struct {
	ObsID     int64
	AEff      *Component
	EDisp     *Component
	PSF       *Component
	Bkg       *Component
	RadMax    *Component
	GTI       Interval
	Category  Category
	PointLike bool
	Pointing  Pointing
	Location  EarthLocation
	Meta      ObservationMeta
	Filter    ObservationFilter

	events EventList
}

// AllEvents returns the full, unfiltered event list shared with the composite observation.
func (o Observation) AllEvents() EventList {
	return o.events
}

// Events returns the events selected by the observation's filter.
func (o Observation) Events() EventList {
	return o.Filter.FilterEvents(o.events)
}

// Component returns the component of the given kind, nil when absent.
func (o Observation) Component(kind ComponentKind) *Component {
	switch kind {
	case ComponentAEff:
		return o.AEff
	case ComponentEDisp:
		return o.EDisp
	case ComponentPSF:
		return o.PSF
	case ComponentBkg:
		return o.Bkg
	case ComponentRadMax:
		return o.RadMax
	default:
		return nil
	}
}

// Observations is an ordered collection of Observation.
type Observations []Observation

// Len returns the number of observations.
func (obs Observations) Len() int {
	return len(obs)
}

// IDs returns the observation ids in order.
func (obs Observations) IDs() []int64 {
	ids := make([]int64, 0, len(obs))
	for _, o := range obs {
		ids = append(ids, o.ObsID)
	}

	return ids
}

// TotalEvents sums the number of selected events over all observations.
func (obs Observations) TotalEvents() int {
	total := 0
	for _, o := range obs {
		total += o.Events().Len()
	}

	return total
}
