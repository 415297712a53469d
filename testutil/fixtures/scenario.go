package fixtures

import (
	"time"

	"github.com/google/uuid"

	"github.com/vodfgo/vodf/vodf"
)

// ScenarioObsID is the observation id of the two-bundle scenario.
const ScenarioObsID int64 = 23523

// Epoch is time zero of every fixture.
var Epoch = time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)

// At returns Epoch plus seconds.
func At(seconds float64) time.Time {
	return Epoch.Add(time.Duration(seconds * float64(time.Second)))
}

// Window returns the interval [At(from), At(to)).
func Window(from, to float64) vodf.Interval {
	return vodf.MustInterval(At(from), At(to))
}

// BundleAt builds a bundle valid over [from, to) with unloaded aeff, edisp, psf and bkg.
func BundleAt(from, to float64, category vodf.Category) vodf.Bundle {
	return vodf.BuildBundle(
		Window(from, to),
		vodf.WithCategory(category),
		vodf.WithAEff(vodf.UnloadedComponent(vodf.ComponentAEff, vodf.Location{Key: "irf.fits", HDU: "EFFECTIVE AREA"})),
		vodf.WithEDisp(vodf.UnloadedComponent(vodf.ComponentEDisp, vodf.Location{Key: "irf.fits", HDU: "ENERGY DISPERSION"})),
		vodf.WithPSF(vodf.UnloadedComponent(vodf.ComponentPSF, vodf.Location{Key: "irf.fits", HDU: "PSF"})),
		vodf.WithBkg(vodf.UnloadedComponent(vodf.ComponentBkg, vodf.Location{Key: "irf.fits", HDU: "BACKGROUND"})),
	)
}

// TwoBundleRegistry holds [0,10) tagged 0 and [10,20) tagged 1.
func TwoBundleRegistry() *vodf.Registry {
	return vodf.NewRegistry(
		BundleAt(0, 10, vodf.CategoryOf(0)),
		BundleAt(10, 20, vodf.CategoryOf(1)),
	)
}

// ScenarioEvents holds events at t = 1, 2, 11, 12, 19 tagged 0, 0, 1, 1, 1.
func ScenarioEvents() vodf.EventList {
	return EventsAt(
		[]float64{1, 2, 11, 12, 19},
		[]float64{0, 0, 1, 1, 1},
	)
}

// EventsAt builds an event list with one event per time, numbering events from 1.
func EventsAt(times []float64, categories []float64) vodf.EventList {
	events := make([]vodf.Event, 0, len(times))
	for i, t := range times {
		events = append(events, vodf.Event{
			ID:       int64(i + 1),
			Time:     At(t),
			Category: categories[i],
			Energy:   1.0 + float64(i),
			RA:       83.63,
			Dec:      22.01,
		})
	}

	return vodf.NewEventList(ScenarioHeader(), events...)
}

// ScenarioHeader is the event-list header of the scenario observation.
func ScenarioHeader() map[string]string {
	return map[string]string{
		"OBS_ID":   "23523",
		"TELESCOP": "CTA",
		"INSTRUME": "LST",
		"OBJECT":   "Crab",
		"DEADC":    "0.95",
		"ORIGIN":   "fixtures",
	}
}

// ScenarioComposite is the two-bundle composite observation.
func ScenarioComposite() vodf.CompositeObservation {
	return vodf.NewCompositeObservation(
		ScenarioObsID,
		TwoBundleRegistry(),
		ScenarioEvents(),
		vodf.WithPointing(vodf.Pointing{Mode: vodf.PointingFixedICRS, RADeg: 83.63, DecDeg: 22.51}),
	)
}

// IndexEntries returns full-enclosure index entries for obsID over [from, to), stored under
// a fresh blob key, plus one entry for the event list.
func IndexEntries(obsID int64, from, to float64, category vodf.Category) []vodf.IndexEntry {
	key := BlobKey()
	hdus := map[vodf.ComponentKind]string{
		vodf.ComponentGTI:   "GTI",
		vodf.ComponentAEff:  "EFFECTIVE AREA",
		vodf.ComponentEDisp: "ENERGY DISPERSION",
		vodf.ComponentPSF:   "PSF",
		vodf.ComponentBkg:   "BACKGROUND",
	}

	entries := []vodf.IndexEntry{{
		ObsID:     obsID,
		Component: "events",
		Location:  vodf.Location{Key: key, HDU: "EVENTS"},
		Validity:  Window(from, to),
		Category:  category,
	}}

	for _, kind := range vodf.ComponentKinds() {
		hdu, ok := hdus[kind]
		if !ok {
			continue
		}

		entries = append(entries, vodf.IndexEntry{
			ObsID:     obsID,
			Component: kind.String(),
			Location:  vodf.Location{Key: key, HDU: hdu},
			Validity:  Window(from, to),
			Category:  category,
		})
	}

	return entries
}

// BlobKey returns a unique object key for a response file.
func BlobKey() string {
	return "irf/" + uuid.NewString() + ".fits"
}
