package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vodfgo/vodf/vodf"
	"github.com/vodfgo/vodf/vodf/blobstore"
	"github.com/vodfgo/vodf/vodf/sqlengine"
)

const (
	firstObsID     int64 = 100001
	payloadBytes         = 256
	categoryJitter       = 0.3
	edgeMargin           = time.Millisecond
)

var epoch = time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

var hdus = map[vodf.ComponentKind]string{
	vodf.ComponentGTI:   "GTI",
	vodf.ComponentAEff:  "EFFECTIVE AREA",
	vodf.ComponentEDisp: "ENERGY DISPERSION",
	vodf.ComponentPSF:   "PSF",
	vodf.ComponentBkg:   "BACKGROUND",
}

var csvHeader = []string{"obs_id", "event_id", "time_ns", "event_type", "energy_tev", "ra_deg", "dec_deg"}

// Params controls the shape of a generated dataset.
type Params struct {
	Observations    int
	Bundles         int
	Categories      int
	EventsPerBundle int
	BundleDuration  time.Duration
	Seed            uint64
}

// DefaultParams returns a small dataset: 10 observations of 3 windows and 2 categories.
func DefaultParams() Params {
	return Params{
		Observations:    10,
		Bundles:         3,
		Categories:      2,
		EventsPerBundle: 50,
		BundleDuration:  10 * time.Minute,
		Seed:            1,
	}
}

// GeneratedObservation holds everything stored for one observation.
type GeneratedObservation struct {
	ObsID    int64
	Entries  []vodf.IndexEntry
	Events   []vodf.Event
	Header   map[string]string
	Payloads map[vodf.Location][]byte
}

// Dataset is a generated set of observations.
type Dataset []GeneratedObservation

// TotalEvents returns the number of events over all observations.
func (d Dataset) TotalEvents() int {
	n := 0
	for _, obs := range d {
		n += len(obs.Events)
	}

	return n
}

// BuildDataset generates a dataset from p. The same Seed yields the same dataset apart from
// the random blob keys.
func BuildDataset(p Params) Dataset {
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed))
	dataset := make(Dataset, 0, p.Observations)

	categories := []vodf.Category{vodf.NoCategory}
	if p.Categories > 0 {
		categories = make([]vodf.Category, 0, p.Categories)
		for c := range p.Categories {
			categories = append(categories, vodf.CategoryOf(c))
		}
	}

	for o := range p.Observations {
		obsID := firstObsID + int64(o)
		start := epoch.Add(time.Duration(o) * time.Duration(p.Bundles+1) * p.BundleDuration)

		obs := GeneratedObservation{
			ObsID: obsID,
			Header: map[string]string{
				"OBS_ID":   strconv.FormatInt(obsID, 10),
				"TELESCOP": "CTA",
				"INSTRUME": "LST",
				"OBJECT":   "Crab",
				"DEADC":    "0.95",
				"CREATOR":  "vodf-generate",
			},
			Payloads: make(map[vodf.Location][]byte),
		}

		for b := range p.Bundles {
			window := vodf.MustInterval(
				start.Add(time.Duration(b)*p.BundleDuration),
				start.Add(time.Duration(b+1)*p.BundleDuration),
			)

			for _, category := range categories {
				key := fmt.Sprintf("irf/%d/%s.fits", obsID, uuid.NewString())

				for _, kind := range vodf.ComponentKinds() {
					hdu, ok := hdus[kind]
					if !ok {
						continue
					}

					loc := vodf.Location{Key: key, HDU: hdu}
					obs.Entries = append(obs.Entries, vodf.IndexEntry{
						ObsID:     obsID,
						Component: kind.String(),
						Location:  loc,
						Validity:  window,
						Category:  category,
					})
					obs.Payloads[loc] = randomPayload(rng)
				}

				obs.Events = append(obs.Events, randomEvents(rng, window, category, p.EventsPerBundle)...)
			}
		}

		slices.SortStableFunc(obs.Events, func(a, b vodf.Event) int { return a.Time.Compare(b.Time) })
		for i := range obs.Events {
			obs.Events[i].ID = int64(i + 1)
		}

		dataset = append(dataset, obs)
	}

	return dataset
}

func randomPayload(rng *rand.Rand) []byte {
	payload := make([]byte, payloadBytes)
	for i := range payload {
		payload[i] = byte(rng.UintN(256))
	}

	return payload
}

// randomEvents places n events strictly inside window, away from its edges, with the category
// value jittered inside its band.
func randomEvents(rng *rand.Rand, window vodf.Interval, category vodf.Category, n int) []vodf.Event {
	span := window.Duration() - 2*edgeMargin
	tag, _ := category.Value()

	events := make([]vodf.Event, 0, n)
	for range n {
		offset := edgeMargin + time.Duration(rng.Int64N(int64(span/time.Millisecond)))*time.Millisecond

		events = append(events, vodf.Event{
			Time:     window.Start.Add(offset),
			Category: float64(tag) + (rng.Float64()*2-1)*categoryJitter,
			Energy:   0.05 + rng.ExpFloat64(),
			RA:       83.63 + rng.NormFloat64()*0.5,
			Dec:      22.01 + rng.NormFloat64()*0.5,
		})
	}

	return events
}

// Store writes the index entries, events, headers and component payloads of dataset.
func Store(ctx context.Context, engine sqlengine.Engine, store blobstore.Store, dataset Dataset) error {
	for _, obs := range dataset {
		if err := engine.PutIndexEntries(ctx, obs.Entries...); err != nil {
			return err
		}

		if err := engine.PutEvents(ctx, obs.ObsID, obs.Events...); err != nil {
			return err
		}

		if err := engine.PutHeader(ctx, obs.ObsID, obs.Header); err != nil {
			return err
		}

		for loc, payload := range obs.Payloads {
			if _, err := blobstore.Upload(ctx, store, loc, payload); err != nil {
				return err
			}
		}
	}

	return nil
}

func csvRecord(obsID int64, ev vodf.Event) []string {
	return []string{
		strconv.FormatInt(obsID, 10),
		strconv.FormatInt(ev.ID, 10),
		strconv.FormatInt(ev.Time.UnixNano(), 10),
		strconv.FormatFloat(ev.Category, 'f', -1, 64),
		strconv.FormatFloat(ev.Energy, 'f', -1, 64),
		strconv.FormatFloat(ev.RA, 'f', -1, 64),
		strconv.FormatFloat(ev.Dec, 'f', -1, 64),
	}
}
