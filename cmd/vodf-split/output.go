package main

import (
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/vodfgo/vodf/vodf"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type observationLine struct {
	ObsID      int64             `json:"obs_id"`
	Index      int               `json:"index"`
	GTIStart   time.Time         `json:"gti_start"`
	GTIStop    time.Time         `json:"gti_stop"`
	Category   *int              `json:"category"`
	PointLike  bool              `json:"point_like"`
	Events     int               `json:"events"`
	Components map[string]string `json:"components"`
	Loaded     bool              `json:"loaded"`
}

func toLine(index int, o vodf.Observation) observationLine {
	line := observationLine{
		ObsID:      o.ObsID,
		Index:      index,
		GTIStart:   o.GTI.Start.UTC(),
		GTIStop:    o.GTI.Stop.UTC(),
		PointLike:  o.PointLike,
		Events:     o.Events().Len(),
		Components: make(map[string]string),
		Loaded:     true,
	}

	if n, ok := o.Category.Value(); ok {
		line.Category = &n
	}

	for _, kind := range vodf.ComponentKinds() {
		c := o.Component(kind)
		if c == nil {
			continue
		}

		line.Components[kind.String()] = c.Ref.String()
		line.Loaded = line.Loaded && c.IsLoaded()
	}

	return line
}

// writeResults prints one JSON object per observation, in batch order.
func writeResults(w io.Writer, results []vodf.BatchResult) error {
	encoder := json.NewEncoder(w)

	for _, result := range results {
		for i, o := range result.Observations {
			if err := encoder.Encode(toLine(i, o)); err != nil {
				return err
			}
		}
	}

	return nil
}
