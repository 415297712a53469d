package vodf

import (
	"strconv"
	"strings"
)

const (
	headerObsID      = "OBS_ID"
	headerTelescope  = "TELESCOP"
	headerInstrument = "INSTRUME"
	headerObject     = "OBJECT"
	headerCreator    = "CREATOR"
	headerDeadC      = "DEADC"
)

// ObservationMeta holds the observation-level metadata carried by the event-list header.
type ObservationMeta struct {
	ObsID            int64
	Telescope        string
	Instrument       string
	Object           string
	Creator          string
	LiveTimeFraction float64
	Optional         map[string]string
}

// MetaFromHeader derives ObservationMeta from header keywords.
// Keywords are matched case-insensitively; unparsable numbers are left at zero and
// unknown keywords end up in Optional.
func MetaFromHeader(header map[string]string) ObservationMeta {
	meta := ObservationMeta{LiveTimeFraction: 1}

	for rawKey, rawVal := range header {
		val := strings.TrimSpace(rawVal)

		switch strings.ToUpper(strings.TrimSpace(rawKey)) {
		case headerObsID:
			if id, err := strconv.ParseInt(val, 10, 64); err == nil {
				meta.ObsID = id
			}
		case headerTelescope:
			meta.Telescope = val
		case headerInstrument:
			meta.Instrument = val
		case headerObject:
			meta.Object = val
		case headerCreator:
			meta.Creator = val
		case headerDeadC:
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				meta.LiveTimeFraction = f
			}
		default:
			if meta.Optional == nil {
				meta.Optional = make(map[string]string)
			}
			meta.Optional[rawKey] = rawVal
		}
	}

	return meta
}
