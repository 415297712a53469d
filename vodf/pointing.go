package vodf

// PointingMode tells how the telescope was pointed.
type PointingMode string

const (
	PointingFixedICRS  PointingMode = "POINTING"
	PointingFixedAltAz PointingMode = "DRIFT"
)

// Pointing describes where the telescope looked during an observation.
// It is carried through unchanged; nothing in this package transforms coordinates.
type Pointing struct {
	Mode   PointingMode
	RADeg  float64
	DecDeg float64
	AltDeg float64
	AzDeg  float64
}

// EarthLocation is the geodetic position of the observatory.
type EarthLocation struct {
	LonDeg  float64
	LatDeg  float64
	HeightM float64
}
