// Package orbit holds the element-set arithmetic shared by the source adapters
// and the detectors: derived geometry, TLE line checks and single-provider series.
package orbit

import "math"

const (
	// EarthMuKm3S2 is the WGS-84 gravitational parameter.
	EarthMuKm3S2 = 398600.4418
	// EarthRadiusKm is the WGS-84 equatorial radius.
	EarthRadiusKm = 6378.137

	secondsPerDay = 86400.0
	minutesPerDay = 1440.0
)

// Geometry is the shape of an orbit derived from mean motion and eccentricity.
type Geometry struct {
	ApoapsisKm    float64
	PeriapsisKm   float64
	PeriodMinutes float64
}

// DeriveGeometry applies Kepler's third law to mean motion (rev/day).
// Altitudes are above the equatorial radius. ok is false for non-physical input.
func DeriveGeometry(meanMotion, eccentricity float64) (Geometry, bool) {
	if meanMotion <= 0 || eccentricity < 0 || eccentricity >= 1 {
		return Geometry{}, false
	}
	if math.IsNaN(meanMotion) || math.IsInf(meanMotion, 0) || math.IsNaN(eccentricity) {
		return Geometry{}, false
	}
	n := meanMotion * 2 * math.Pi / secondsPerDay
	a := math.Cbrt(EarthMuKm3S2 / (n * n))
	return Geometry{
		ApoapsisKm:    a*(1+eccentricity) - EarthRadiusKm,
		PeriapsisKm:   a*(1-eccentricity) - EarthRadiusKm,
		PeriodMinutes: minutesPerDay / meanMotion,
	}, true
}
