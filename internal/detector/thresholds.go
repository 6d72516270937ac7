// Package detector derives health anomalies and maneuvers from single-provider
// element history. Detectors are pure: they read only their arguments, so a
// repeated run reproduces the same events and signal dedup absorbs them.
package detector

import (
	"time"

	"orbitwatch/internal/config"
)

// Provider element fitting jitters inclination by roughly 0.003-0.01 deg and
// altitude by well under a kilometre over a week. Every threshold below sits
// above that floor.
const (
	DefaultStaleAfter = 14 * 24 * time.Hour

	// Altitude deltas compare the newest record with the oldest in the window.
	// Boundaries are inclusive: exactly -5 km is a medium drop.
	DefaultAltitudeDropMediumKm   = 5.0
	DefaultAltitudeDropCriticalKm = 15.0
	DefaultAltitudeRiseMediumKm   = 5.0

	DefaultDragDelta = 0.001

	DefaultManeuverSigma     = 2.0
	DefaultManeuverMinPoints = 10
	// DefaultManeuverDebounce is how many difference points after a flag are ignored.
	DefaultManeuverDebounce = 5
	// Older outliers were reported by earlier runs.
	DefaultManeuverReportWindow = 7 * 24 * time.Hour

	DefaultPlaneChangeFloorDeg = 0.02
	// A plane change this close to a flagged mean-motion outlier is one compound burn.
	DefaultCompoundWindow = 24 * time.Hour

	DefaultManeuverHighAltitudeKm = 10.0
	DefaultPlaneChangeHighDeg     = 0.1
)

type Thresholds struct {
	StaleAfter time.Duration

	AltitudeDropMediumKm   float64
	AltitudeDropCriticalKm float64
	AltitudeRiseMediumKm   float64
	DragDelta              float64

	ManeuverSigma          float64
	ManeuverMinPoints      int
	ManeuverDebounce       int
	ManeuverReportWindow   time.Duration
	PlaneChangeFloorDeg    float64
	CompoundWindow         time.Duration
	ManeuverHighAltitudeKm float64
	PlaneChangeHighDeg     float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		StaleAfter:             DefaultStaleAfter,
		AltitudeDropMediumKm:   DefaultAltitudeDropMediumKm,
		AltitudeDropCriticalKm: DefaultAltitudeDropCriticalKm,
		AltitudeRiseMediumKm:   DefaultAltitudeRiseMediumKm,
		DragDelta:              DefaultDragDelta,
		ManeuverSigma:          DefaultManeuverSigma,
		ManeuverMinPoints:      DefaultManeuverMinPoints,
		ManeuverDebounce:       DefaultManeuverDebounce,
		ManeuverReportWindow:   DefaultManeuverReportWindow,
		PlaneChangeFloorDeg:    DefaultPlaneChangeFloorDeg,
		CompoundWindow:         DefaultCompoundWindow,
		ManeuverHighAltitudeKm: DefaultManeuverHighAltitudeKm,
		PlaneChangeHighDeg:     DefaultPlaneChangeHighDeg,
	}
}

// FromConfig overlays non-zero config values on the defaults.
func FromConfig(cfg config.ThresholdsConfig) Thresholds {
	t := DefaultThresholds()
	if cfg.StaleAfter > 0 {
		t.StaleAfter = cfg.StaleAfter
	}
	if cfg.AltitudeDropMediumKm > 0 {
		t.AltitudeDropMediumKm = cfg.AltitudeDropMediumKm
	}
	if cfg.AltitudeDropCriticalKm > 0 {
		t.AltitudeDropCriticalKm = cfg.AltitudeDropCriticalKm
	}
	if cfg.AltitudeRiseMediumKm > 0 {
		t.AltitudeRiseMediumKm = cfg.AltitudeRiseMediumKm
	}
	if cfg.DragDelta > 0 {
		t.DragDelta = cfg.DragDelta
	}
	if cfg.ManeuverSigma > 0 {
		t.ManeuverSigma = cfg.ManeuverSigma
	}
	if cfg.ManeuverMinPoints > 0 {
		t.ManeuverMinPoints = cfg.ManeuverMinPoints
	}
	if cfg.ManeuverDebounce > 0 {
		t.ManeuverDebounce = cfg.ManeuverDebounce
	}
	if cfg.ManeuverReportWindow > 0 {
		t.ManeuverReportWindow = cfg.ManeuverReportWindow
	}
	if cfg.PlaneChangeFloorDeg > 0 {
		t.PlaneChangeFloorDeg = cfg.PlaneChangeFloorDeg
	}
	if cfg.CompoundWindow > 0 {
		t.CompoundWindow = cfg.CompoundWindow
	}
	if cfg.ManeuverHighAltitudeKm > 0 {
		t.ManeuverHighAltitudeKm = cfg.ManeuverHighAltitudeKm
	}
	if cfg.PlaneChangeHighDeg > 0 {
		t.PlaneChangeHighDeg = cfg.PlaneChangeHighDeg
	}
	return t
}
