package detector

import (
	"math"
	"time"

	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
)

type HealthDetector struct {
	Thresholds Thresholds
}

func NewHealthDetector(t Thresholds) *HealthDetector {
	return &HealthDetector{Thresholds: t}
}

// Detect checks staleness against freshest, the newest record of any provider,
// and trends against trailing, which is one provider only. Trend checks need at
// least two points; ok is false when they were skipped.
func (d *HealthDetector) Detect(now time.Time, freshest *models.OrbitalElement, trailing orbit.Series) (out []HealthAnomaly, ok bool) {
	th := d.Thresholds
	now = now.UTC()
	if freshest != nil && now.Sub(freshest.Epoch) > th.StaleAfter {
		age := now.Sub(freshest.Epoch)
		out = append(out, HealthAnomaly{
			Type:       models.SignalStale,
			Severity:   models.SeverityHigh,
			ObjectID:   freshest.ObjectID,
			Provider:   freshest.Provider,
			ObservedAt: now,
			Epoch:      freshest.Epoch,
			Metrics: map[string]float64{
				"age_hours":       age.Hours(),
				"threshold_hours": th.StaleAfter.Hours(),
			},
			Refs: []models.SourceRef{ref(*freshest)},
		})
	}

	if trailing.Len() < 2 {
		return out, false
	}
	baseline, _ := trailing.Oldest()
	current, _ := trailing.Latest()
	refs := []models.SourceRef{ref(baseline), ref(current)}

	dAlt := current.MeanAltitudeKm() - baseline.MeanAltitudeKm()
	altMetrics := map[string]float64{
		"delta_altitude_km":    dAlt,
		"altitude_km":          current.MeanAltitudeKm(),
		"baseline_altitude_km": baseline.MeanAltitudeKm(),
		"window_hours":         current.Epoch.Sub(baseline.Epoch).Hours(),
	}
	switch {
	case dAlt <= -th.AltitudeDropCriticalKm:
		out = append(out, d.anomaly(models.SignalAltitudeDrop, models.SeverityCritical, now, current, altMetrics, refs))
	case dAlt <= -th.AltitudeDropMediumKm:
		out = append(out, d.anomaly(models.SignalAltitudeDrop, models.SeverityMedium, now, current, altMetrics, refs))
	case dAlt >= th.AltitudeRiseMediumKm:
		out = append(out, d.anomaly(models.SignalAltitudeRise, models.SeverityMedium, now, current, altMetrics, refs))
	}

	dDrag := current.BStar - baseline.BStar
	if math.Abs(dDrag) > th.DragDelta {
		out = append(out, d.anomaly(models.SignalDragSpike, models.SeverityMedium, now, current, map[string]float64{
			"delta_bstar":    dDrag,
			"bstar":          current.BStar,
			"baseline_bstar": baseline.BStar,
		}, refs))
	}
	return out, true
}

func (d *HealthDetector) anomaly(t models.SignalType, sev models.Severity, now time.Time, current models.OrbitalElement, metrics map[string]float64, refs []models.SourceRef) HealthAnomaly {
	return HealthAnomaly{
		Type:       t,
		Severity:   sev,
		ObjectID:   current.ObjectID,
		Provider:   current.Provider,
		ObservedAt: now,
		Epoch:      current.Epoch,
		Metrics:    metrics,
		Refs:       refs,
	}
}

func ref(e models.OrbitalElement) models.SourceRef {
	return models.SourceRef{ObjectID: e.ObjectID, Provider: e.Provider, Epoch: e.Epoch}
}
