package detector

import (
	"time"

	"orbitwatch/internal/models"
)

// HealthAnomaly is one health finding for one object. ObservedAt is the
// detection time; health conditions are dated when they were seen.
type HealthAnomaly struct {
	Type       models.SignalType
	Severity   models.Severity
	ObjectID   string
	Provider   models.Provider
	ObservedAt time.Time
	Epoch      time.Time
	Metrics    map[string]float64
	Refs       []models.SourceRef
}

func (a HealthAnomaly) Kind() models.SignalType        { return a.Type }
func (a HealthAnomaly) Object() string                 { return a.ObjectID }
func (a HealthAnomaly) Level() models.Severity         { return a.Severity }
func (a HealthAnomaly) OccurredAt() time.Time          { return a.ObservedAt }
func (a HealthAnomaly) Evidence() map[string]float64   { return a.Metrics }
func (a HealthAnomaly) SourceRefs() []models.SourceRef { return a.Refs }

// ManeuverEvent is a change in orbit dated at the later record of the
// differenced pair.
type ManeuverEvent struct {
	Type          models.SignalType
	Severity      models.Severity
	ObjectID      string
	Provider      models.Provider
	Epoch         time.Time
	PreviousEpoch time.Time

	DeltaMeanMotion     float64
	DeltaAltitudeKm     float64
	AltitudeKm          float64
	DeltaInclinationDeg float64
	InclinationDeg      float64
	// Score is |d-mean|/sd of the flagged difference.
	Score float64
}

func (e ManeuverEvent) Kind() models.SignalType { return e.Type }
func (e ManeuverEvent) Object() string          { return e.ObjectID }
func (e ManeuverEvent) Level() models.Severity  { return e.Severity }
func (e ManeuverEvent) OccurredAt() time.Time   { return e.Epoch }

func (e ManeuverEvent) Evidence() map[string]float64 {
	return map[string]float64{
		"delta_mean_motion":     e.DeltaMeanMotion,
		"delta_altitude_km":     e.DeltaAltitudeKm,
		"altitude_km":           e.AltitudeKm,
		"delta_inclination_deg": e.DeltaInclinationDeg,
		"inclination_deg":       e.InclinationDeg,
		"sigma_score":           e.Score,
		"previous_epoch_unix":   float64(e.PreviousEpoch.Unix()),
	}
}

func (e ManeuverEvent) SourceRefs() []models.SourceRef {
	return []models.SourceRef{
		{ObjectID: e.ObjectID, Provider: e.Provider, Epoch: e.PreviousEpoch},
		{ObjectID: e.ObjectID, Provider: e.Provider, Epoch: e.Epoch},
	}
}
