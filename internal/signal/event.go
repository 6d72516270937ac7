package signal

import (
	"time"

	"orbitwatch/internal/models"
)

// Event is a detector output ready to become a Signal.
type Event interface {
	Kind() models.SignalType
	Object() string
	Level() models.Severity
	// OccurredAt dates the occurrence and picks the dedup day.
	OccurredAt() time.Time
	Evidence() map[string]float64
	SourceRefs() []models.SourceRef
}

const (
	HealthTTL   = 7 * 24 * time.Hour
	ManeuverTTL = 14 * 24 * time.Hour
)

func ttlFor(t models.SignalType) time.Duration {
	if t.IsManeuver() {
		return ManeuverTTL
	}
	return HealthTTL
}
