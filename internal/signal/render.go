package signal

import (
	"fmt"
	"math"
	"strings"

	"orbitwatch/internal/models"
)

func displayName(names map[string]string, objectID string) string {
	if n := strings.TrimSpace(names[objectID]); n != "" {
		return fmt.Sprintf("%s (%s)", n, objectID)
	}
	return objectID
}

func render(ev Event, name string) (title, description string) {
	m := ev.Evidence()
	switch ev.Kind() {
	case models.SignalStale:
		title = fmt.Sprintf("%s: no fresh elements", name)
		description = fmt.Sprintf("Newest element set is %.1f days old.", m["age_hours"]/24)
	case models.SignalAltitudeDrop:
		title = fmt.Sprintf("%s: altitude dropped %.1f km", name, math.Abs(m["delta_altitude_km"]))
		description = fmt.Sprintf("Mean altitude fell from %.1f km to %.1f km over %.0f hours.",
			m["baseline_altitude_km"], m["altitude_km"], m["window_hours"])
	case models.SignalAltitudeRise:
		title = fmt.Sprintf("%s: altitude rose %.1f km", name, m["delta_altitude_km"])
		description = fmt.Sprintf("Mean altitude rose from %.1f km to %.1f km over %.0f hours; possible maneuver.",
			m["baseline_altitude_km"], m["altitude_km"], m["window_hours"])
	case models.SignalDragSpike:
		title = fmt.Sprintf("%s: drag term changed", name)
		description = fmt.Sprintf("B* moved from %.6f to %.6f.", m["baseline_bstar"], m["bstar"])
	case models.SignalOrbitRaise:
		title = fmt.Sprintf("%s: orbit raised %.1f km", name, math.Abs(m["delta_altitude_km"]))
		description = fmt.Sprintf("Mean motion changed by %+.5f rev/day; altitude now %.1f km.",
			m["delta_mean_motion"], m["altitude_km"])
	case models.SignalOrbitLower:
		title = fmt.Sprintf("%s: orbit lowered %.1f km", name, math.Abs(m["delta_altitude_km"]))
		description = fmt.Sprintf("Mean motion changed by %+.5f rev/day; altitude now %.1f km.",
			m["delta_mean_motion"], m["altitude_km"])
	case models.SignalPlaneChange:
		title = fmt.Sprintf("%s: plane change %.3f°", name, math.Abs(m["delta_inclination_deg"]))
		description = fmt.Sprintf("Inclination changed by %+.3f° to %.3f°.",
			m["delta_inclination_deg"], m["inclination_deg"])
	default:
		title = fmt.Sprintf("%s: %s", name, ev.Kind())
	}
	return title, description
}
