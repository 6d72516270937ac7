package detector

import (
	"math"
	"time"

	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
)

type ManeuverDetector struct {
	Thresholds Thresholds
}

func NewManeuverDetector(t Thresholds) *ManeuverDetector {
	return &ManeuverDetector{Thresholds: t}
}

// Detect flags outliers in the first differences of mean motion and
// inclination. ok is false when the series is too short to judge.
func (d *ManeuverDetector) Detect(now time.Time, trailing orbit.Series) (out []ManeuverEvent, ok bool) {
	th := d.Thresholds
	if trailing.Len() < th.ManeuverMinPoints || trailing.Len() < 2 {
		return nil, false
	}
	now = now.UTC()
	points := trailing.Points()
	motion := make([]float64, len(points))
	incl := make([]float64, len(points))
	for i, p := range points {
		motion[i] = p.MeanMotion
		incl[i] = p.InclinationDeg
	}

	dMotion := firstDifferences(motion)
	motionFlags := flagOutliers(dMotion, th.ManeuverSigma, th.ManeuverDebounce, nil)
	mMean, mSD := meanStdDev(dMotion)
	for _, i := range motionFlags {
		ev := d.event(points[i], points[i+1], mMean, mSD, dMotion[i])
		if dMotion[i] > 0 {
			ev.Type = models.SignalOrbitLower
		} else {
			ev.Type = models.SignalOrbitRaise
		}
		ev.Severity = models.SeverityMedium
		if math.Abs(ev.DeltaAltitudeKm) >= th.ManeuverHighAltitudeKm {
			ev.Severity = models.SeverityHigh
		}
		if d.recent(now, ev.Epoch) {
			out = append(out, ev)
		}
	}

	dIncl := firstDifferences(incl)
	floor := func(v float64) bool { return math.Abs(v) > th.PlaneChangeFloorDeg }
	iMean, iSD := meanStdDev(dIncl)
	for _, i := range flagOutliers(dIncl, th.ManeuverSigma, th.ManeuverDebounce, floor) {
		epoch := points[i+1].Epoch
		if !d.recent(now, epoch) || d.compound(epoch, points, motionFlags) {
			continue
		}
		ev := d.event(points[i], points[i+1], iMean, iSD, dIncl[i])
		ev.Type = models.SignalPlaneChange
		ev.Severity = models.SeverityMedium
		if math.Abs(ev.DeltaInclinationDeg) >= th.PlaneChangeHighDeg {
			ev.Severity = models.SeverityHigh
		}
		out = append(out, ev)
	}
	return out, true
}

func (d *ManeuverDetector) event(prev, cur models.OrbitalElement, mean, sd, diff float64) ManeuverEvent {
	score := 0.0
	if sd > 0 {
		score = math.Abs(diff-mean) / sd
	}
	return ManeuverEvent{
		ObjectID:            cur.ObjectID,
		Provider:            cur.Provider,
		Epoch:               cur.Epoch,
		PreviousEpoch:       prev.Epoch,
		DeltaMeanMotion:     cur.MeanMotion - prev.MeanMotion,
		DeltaAltitudeKm:     cur.MeanAltitudeKm() - prev.MeanAltitudeKm(),
		AltitudeKm:          cur.MeanAltitudeKm(),
		DeltaInclinationDeg: cur.InclinationDeg - prev.InclinationDeg,
		InclinationDeg:      cur.InclinationDeg,
		Score:               score,
	}
}

func (d *ManeuverDetector) recent(now, epoch time.Time) bool {
	return now.Sub(epoch) <= d.Thresholds.ManeuverReportWindow
}

// compound reports whether any flagged mean-motion outlier sits within the
// compound window of epoch, reported or not.
func (d *ManeuverDetector) compound(epoch time.Time, points []models.OrbitalElement, motionFlags []int) bool {
	for _, i := range motionFlags {
		gap := points[i+1].Epoch.Sub(epoch)
		if gap < 0 {
			gap = -gap
		}
		if gap <= d.Thresholds.CompoundWindow {
			return true
		}
	}
	return false
}
