package detector

import (
	"errors"
	"testing"
	"time"

	"orbitwatch/internal/config"
	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
)

var t0 = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func record(p models.Provider, at time.Time, meanMotion, incl float64) models.OrbitalElement {
	g, _ := orbit.DeriveGeometry(meanMotion, 0.0005)
	return models.OrbitalElement{
		ObjectID:       "25544",
		Provider:       p,
		Epoch:          at,
		MeanMotion:     meanMotion,
		Eccentricity:   0.0005,
		InclinationDeg: incl,
		BStar:          0.0001,
		ApoapsisKm:     g.ApoapsisKm,
		PeriapsisKm:    g.PeriapsisKm,
		PeriodMinutes:  g.PeriodMinutes,
	}
}

func atAltitude(at time.Time, km float64) models.OrbitalElement {
	return models.OrbitalElement{
		ObjectID:    "25544",
		Provider:    models.ProviderSpaceTrack,
		Epoch:       at,
		ApoapsisKm:  km,
		PeriapsisKm: km,
		BStar:       0.0001,
	}
}

func mustSeries(t *testing.T, p models.Provider, records []models.OrbitalElement) orbit.Series {
	t.Helper()
	s, err := orbit.NewSeries("25544", p, records)
	if err != nil {
		t.Fatalf("series err=%v", err)
	}
	return s
}

func daily(days int, fn func(i int) (float64, float64)) []models.OrbitalElement {
	out := make([]models.OrbitalElement, 0, days)
	for i := 0; i < days; i++ {
		n, incl := fn(i)
		out = append(out, record(models.ProviderCelestrak, t0.Add(time.Duration(i)*24*time.Hour), n, incl))
	}
	return out
}

func TestHealth_AltitudeBoundariesInclusive(t *testing.T) {
	det := NewHealthDetector(DefaultThresholds())
	now := t0.Add(3 * 24 * time.Hour)
	cases := []struct {
		name     string
		current  float64
		wantType models.SignalType
		wantSev  models.Severity
	}{
		{"drop exactly 5", 395, models.SignalAltitudeDrop, models.SeverityMedium},
		{"drop 5.01", 394.99, models.SignalAltitudeDrop, models.SeverityMedium},
		{"drop exactly 15", 385, models.SignalAltitudeDrop, models.SeverityCritical},
		{"drop 15.01", 384.99, models.SignalAltitudeDrop, models.SeverityCritical},
		{"drop 4.99", 395.01, "", ""},
		{"rise exactly 5", 405, models.SignalAltitudeRise, models.SeverityMedium},
		{"rise 4.99", 404.99, "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			series := mustSeries(t, models.ProviderSpaceTrack, []models.OrbitalElement{
				atAltitude(t0, 400),
				atAltitude(t0.Add(24*time.Hour), (400+tc.current)/2),
				atAltitude(t0.Add(2*24*time.Hour), tc.current),
			})
			latest, _ := series.Latest()
			got, ok := det.Detect(now, &latest, series)
			if !ok {
				t.Fatalf("trend checks skipped")
			}
			if tc.wantType == "" {
				if len(got) != 0 {
					t.Fatalf("got=%v want none", got)
				}
				return
			}
			if len(got) != 1 || got[0].Type != tc.wantType || got[0].Severity != tc.wantSev {
				t.Fatalf("got=%+v want=%s/%s", got, tc.wantType, tc.wantSev)
			}
			if got[0].Provider != models.ProviderSpaceTrack || !got[0].OccurredAt().Equal(now) {
				t.Fatalf("anomaly=%+v", got[0])
			}
		})
	}
}

func TestHealth_StaleSingleOldRecord(t *testing.T) {
	det := NewHealthDetector(DefaultThresholds())
	now := t0.Add(20 * 24 * time.Hour)
	only := atAltitude(t0, 400)
	got, ok := det.Detect(now, &only, mustSeries(t, models.ProviderSpaceTrack, []models.OrbitalElement{only}))
	if ok {
		t.Fatalf("trend checks should be skipped with one point")
	}
	if len(got) != 1 {
		t.Fatalf("got=%d want=1", len(got))
	}
	if got[0].Type != models.SignalStale || got[0].Severity != models.SeverityHigh {
		t.Fatalf("got=%+v", got[0])
	}
	if len(got[0].Refs) != 1 || !got[0].Refs[0].Epoch.Equal(t0) {
		t.Fatalf("refs=%v", got[0].Refs)
	}
}

func TestHealth_FreshRecordNotStale(t *testing.T) {
	det := NewHealthDetector(DefaultThresholds())
	rec := atAltitude(t0, 400)
	got, _ := det.Detect(t0.Add(14*24*time.Hour), &rec, orbit.Series{})
	if len(got) != 0 {
		t.Fatalf("got=%v want none at exactly 14 days", got)
	}
}

func TestHealth_DragSpike(t *testing.T) {
	det := NewHealthDetector(DefaultThresholds())
	a := atAltitude(t0, 400)
	b := atAltitude(t0.Add(24*time.Hour), 400)
	b.BStar = 0.0012
	got, _ := det.Detect(t0.Add(2*24*time.Hour), &b, mustSeries(t, models.ProviderSpaceTrack, []models.OrbitalElement{a, b}))
	if len(got) != 1 || got[0].Type != models.SignalDragSpike || got[0].Severity != models.SeverityMedium {
		t.Fatalf("got=%+v", got)
	}

	b.BStar = 0.0009
	got, _ = det.Detect(t0.Add(2*24*time.Hour), &b, mustSeries(t, models.ProviderSpaceTrack, []models.OrbitalElement{a, b}))
	if len(got) != 0 {
		t.Fatalf("got=%+v want none", got)
	}
}

func TestManeuver_CleanOrbitRaise(t *testing.T) {
	det := NewManeuverDetector(DefaultThresholds())
	records := daily(30, func(i int) (float64, float64) {
		if i >= 25 {
			return 14.30, 51.64
		}
		return 14.50, 51.64
	})
	now := t0.Add(29*24*time.Hour + 6*time.Hour)
	got, ok := det.Detect(now, mustSeries(t, models.ProviderCelestrak, records))
	if !ok {
		t.Fatalf("detector skipped")
	}
	if len(got) != 1 {
		t.Fatalf("got=%d want=1 events=%+v", len(got), got)
	}
	ev := got[0]
	if ev.Type != models.SignalOrbitRaise {
		t.Fatalf("type=%s want=%s", ev.Type, models.SignalOrbitRaise)
	}
	if step := t0.Add(25 * 24 * time.Hour); !ev.Epoch.Equal(step) {
		t.Fatalf("epoch=%v want=%v", ev.Epoch, step)
	}
	if ev.DeltaAltitudeKm <= 10 || ev.Severity != models.SeverityHigh {
		t.Fatalf("delta_alt=%v severity=%s", ev.DeltaAltitudeKm, ev.Severity)
	}
}

func debounceSeries() []models.OrbitalElement {
	// 40 noise differences, one 3.8 sigma jump, then four 2.5 sigma ringing points.
	diffs := make([]float64, 0, 45)
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			diffs = append(diffs, -0.0001)
		} else {
			diffs = append(diffs, 0.0001)
		}
	}
	diffs = append(diffs, 0.01, 0.007, 0.007, 0.007, 0.007)

	n := 15.5
	out := []models.OrbitalElement{record(models.ProviderCelestrak, t0, n, 51.64)}
	for i, d := range diffs {
		n += d
		out = append(out, record(models.ProviderCelestrak, t0.Add(time.Duration(i+1)*12*time.Hour), n, 51.64))
	}
	return out
}

func TestManeuver_DebounceCollapsesRinging(t *testing.T) {
	records := debounceSeries()
	now := t0.Add(23 * 24 * time.Hour)

	got, _ := NewManeuverDetector(DefaultThresholds()).Detect(now, mustSeries(t, models.ProviderCelestrak, records))
	if len(got) != 1 {
		t.Fatalf("got=%d want=1 events=%+v", len(got), got)
	}
	if got[0].Type != models.SignalOrbitLower {
		t.Fatalf("type=%s want=%s", got[0].Type, models.SignalOrbitLower)
	}
	if want := records[41].Epoch; !got[0].Epoch.Equal(want) {
		t.Fatalf("epoch=%v want=%v", got[0].Epoch, want)
	}

	noDebounce := DefaultThresholds()
	noDebounce.ManeuverDebounce = 0
	got, _ = NewManeuverDetector(noDebounce).Detect(now, mustSeries(t, models.ProviderCelestrak, records))
	if len(got) != 5 {
		t.Fatalf("without debounce got=%d want=5", len(got))
	}
}

func TestManeuver_OldOutlierNotReported(t *testing.T) {
	records := daily(30, func(i int) (float64, float64) {
		if i >= 5 {
			return 14.30, 51.64
		}
		return 14.50, 51.64
	})
	got, ok := NewManeuverDetector(DefaultThresholds()).Detect(t0.Add(29*24*time.Hour), mustSeries(t, models.ProviderCelestrak, records))
	if !ok || len(got) != 0 {
		t.Fatalf("ok=%v got=%+v want none", ok, got)
	}
}

func TestManeuver_InsufficientPoints(t *testing.T) {
	records := daily(9, func(i int) (float64, float64) { return 15.5 + float64(i), 51.64 })
	got, ok := NewManeuverDetector(DefaultThresholds()).Detect(t0.Add(10*24*time.Hour), mustSeries(t, models.ProviderCelestrak, records))
	if ok || got != nil {
		t.Fatalf("ok=%v got=%v want skipped", ok, got)
	}
}

func TestManeuver_PlaneChange(t *testing.T) {
	now := t0.Add(19*24*time.Hour + 12*time.Hour)
	cases := []struct {
		name       string
		step       float64
		motionStep bool
		want       []models.SignalType
	}{
		{"above floor", 0.05, false, []models.SignalType{models.SignalPlaneChange}},
		{"below floor", 0.015, false, nil},
		{"compound burn", 0.05, true, []models.SignalType{models.SignalOrbitRaise}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			records := daily(20, func(i int) (float64, float64) {
				n, incl := 15.5, 51.64
				if i >= 17 {
					incl += tc.step
					if tc.motionStep {
						n = 15.45
					}
				}
				return n, incl
			})
			got, _ := NewManeuverDetector(DefaultThresholds()).Detect(now, mustSeries(t, models.ProviderCelestrak, records))
			if len(got) != len(tc.want) {
				t.Fatalf("got=%+v want=%v", got, tc.want)
			}
			for i, ev := range got {
				if ev.Type != tc.want[i] {
					t.Fatalf("event %d type=%s want=%s", i, ev.Type, tc.want[i])
				}
			}
			if len(got) == 1 && got[0].Type == models.SignalPlaneChange && got[0].Severity != models.SeverityMedium {
				t.Fatalf("severity=%s want=medium", got[0].Severity)
			}
		})
	}
}

func TestSeriesRejectsMixedProviders(t *testing.T) {
	_, err := orbit.NewSeries("25544", models.ProviderCelestrak, []models.OrbitalElement{
		record(models.ProviderCelestrak, t0, 15.5, 51.6),
		record(models.ProviderSpaceTrack, t0.Add(time.Hour), 15.5, 51.6),
	})
	if !errors.Is(err, orbit.ErrMixedProviders) {
		t.Fatalf("err=%v want ErrMixedProviders", err)
	}
}

func TestFromConfig_OverridesNonZero(t *testing.T) {
	th := FromConfig(config.ThresholdsConfig{StaleAfter: 48 * time.Hour, ManeuverSigma: 3})
	if th.StaleAfter != 48*time.Hour || th.ManeuverSigma != 3 {
		t.Fatalf("thresholds=%+v", th)
	}
	if th.AltitudeDropCriticalKm != DefaultAltitudeDropCriticalKm || th.ManeuverDebounce != DefaultManeuverDebounce {
		t.Fatalf("defaults lost: %+v", th)
	}
	if th.ManeuverHighAltitudeKm != DefaultManeuverHighAltitudeKm || th.PlaneChangeHighDeg != DefaultPlaneChangeHighDeg {
		t.Fatalf("severity defaults lost: %+v", th)
	}
}

func TestFromConfig_SeverityCutoffs(t *testing.T) {
	th := FromConfig(config.ThresholdsConfig{ManeuverHighAltitudeKm: 25, PlaneChangeHighDeg: 0.5})
	if th.ManeuverHighAltitudeKm != 25 || th.PlaneChangeHighDeg != 0.5 {
		t.Fatalf("got=%v/%v want=25/0.5", th.ManeuverHighAltitudeKm, th.PlaneChangeHighDeg)
	}
}
