package orbit

import (
	"errors"
	"math"
	"testing"
	"time"

	"orbitwatch/internal/models"
)

const (
	issLine1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"
)

func TestDeriveGeometry_LowEarthOrbit(t *testing.T) {
	g, ok := DeriveGeometry(15.5, 0)
	if !ok {
		t.Fatalf("expected ok")
	}
	if math.Abs(g.ApoapsisKm-416.73) > 0.05 {
		t.Fatalf("apoapsis=%.3f want ~416.73", g.ApoapsisKm)
	}
	if g.ApoapsisKm != g.PeriapsisKm {
		t.Fatalf("circular orbit apo=%f peri=%f", g.ApoapsisKm, g.PeriapsisKm)
	}
	if math.Abs(g.PeriodMinutes-1440/15.5) > 1e-9 {
		t.Fatalf("period=%f", g.PeriodMinutes)
	}
}

func TestDeriveGeometry_Eccentric(t *testing.T) {
	g, ok := DeriveGeometry(2.0, 0.7)
	if !ok {
		t.Fatalf("expected ok")
	}
	if g.ApoapsisKm <= g.PeriapsisKm {
		t.Fatalf("apo=%f peri=%f", g.ApoapsisKm, g.PeriapsisKm)
	}
}

func TestDeriveGeometry_Rejects(t *testing.T) {
	tests := []struct {
		n, e float64
	}{
		{0, 0.001},
		{-1, 0.001},
		{15, -0.1},
		{15, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if _, ok := DeriveGeometry(tt.n, tt.e); ok {
			t.Fatalf("DeriveGeometry(%v, %v) ok, want rejection", tt.n, tt.e)
		}
	}
}

func TestNormalizeCatalogID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"25544", "25544"},
		{"00005", "5"},
		{"    5", "5"},
		{" A0001", "A0001"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCatalogID(tt.in); got != tt.want {
			t.Fatalf("NormalizeCatalogID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidChecksum(t *testing.T) {
	if !ValidChecksum(issLine1) || !ValidChecksum(issLine2) {
		t.Fatalf("expected reference lines to validate")
	}
	broken := issLine2[:68] + "8"
	if ValidChecksum(broken) {
		t.Fatalf("expected checksum mismatch")
	}
	if ValidChecksum(issLine1[:60]) {
		t.Fatalf("expected short line to fail")
	}
}

func TestParseTLEText(t *testing.T) {
	text := "ISS (ZARYA)\n" + issLine1 + "\n" + issLine2 + "\r\n" +
		"BROKEN\n" + issLine1 + "\n" + issLine2[:68] + "0\n"
	got := ParseTLEText(text)
	tle, ok := got["25544"]
	if !ok {
		t.Fatalf("missing 25544 in %#v", got)
	}
	if tle.Name != "ISS (ZARYA)" {
		t.Fatalf("name=%q", tle.Name)
	}
	if tle.Line2 != issLine2 {
		t.Fatalf("line2=%q", tle.Line2)
	}
}

func TestNewSeries_RejectsMixedProviders(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []models.OrbitalElement{
		{ObjectID: "25544", Provider: models.ProviderSpaceTrack, Epoch: base},
		{ObjectID: "25544", Provider: models.ProviderCelestrak, Epoch: base.Add(time.Hour)},
	}
	_, err := NewSeries("25544", models.ProviderSpaceTrack, records)
	if !errors.Is(err, ErrMixedProviders) {
		t.Fatalf("err=%v want ErrMixedProviders", err)
	}
}

func TestNewSeries_RejectsMixedObjects(t *testing.T) {
	records := []models.OrbitalElement{
		{ObjectID: "25544", Provider: models.ProviderCelestrak},
		{ObjectID: "48274", Provider: models.ProviderCelestrak},
	}
	_, err := NewSeries("25544", models.ProviderCelestrak, records)
	if !errors.Is(err, ErrMixedObjects) {
		t.Fatalf("err=%v want ErrMixedObjects", err)
	}
}

func TestNewSeries_RejectsUnknownProvider(t *testing.T) {
	_, err := NewSeries("25544", models.Provider("merged"), nil)
	if !errors.Is(err, ErrUnknownProvider) {
		t.Fatalf("err=%v want ErrUnknownProvider", err)
	}
}

func TestNewSeries_SortsOldestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	records := []models.OrbitalElement{
		{ObjectID: "25544", Provider: models.ProviderCelestrak, Epoch: base.Add(2 * time.Hour), MeanMotion: 3},
		{ObjectID: "25544", Provider: models.ProviderCelestrak, Epoch: base, MeanMotion: 1},
		{ObjectID: "25544", Provider: models.ProviderCelestrak, Epoch: base.Add(time.Hour), MeanMotion: 2},
	}
	s, err := NewSeries("25544", models.ProviderCelestrak, records)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	oldest, _ := s.Oldest()
	latest, _ := s.Latest()
	if oldest.MeanMotion != 1 || latest.MeanMotion != 3 {
		t.Fatalf("oldest=%v latest=%v", oldest.MeanMotion, latest.MeanMotion)
	}
	// Mutating the input must not leak into the series.
	records[0].MeanMotion = 99
	if s.At(2).MeanMotion != 3 {
		t.Fatalf("series aliased caller slice")
	}
}

func TestSeries_ZeroValue(t *testing.T) {
	var s Series
	if s.Len() != 0 {
		t.Fatalf("len=%d", s.Len())
	}
	if _, ok := s.Latest(); ok {
		t.Fatalf("expected no latest")
	}
}
