package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchlistNames_NormalizesIDs(t *testing.T) {
	cfg := Config{Watchlist: []TrackedObject{
		{ObjectID: "00005", Name: "VANGUARD 1"},
		{ObjectID: " 25544 ", Name: " ISS (ZARYA) "},
		{ObjectID: "  ", Name: "blank"},
	}}
	got := cfg.WatchlistNames()
	if len(got) != 2 {
		t.Fatalf("got=%v want 2 entries", got)
	}
	if got["5"] != "VANGUARD 1" {
		t.Fatalf("got=%q want=%q", got["5"], "VANGUARD 1")
	}
	if got["25544"] != "ISS (ZARYA)" {
		t.Fatalf("got=%q want=%q", got["25544"], "ISS (ZARYA)")
	}
}

func TestLoad_ThresholdOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte(`
thresholds:
  stale_after: 72h
  maneuver_high_altitude_km: 25
  plane_change_high_deg: 0.5
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write err=%v", err)
	}
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("load err=%v", err)
	}
	th := cfg.Thresholds
	if th.StaleAfter != 72*time.Hour || th.ManeuverHighAltitudeKm != 25 || th.PlaneChangeHighDeg != 0.5 {
		t.Fatalf("thresholds=%+v", th)
	}
	if cfg.App.Mode != "once" || cfg.History.TrailingRowCap != 500 {
		t.Fatalf("defaults app.mode=%q cap=%d", cfg.App.Mode, cfg.History.TrailingRowCap)
	}
}
