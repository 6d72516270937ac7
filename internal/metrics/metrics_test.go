package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.RecordRun("success", time.Second)
	r.RecordFetch("celestrak", time.Second, errors.New("x"), true)
	r.RecordSignal("stale", "created")
	r.RecordExpired(3)
	if r.Registry() != nil {
		t.Fatalf("nil recorder registry should be nil")
	}
}

func TestRecorder_CountsAndServes(t *testing.T) {
	r := New()
	r.RecordRun("partial", 2*time.Second)
	r.RecordFetch("spacetrack", time.Second, errors.New("429"), true)
	r.RecordIngested("celestrak", 4)
	r.RecordSignal("orbit_raise", "created")
	r.RecordSignal("orbit_raise", "duplicate")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`orbitwatch_runs_total{state="partial"} 1`,
		`orbitwatch_records_ingested_total{provider="celestrak"} 4`,
		`orbitwatch_fetch_errors_total{provider="spacetrack",transient="true"} 1`,
		`orbitwatch_signals_emitted_total{outcome="duplicate",signal_type="orbit_raise"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics body missing %q:\n%s", want, body)
		}
	}
}
