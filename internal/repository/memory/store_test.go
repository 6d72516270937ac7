package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
	"orbitwatch/internal/repository"
)

var base = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func element(id string, p models.Provider, day int, n float64) models.OrbitalElement {
	return models.OrbitalElement{
		ObjectID:   id,
		Provider:   p,
		Epoch:      base.Add(time.Duration(day) * 24 * time.Hour),
		MeanMotion: n,
	}
}

func TestAppendHistory_ReissuedEpochOverwrites(t *testing.T) {
	ctx := context.Background()
	st := New()
	if _, err := st.AppendHistory(ctx, []models.OrbitalElement{element("25544", models.ProviderCelestrak, 0, 15.50)}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if _, err := st.AppendHistory(ctx, []models.OrbitalElement{
		element("25544", models.ProviderCelestrak, 0, 15.51),
		element("25544", models.ProviderSpaceTrack, 0, 15.49),
	}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if got := st.HistoryLen(); got != 2 {
		t.Fatalf("got=%d want=2", got)
	}
	series, err := st.QueryTrailing(ctx, repository.TrailingQuery{ObjectID: "25544", Provider: models.ProviderCelestrak, Until: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if series.Len() != 1 || series.At(0).MeanMotion != 15.51 {
		t.Fatalf("series=%v", series.Points())
	}
}

func TestQueryTrailing_SingleProviderCappedOldestFirst(t *testing.T) {
	ctx := context.Background()
	st := New()
	var batch []models.OrbitalElement
	for day := 0; day < 10; day++ {
		batch = append(batch,
			element("25544", models.ProviderCelestrak, day, 15.5),
			element("25544", models.ProviderSpaceTrack, day, 15.4),
			element("20580", models.ProviderCelestrak, day, 15.0),
		)
	}
	if _, err := st.AppendHistory(ctx, batch); err != nil {
		t.Fatalf("err=%v", err)
	}

	series, err := st.QueryTrailing(ctx, repository.TrailingQuery{
		ObjectID: "25544",
		Provider: models.ProviderSpaceTrack,
		Window:   5 * 24 * time.Hour,
		Until:    base.Add(8 * 24 * time.Hour),
		Limit:    4,
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if series.Len() != 4 {
		t.Fatalf("got=%d want=4", series.Len())
	}
	for i := 0; i < series.Len(); i++ {
		p := series.At(i)
		if p.Provider != models.ProviderSpaceTrack || p.ObjectID != "25544" {
			t.Fatalf("point %d from %s/%s", i, p.ObjectID, p.Provider)
		}
	}
	oldest, _ := series.Oldest()
	latest, _ := series.Latest()
	if !oldest.Epoch.Equal(base.Add(5*24*time.Hour)) || !latest.Epoch.Equal(base.Add(8*24*time.Hour)) {
		t.Fatalf("oldest=%v latest=%v", oldest.Epoch, latest.Epoch)
	}

	if _, err := st.QueryTrailing(ctx, repository.TrailingQuery{ObjectID: "25544", Provider: "both"}); !errors.Is(err, orbit.ErrUnknownProvider) {
		t.Fatalf("err=%v want ErrUnknownProvider", err)
	}
}

func TestUpsertCurrentState_PrefersProviderA(t *testing.T) {
	ctx := context.Background()
	st := New()
	_, _ = st.UpsertCurrentState(ctx, []models.OrbitalElement{
		element("25544", models.ProviderSpaceTrack, 5, 15.4),
		element("25544", models.ProviderCelestrak, 3, 15.5),
		element("25544", models.ProviderCelestrak, 4, 15.6),
		element("20580", models.ProviderSpaceTrack, 1, 15.0),
	}, models.ProviderCelestrak)

	got, _ := st.GetObjectState(ctx, "25544")
	if got == nil || got.Provider != models.ProviderCelestrak || got.MeanMotion != 15.6 {
		t.Fatalf("state=%+v", got)
	}
	got, _ = st.GetObjectState(ctx, "20580")
	if got == nil || got.Provider != models.ProviderSpaceTrack {
		t.Fatalf("fallback state=%+v", got)
	}
}

func TestUpsertCurrentState_KeepsProviderAAcrossOutage(t *testing.T) {
	ctx := context.Background()
	st := New()
	if _, err := st.UpsertCurrentState(ctx, []models.OrbitalElement{
		element("25544", models.ProviderCelestrak, 4, 15.5),
		element("25544", models.ProviderSpaceTrack, 3, 15.4),
	}, models.ProviderCelestrak); err != nil {
		t.Fatalf("err=%v", err)
	}

	// Provider A down: an older B record must not displace the A projection.
	n, err := st.UpsertCurrentState(ctx, []models.OrbitalElement{
		element("25544", models.ProviderSpaceTrack, 2, 15.3),
	}, models.ProviderCelestrak)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if n != 0 {
		t.Fatalf("got=%d want=0", n)
	}
	got, _ := st.GetObjectState(ctx, "25544")
	if got == nil || got.Provider != models.ProviderCelestrak || !got.Epoch.Equal(base.Add(4*24*time.Hour)) {
		t.Fatalf("state=%+v", got)
	}

	// Even a newer B record leaves A in place.
	_, _ = st.UpsertCurrentState(ctx, []models.OrbitalElement{
		element("25544", models.ProviderSpaceTrack, 6, 15.2),
	}, models.ProviderCelestrak)
	got, _ = st.GetObjectState(ctx, "25544")
	if got.Provider != models.ProviderCelestrak {
		t.Fatalf("got=%s want=%s", got.Provider, models.ProviderCelestrak)
	}

	// A B-only object does not move back in time.
	_, _ = st.UpsertCurrentState(ctx, []models.OrbitalElement{element("20580", models.ProviderSpaceTrack, 5, 15.0)}, models.ProviderCelestrak)
	_, _ = st.UpsertCurrentState(ctx, []models.OrbitalElement{element("20580", models.ProviderSpaceTrack, 4, 14.9)}, models.ProviderCelestrak)
	got, _ = st.GetObjectState(ctx, "20580")
	if got.MeanMotion != 15.0 {
		t.Fatalf("got=%v want=15.0", got.MeanMotion)
	}

	// A returns with an older epoch than stored B: A still wins.
	_, _ = st.UpsertCurrentState(ctx, []models.OrbitalElement{element("20580", models.ProviderCelestrak, 1, 14.8)}, models.ProviderCelestrak)
	got, _ = st.GetObjectState(ctx, "20580")
	if got.Provider != models.ProviderCelestrak {
		t.Fatalf("got=%s want=%s", got.Provider, models.ProviderCelestrak)
	}
}

func TestLatestElement_AnyProvider(t *testing.T) {
	ctx := context.Background()
	st := New()
	_, _ = st.AppendHistory(ctx, []models.OrbitalElement{
		element("25544", models.ProviderCelestrak, 1, 15.5),
		element("25544", models.ProviderSpaceTrack, 2, 15.4),
	})
	got, _ := st.LatestElement(ctx, "25544")
	if got == nil || got.Provider != models.ProviderSpaceTrack {
		t.Fatalf("latest=%+v", got)
	}
	if none, _ := st.LatestElement(ctx, "1"); none != nil {
		t.Fatalf("latest for unknown=%+v", none)
	}
}

func TestSignals_DedupAndExpire(t *testing.T) {
	ctx := context.Background()
	st := New()
	sig := models.Signal{Fingerprint: "abc", SignalType: models.SignalStale, ObjectID: "25544", ExpiresAt: base}
	created, err := st.InsertSignalIfAbsent(ctx, &sig)
	if err != nil || !created {
		t.Fatalf("created=%v err=%v", created, err)
	}
	dup := models.Signal{Fingerprint: "abc", SignalType: models.SignalStale, ObjectID: "25544", ExpiresAt: base}
	created, err = st.InsertSignalIfAbsent(ctx, &dup)
	if err != nil || created {
		t.Fatalf("duplicate created=%v err=%v", created, err)
	}

	n, _ := st.ExpireSignals(ctx, base.Add(-time.Second))
	if n != 0 {
		t.Fatalf("expired=%d want=0", n)
	}
	n, _ = st.ExpireSignals(ctx, base.Add(time.Second))
	if n != 1 {
		t.Fatalf("expired=%d want=1", n)
	}
	status := models.SignalExpired
	items, _ := st.ListSignals(ctx, repository.ListSignalsParams{Status: &status})
	if len(items) != 1 {
		t.Fatalf("got=%d want=1", len(items))
	}
	if n, _ = st.ExpireSignals(ctx, base.Add(time.Hour)); n != 0 {
		t.Fatalf("second sweep expired=%d want=0", n)
	}
}
