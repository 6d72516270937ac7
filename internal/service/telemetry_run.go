package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"orbitwatch/internal/detector"
	"orbitwatch/internal/metrics"
	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
	"orbitwatch/internal/repository"
	"orbitwatch/internal/signal"
	"orbitwatch/internal/source"
)

// ErrRunFailed is returned when no provider produced data.
var ErrRunFailed = errors.New("telemetry run failed: no provider returned data")

const maneuverSkipped = "skipped"

type RunOptions struct {
	Budget         time.Duration
	FetchTimeout   time.Duration
	DetectGrace    time.Duration
	HealthWindow   time.Duration
	ManeuverWindow time.Duration
	TrailingCap    int
}

func (o RunOptions) withDefaults() RunOptions {
	if o.Budget <= 0 {
		o.Budget = 2 * time.Minute
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 15 * time.Second
	}
	if o.DetectGrace <= 0 {
		o.DetectGrace = 30 * time.Second
	}
	if o.HealthWindow <= 0 {
		o.HealthWindow = 7 * 24 * time.Hour
	}
	if o.ManeuverWindow <= 0 {
		o.ManeuverWindow = 30 * 24 * time.Hour
	}
	if o.TrailingCap <= 0 {
		o.TrailingCap = repository.DefaultTrailingCap
	}
	return o
}

// TelemetryRunService runs one fetch, persist, detect and emit cycle. Primary is
// provider A (maneuvers), Secondary is provider B (health trends).
type TelemetryRunService struct {
	Repo      repository.Repository
	Primary   source.Source
	Secondary source.Source
	Health    *detector.HealthDetector
	Maneuver  *detector.ManeuverDetector
	Emitter   *signal.Emitter
	Watchlist []string
	Options   RunOptions
	Metrics   *metrics.Recorder
	Logger    *zap.Logger
	Now       func() time.Time
}

type RunReport struct {
	ID                string          `json:"id"`
	State             models.RunState `json:"state"`
	StartedAt         time.Time       `json:"started_at"`
	FinishedAt        time.Time       `json:"finished_at"`
	RecordsCelestrak  int             `json:"records_celestrak"`
	RecordsSpaceTrack int             `json:"records_spacetrack"`
	Anomalies         int             `json:"anomalies"`
	Maneuvers         int             `json:"maneuvers"`
	SignalsCreated    int             `json:"signals_created"`
	SignalsExpired    int             `json:"signals_expired"`
	HealthProvider    string          `json:"health_provider"`
	ManeuverProvider  string          `json:"maneuver_provider"`
	Degraded          bool            `json:"degraded"`
	BudgetExceeded    bool            `json:"budget_exceeded"`
	Errors            []string        `json:"errors,omitempty"`
}

type fetchResult struct {
	src     source.Source
	records []models.OrbitalElement
	err     error
	took    time.Duration
}

func (r fetchResult) ok() bool { return r.src != nil && r.err == nil }

func (s *TelemetryRunService) RunOnce(ctx context.Context) (*RunReport, error) {
	opts := s.Options.withDefaults()
	start := s.now()
	report := &RunReport{ID: uuid.NewString(), StartedAt: start}
	log := s.logger().With(zap.String("run_id", report.ID))

	runCtx, cancel := context.WithTimeout(ctx, opts.Budget)
	defer cancel()

	primary, secondary := s.fetchAll(runCtx, opts)
	for _, res := range []fetchResult{primary, secondary} {
		if res.src == nil {
			continue
		}
		transient := false
		var fe *source.FetchError
		if errors.As(res.err, &fe) {
			transient = fe.Transient
		}
		s.Metrics.RecordFetch(res.src.Provider().String(), res.took, res.err, transient)
		if res.err != nil {
			log.Warn("provider fetch failed",
				zap.String("provider", res.src.Provider().String()),
				zap.Bool("transient", transient),
				zap.Error(res.err),
			)
			report.Errors = append(report.Errors, res.err.Error())
		}
	}

	if !primary.ok() && !secondary.ok() {
		report.State = models.RunFailed
		report.Degraded = true
		report.HealthProvider = maneuverSkipped
		report.ManeuverProvider = maneuverSkipped
		s.finish(ctx, log, report, primary, secondary)
		return report, ErrRunFailed
	}

	// PERSIST, provider A then B; one failing does not block the other.
	var persistErr error
	for _, res := range []fetchResult{primary, secondary} {
		if !res.ok() {
			continue
		}
		n, err := s.Repo.AppendHistory(runCtx, res.records)
		if err != nil {
			persistErr = multierr.Append(persistErr, fmt.Errorf("persist %s: %w", res.src.Provider(), err))
			continue
		}
		s.Metrics.RecordIngested(res.src.Provider().String(), n)
		switch res.src.Provider() {
		case models.ProviderCelestrak:
			report.RecordsCelestrak = n
		case models.ProviderSpaceTrack:
			report.RecordsSpaceTrack = n
		}
	}

	var fetched []models.OrbitalElement
	fetched = append(fetched, primary.records...)
	fetched = append(fetched, secondary.records...)
	if _, err := s.Repo.UpsertCurrentState(runCtx, fetched, models.ProviderCelestrak); err != nil {
		persistErr = multierr.Append(persistErr, fmt.Errorf("project current state: %w", err))
	}
	for _, err := range multierr.Errors(persistErr) {
		log.Warn("persist step failed", zap.Error(err))
		report.Errors = append(report.Errors, err.Error())
	}

	detectCtx := runCtx
	if deadline, ok := runCtx.Deadline(); runCtx.Err() != nil || (ok && time.Until(deadline) < opts.DetectGrace) {
		report.BudgetExceeded = runCtx.Err() != nil
		var cancelDetect context.CancelFunc
		detectCtx, cancelDetect = context.WithTimeout(context.WithoutCancel(ctx), opts.DetectGrace)
		defer cancelDetect()
		if report.BudgetExceeded {
			log.Warn("run budget exhausted after persistence, detecting on persisted data", zap.Duration("grace", opts.DetectGrace))
		}
	}

	var events []signal.Event

	healthProvider := models.ProviderSpaceTrack
	if !secondary.ok() {
		healthProvider = models.ProviderCelestrak
		report.Degraded = true
		log.Warn("health detection degraded, spacetrack unavailable; using celestrak")
	}
	report.HealthProvider = healthProvider.String()
	anomalies, fellBack := s.detectHealth(detectCtx, log, start, healthProvider, opts)
	if fellBack > 0 {
		report.Degraded = true
	}
	for _, a := range anomalies {
		events = append(events, a)
		report.Anomalies++
	}

	if primary.ok() {
		report.ManeuverProvider = models.ProviderCelestrak.String()
		for _, m := range s.detectManeuvers(detectCtx, log, start, opts) {
			events = append(events, m)
			report.Maneuvers++
		}
	} else {
		report.ManeuverProvider = maneuverSkipped
		report.Degraded = true
		log.Warn("maneuver detection skipped, celestrak unavailable")
	}

	for _, ev := range events {
		s.Metrics.RecordDetection(string(ev.Kind()))
	}
	if s.Emitter != nil {
		report.SignalsCreated = s.Emitter.EmitAll(detectCtx, events)
	}

	expired, err := s.Repo.ExpireSignals(detectCtx, s.now())
	if err != nil {
		log.Warn("signal expiry sweep failed", zap.Error(err))
		report.Errors = append(report.Errors, fmt.Sprintf("expire signals: %v", err))
	}
	report.SignalsExpired = int(expired)
	s.Metrics.RecordExpired(expired)

	report.State = models.RunSuccess
	if !primary.ok() || !secondary.ok() {
		report.State = models.RunPartial
	}
	s.finish(ctx, log, report, primary, secondary)
	return report, nil
}

func (s *TelemetryRunService) fetchAll(ctx context.Context, opts RunOptions) (primary, secondary fetchResult) {
	var g errgroup.Group
	fetch := func(src source.Source, out *fetchResult) {
		if src == nil {
			return
		}
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, opts.FetchTimeout)
			defer cancel()
			began := time.Now()
			records, err := src.FetchCurrent(fctx, s.Watchlist)
			if err != nil {
				err = source.AsFetchError(src.Provider(), "fetch current", err)
			}
			*out = fetchResult{src: src, records: records, err: err, took: time.Since(began)}
			// The error travels in the result; the other fetch keeps running.
			return nil
		})
	}
	fetch(s.Primary, &primary)
	fetch(s.Secondary, &secondary)
	_ = g.Wait()
	if s.Primary == nil {
		primary = fetchResult{err: errors.New("celestrak source not configured")}
	}
	if s.Secondary == nil {
		secondary = fetchResult{err: errors.New("spacetrack source not configured")}
	}
	if primary.err != nil {
		primary.records = nil
	}
	if secondary.err != nil {
		secondary.records = nil
	}
	return primary, secondary
}

// detectHealth runs the health detector per watched object. When the secondary
// series of an object is too short for a trend, that object falls back to
// provider A; fellBack counts those objects.
func (s *TelemetryRunService) detectHealth(ctx context.Context, log *zap.Logger, now time.Time, provider models.Provider, opts RunOptions) (out []detector.HealthAnomaly, fellBack int) {
	if s.Health == nil {
		return nil, 0
	}
	for _, raw := range s.Watchlist {
		id := orbit.NormalizeCatalogID(raw)
		if id == "" {
			continue
		}
		freshest, err := s.Repo.LatestElement(ctx, id)
		if err != nil {
			log.Warn("latest element lookup failed", zap.String("object_id", id), zap.Error(err))
			continue
		}
		q := repository.TrailingQuery{
			ObjectID: id,
			Provider: provider,
			Window:   opts.HealthWindow,
			Until:    now,
			Limit:    opts.TrailingCap,
		}
		trailing, err := s.Repo.QueryTrailing(ctx, q)
		if err != nil {
			log.Warn("trailing history query failed", zap.String("object_id", id), zap.Error(err))
			continue
		}
		if trailing.Len() < 2 && provider != models.ProviderCelestrak {
			q.Provider = models.ProviderCelestrak
			alt, err := s.Repo.QueryTrailing(ctx, q)
			if err == nil && alt.Len() >= 2 {
				log.Warn("health trend degraded, object falls back to celestrak",
					zap.String("object_id", id),
					zap.Int("spacetrack_points", trailing.Len()),
				)
				trailing = alt
				fellBack++
			}
		}
		anomalies, ok := s.Health.Detect(now, freshest, trailing)
		if !ok {
			log.Debug("health trend skipped, insufficient data",
				zap.String("object_id", id),
				zap.String("provider", trailing.Provider().String()),
				zap.Int("points", trailing.Len()),
			)
		}
		out = append(out, anomalies...)
	}
	return out, fellBack
}

func (s *TelemetryRunService) detectManeuvers(ctx context.Context, log *zap.Logger, now time.Time, opts RunOptions) []detector.ManeuverEvent {
	if s.Maneuver == nil {
		return nil
	}
	var out []detector.ManeuverEvent
	for _, raw := range s.Watchlist {
		id := orbit.NormalizeCatalogID(raw)
		if id == "" {
			continue
		}
		trailing, err := s.Repo.QueryTrailing(ctx, repository.TrailingQuery{
			ObjectID: id,
			Provider: models.ProviderCelestrak,
			Window:   opts.ManeuverWindow,
			Until:    now,
			Limit:    opts.TrailingCap,
		})
		if err != nil {
			log.Warn("trailing history query failed", zap.String("object_id", id), zap.Error(err))
			continue
		}
		events, ok := s.Maneuver.Detect(now, trailing)
		if !ok {
			log.Debug("maneuver detector skipped, insufficient data",
				zap.String("object_id", id),
				zap.Int("points", trailing.Len()),
			)
		}
		out = append(out, events...)
	}
	return out
}

// finish records source health and the run report. It runs detached from the
// budget so a late run still leaves a trace.
func (s *TelemetryRunService) finish(ctx context.Context, log *zap.Logger, report *RunReport, results ...fetchResult) {
	report.FinishedAt = s.now()
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	for _, res := range results {
		if res.src == nil {
			continue
		}
		poll := report.StartedAt
		item := &models.SourceHealth{
			Provider:     res.src.Provider(),
			Endpoint:     res.src.Endpoint(),
			LastPollAt:   &poll,
			HealthStatus: "healthy",
			LastRecords:  len(res.records),
		}
		if res.err != nil {
			msg := res.err.Error()
			item.LastError = &msg
			item.HealthStatus = "down"
		}
		if err := s.Repo.UpsertSourceHealth(wctx, item); err != nil {
			log.Warn("source health upsert failed", zap.String("provider", item.Provider.String()), zap.Error(err))
		}
	}

	if err := s.Repo.InsertTelemetryRun(wctx, report.toModel()); err != nil {
		log.Warn("telemetry run insert failed", zap.Error(err))
	}
	s.Metrics.RecordRun(string(report.State), report.FinishedAt.Sub(report.StartedAt))

	log.Info("telemetry run finished",
		zap.String("state", string(report.State)),
		zap.Int("records_celestrak", report.RecordsCelestrak),
		zap.Int("records_spacetrack", report.RecordsSpaceTrack),
		zap.Int("anomalies", report.Anomalies),
		zap.Int("maneuvers", report.Maneuvers),
		zap.Int("signals_created", report.SignalsCreated),
		zap.Int("signals_expired", report.SignalsExpired),
		zap.String("health_provider", report.HealthProvider),
		zap.String("maneuver_provider", report.ManeuverProvider),
		zap.Bool("budget_exceeded", report.BudgetExceeded),
	)
}

func (r *RunReport) toModel() *models.TelemetryRun {
	var errs datatypes.JSON
	if len(r.Errors) > 0 {
		if raw, err := json.Marshal(r.Errors); err == nil {
			errs = datatypes.JSON(raw)
		}
	}
	return &models.TelemetryRun{
		ID:                r.ID,
		State:             r.State,
		RecordsCelestrak:  r.RecordsCelestrak,
		RecordsSpaceTrack: r.RecordsSpaceTrack,
		Anomalies:         r.Anomalies,
		Maneuvers:         r.Maneuvers,
		SignalsCreated:    r.SignalsCreated,
		SignalsExpired:    r.SignalsExpired,
		HealthProvider:    r.HealthProvider,
		ManeuverProvider:  r.ManeuverProvider,
		Degraded:          r.Degraded,
		BudgetExceeded:    r.BudgetExceeded,
		Errors:            errs,
		StartedAt:         r.StartedAt,
		FinishedAt:        r.FinishedAt,
	}
}

// ReportFromModel rebuilds a report from its stored row.
func ReportFromModel(m models.TelemetryRun) RunReport {
	r := RunReport{
		ID:                m.ID,
		State:             m.State,
		StartedAt:         m.StartedAt,
		FinishedAt:        m.FinishedAt,
		RecordsCelestrak:  m.RecordsCelestrak,
		RecordsSpaceTrack: m.RecordsSpaceTrack,
		Anomalies:         m.Anomalies,
		Maneuvers:         m.Maneuvers,
		SignalsCreated:    m.SignalsCreated,
		SignalsExpired:    m.SignalsExpired,
		HealthProvider:    m.HealthProvider,
		ManeuverProvider:  m.ManeuverProvider,
		Degraded:          m.Degraded,
		BudgetExceeded:    m.BudgetExceeded,
	}
	if len(m.Errors) > 0 {
		_ = json.Unmarshal(m.Errors, &r.Errors)
	}
	return r
}

func (s *TelemetryRunService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *TelemetryRunService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
