package signal

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"orbitwatch/internal/metrics"
	"orbitwatch/internal/models"
	"orbitwatch/internal/repository"
)

// Emitter turns detector events into deduplicated Signal rows.
type Emitter struct {
	Repo    repository.SignalRepository
	Logger  *zap.Logger
	Names   map[string]string
	Metrics *metrics.Recorder
}

func NewEmitter(repo repository.SignalRepository, names map[string]string, logger *zap.Logger, m *metrics.Recorder) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{Repo: repo, Logger: logger, Names: names, Metrics: m}
}

// Emit inserts the signal for ev unless its fingerprint already exists.
func (e *Emitter) Emit(ctx context.Context, ev Event) (bool, error) {
	if e == nil || e.Repo == nil {
		return false, errors.New("signal emitter has no repository")
	}
	sig, err := e.build(ev)
	if err != nil {
		return false, err
	}
	created, err := e.Repo.InsertSignalIfAbsent(ctx, sig)
	switch {
	case err != nil:
		e.Metrics.RecordSignal(string(sig.SignalType), "error")
	case created:
		e.Metrics.RecordSignal(string(sig.SignalType), "created")
	default:
		e.Metrics.RecordSignal(string(sig.SignalType), "duplicate")
	}
	return created, err
}

// EmitAll emits every event, logging failures, and returns how many were new.
func (e *Emitter) EmitAll(ctx context.Context, events []Event) int {
	created := 0
	for _, ev := range events {
		ok, err := e.Emit(ctx, ev)
		if err != nil {
			e.logger().Warn("signal insert failed",
				zap.String("object_id", ev.Object()),
				zap.String("signal_type", string(ev.Kind())),
				zap.Error(err),
			)
			continue
		}
		if ok {
			created++
			e.logger().Info("signal created",
				zap.String("object_id", ev.Object()),
				zap.String("signal_type", string(ev.Kind())),
				zap.String("severity", string(ev.Level())),
			)
		}
	}
	return created
}

func (e *Emitter) build(ev Event) (*models.Signal, error) {
	at := ev.OccurredAt().UTC()
	refs, err := json.Marshal(ev.SourceRefs())
	if err != nil {
		return nil, err
	}
	evidence, err := json.Marshal(ev.Evidence())
	if err != nil {
		return nil, err
	}
	title, description := render(ev, displayName(e.Names, ev.Object()))
	return &models.Signal{
		Fingerprint: Fingerprint(ev.Kind(), ev.Object(), at),
		SignalType:  ev.Kind(),
		Severity:    ev.Level(),
		ObjectID:    ev.Object(),
		Title:       title,
		Description: description,
		SourceRefs:  datatypes.JSON(refs),
		Metrics:     datatypes.JSON(evidence),
		Status:      models.SignalActive,
		DetectedAt:  at,
		ExpiresAt:   at.Add(ttlFor(ev.Kind())),
	}, nil
}

func (e *Emitter) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}
