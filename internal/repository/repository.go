package repository

import (
	"context"
	"time"

	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
)

// DefaultTrailingCap bounds a trailing read when the caller sets no limit.
const DefaultTrailingCap = 500

type HistoryRepository interface {
	// AppendHistory upserts by (object_id, epoch, provider) and returns the rows written.
	AppendHistory(ctx context.Context, items []models.OrbitalElement) (int, error)
	UpsertCurrentState(ctx context.Context, items []models.OrbitalElement, preferred models.Provider) (int, error)
	QueryTrailing(ctx context.Context, q TrailingQuery) (orbit.Series, error)
	// LatestElement is the freshest record of any provider, or nil.
	LatestElement(ctx context.Context, objectID string) (*models.OrbitalElement, error)
	GetObjectState(ctx context.Context, objectID string) (*models.ObjectState, error)
}

type SignalRepository interface {
	// InsertSignalIfAbsent reports created=false when the fingerprint already exists.
	InsertSignalIfAbsent(ctx context.Context, item *models.Signal) (bool, error)
	ListSignals(ctx context.Context, params ListSignalsParams) ([]models.Signal, error)
	ExpireSignals(ctx context.Context, now time.Time) (int64, error)
}

type OpsRepository interface {
	UpsertSourceHealth(ctx context.Context, item *models.SourceHealth) error
	ListSourceHealth(ctx context.Context) ([]models.SourceHealth, error)
	InsertTelemetryRun(ctx context.Context, item *models.TelemetryRun) error
	ListTelemetryRuns(ctx context.Context, params ListRunsParams) ([]models.TelemetryRun, error)
}

type Repository interface {
	HistoryRepository
	SignalRepository
	OpsRepository
}

// TrailingQuery selects the most recent Limit rows of one provider with epoch
// in [Until-Window, Until]. A zero Window means no lower bound.
type TrailingQuery struct {
	ObjectID string
	Provider models.Provider
	Window   time.Duration
	Until    time.Time
	Limit    int
}

type ListSignalsParams struct {
	Limit    int
	Offset   int
	ObjectID *string
	Type     *models.SignalType
	Status   *models.SignalStatus
	Since    *time.Time
	OrderBy  string
	Asc      *bool
}

type ListRunsParams struct {
	Limit  int
	Offset int
	State  *models.RunState
}

// PickCurrent chooses, per object, the newest record of preferred, falling back
// to the newest of any provider.
func PickCurrent(items []models.OrbitalElement, preferred models.Provider) []models.OrbitalElement {
	best := map[string]models.OrbitalElement{}
	order := make([]string, 0, len(items))
	for _, it := range items {
		cur, ok := best[it.ObjectID]
		if !ok {
			order = append(order, it.ObjectID)
			best[it.ObjectID] = it
			continue
		}
		if better(it, cur, preferred) {
			best[it.ObjectID] = it
		}
	}
	out := make([]models.OrbitalElement, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}

// Supersedes reports whether candidate may replace the stored projection. A
// preferred record is never displaced by another provider and the projection
// never moves back in time within one preference class.
func Supersedes(candidate models.OrbitalElement, stored models.ObjectState, preferred models.Provider) bool {
	cp, sp := candidate.Provider == preferred, stored.Provider == preferred
	if cp != sp {
		return cp
	}
	return !candidate.Epoch.Before(stored.Epoch)
}

func better(candidate, current models.OrbitalElement, preferred models.Provider) bool {
	cp, kp := candidate.Provider == preferred, current.Provider == preferred
	if cp != kp {
		return cp
	}
	return candidate.Epoch.After(current.Epoch)
}

// TrailingLimit applies the default cap.
func TrailingLimit(limit int) int {
	if limit <= 0 {
		return DefaultTrailingCap
	}
	return limit
}
