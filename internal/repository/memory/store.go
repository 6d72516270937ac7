// Package memory is an in-process Repository. It backs tests and dry runs and
// keeps the same conflict semantics as the Postgres store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
	"orbitwatch/internal/repository"
)

type historyKey struct {
	objectID string
	epoch    int64
	provider models.Provider
}

type Store struct {
	mu sync.RWMutex

	history map[historyKey]models.OrbitalElement
	current map[string]models.ObjectState
	signals []models.Signal
	byPrint map[string]int
	health  map[models.Provider]models.SourceHealth
	runs    []models.TelemetryRun
	nextID  uint64

	// FailSignalInsert, when set, makes InsertSignalIfAbsent fail for matching rows.
	FailSignalInsert func(*models.Signal) error
}

func New() *Store {
	return &Store{
		history: map[historyKey]models.OrbitalElement{},
		current: map[string]models.ObjectState{},
		byPrint: map[string]int{},
		health:  map[models.Provider]models.SourceHealth{},
	}
}

func (s *Store) AppendHistory(_ context.Context, items []models.OrbitalElement) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	for _, it := range items {
		k := historyKey{objectID: it.ObjectID, epoch: it.Epoch.UnixNano(), provider: it.Provider}
		if prev, ok := s.history[k]; ok {
			it.CreatedAt = prev.CreatedAt
		} else {
			it.CreatedAt = now
		}
		it.UpdatedAt = now
		s.history[k] = it
	}
	return len(items), nil
}

func (s *Store) UpsertCurrentState(_ context.Context, items []models.OrbitalElement, preferred models.Provider) (int, error) {
	picked := repository.PickCurrent(items, preferred)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range picked {
		if cur, ok := s.current[it.ObjectID]; ok && !repository.Supersedes(it, cur, preferred) {
			continue
		}
		st := models.StateFromElement(it)
		st.UpdatedAt = time.Now().UTC()
		s.current[it.ObjectID] = st
		n++
	}
	return n, nil
}

func (s *Store) QueryTrailing(_ context.Context, q repository.TrailingQuery) (orbit.Series, error) {
	if !q.Provider.Valid() {
		return orbit.Series{}, orbit.ErrUnknownProvider
	}
	until := q.Until
	if until.IsZero() {
		until = time.Now().UTC()
	}
	s.mu.RLock()
	var items []models.OrbitalElement
	for k, it := range s.history {
		if k.objectID != q.ObjectID || k.provider != q.Provider {
			continue
		}
		if it.Epoch.After(until) {
			continue
		}
		if q.Window > 0 && it.Epoch.Before(until.Add(-q.Window)) {
			continue
		}
		items = append(items, it)
	}
	s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].Epoch.After(items[j].Epoch) })
	if limit := repository.TrailingLimit(q.Limit); len(items) > limit {
		items = items[:limit]
	}
	return orbit.NewSeries(q.ObjectID, q.Provider, items)
}

func (s *Store) LatestElement(_ context.Context, objectID string) (*models.OrbitalElement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best *models.OrbitalElement
	for k, it := range s.history {
		if k.objectID != objectID {
			continue
		}
		if best == nil || it.Epoch.After(best.Epoch) {
			cp := it
			best = &cp
		}
	}
	return best, nil
}

func (s *Store) GetObjectState(_ context.Context, objectID string) (*models.ObjectState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.current[objectID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// HistoryLen is the number of stored history rows.
func (s *Store) HistoryLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

func (s *Store) InsertSignalIfAbsent(_ context.Context, item *models.Signal) (bool, error) {
	if item == nil {
		return false, nil
	}
	if s.FailSignalInsert != nil {
		if err := s.FailSignalInsert(item); err != nil {
			return false, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPrint[item.Fingerprint]; ok {
		return false, nil
	}
	s.nextID++
	item.ID = s.nextID
	if item.Status == "" {
		item.Status = models.SignalActive
	}
	now := time.Now().UTC()
	item.CreatedAt, item.UpdatedAt = now, now
	s.byPrint[item.Fingerprint] = len(s.signals)
	s.signals = append(s.signals, *item)
	return true, nil
}

func (s *Store) ListSignals(_ context.Context, params repository.ListSignalsParams) ([]models.Signal, error) {
	s.mu.RLock()
	out := make([]models.Signal, 0, len(s.signals))
	for _, sig := range s.signals {
		if params.ObjectID != nil && strings.TrimSpace(*params.ObjectID) != "" && sig.ObjectID != strings.TrimSpace(*params.ObjectID) {
			continue
		}
		if params.Type != nil && *params.Type != "" && sig.SignalType != *params.Type {
			continue
		}
		if params.Status != nil && *params.Status != "" && sig.Status != *params.Status {
			continue
		}
		if params.Since != nil && sig.DetectedAt.Before(*params.Since) {
			continue
		}
		out = append(out, sig)
	}
	s.mu.RUnlock()

	asc := params.Asc != nil && *params.Asc
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].DetectedAt.Before(out[j].DetectedAt)
		}
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return page(out, params.Offset, params.Limit, 200), nil
}

func (s *Store) ExpireSignals(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.signals {
		if s.signals[i].Status == models.SignalActive && s.signals[i].ExpiresAt.Before(now) {
			s.signals[i].Status = models.SignalExpired
			s.signals[i].UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (s *Store) UpsertSourceHealth(_ context.Context, item *models.SourceHealth) error {
	if item == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if prev, ok := s.health[item.Provider]; ok {
		item.ID, item.CreatedAt = prev.ID, prev.CreatedAt
	} else {
		s.nextID++
		item.ID, item.CreatedAt = s.nextID, now
	}
	item.UpdatedAt = now
	s.health[item.Provider] = *item
	return nil
}

func (s *Store) ListSourceHealth(_ context.Context) ([]models.SourceHealth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SourceHealth, 0, len(s.health))
	for _, h := range s.health {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out, nil
}

func (s *Store) InsertTelemetryRun(_ context.Context, item *models.TelemetryRun) error {
	if item == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *item)
	return nil
}

func (s *Store) ListTelemetryRuns(_ context.Context, params repository.ListRunsParams) ([]models.TelemetryRun, error) {
	s.mu.RLock()
	out := make([]models.TelemetryRun, 0, len(s.runs))
	for _, r := range s.runs {
		if params.State != nil && *params.State != "" && r.State != *params.State {
			continue
		}
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return page(out, params.Offset, params.Limit, 50), nil
}

func page[T any](items []T, offset, limit, fallback int) []T {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = fallback
	}
	if limit > 500 {
		limit = 500
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

var _ repository.Repository = (*Store)(nil)
