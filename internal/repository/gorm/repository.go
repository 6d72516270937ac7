package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
	"orbitwatch/internal/repository"
)

var elementColumns = []string{
	"name",
	"mean_motion",
	"eccentricity",
	"inclination_deg",
	"raan_deg",
	"arg_perigee_deg",
	"mean_anomaly_deg",
	"bstar",
	"apoapsis_km",
	"periapsis_km",
	"period_minutes",
	"tle_line1",
	"tle_line2",
}

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- history ----------------------------------------------------------------

func (s *Store) AppendHistory(ctx context.Context, items []models.OrbitalElement) (int, error) {
	if s == nil || s.db == nil || len(items) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "object_id"}, {Name: "epoch"}, {Name: "provider"}},
		DoUpdates: clause.AssignmentColumns(append(elementColumns, "fetched_at", "updated_at")),
	}).CreateInBatches(items, 200)
	if res.Error != nil {
		return 0, res.Error
	}
	return len(items), nil
}

func (s *Store) UpsertCurrentState(ctx context.Context, items []models.OrbitalElement, preferred models.Provider) (int, error) {
	if s == nil || s.db == nil || len(items) == 0 {
		return 0, nil
	}
	picked := repository.PickCurrent(items, preferred)
	states := make([]models.ObjectState, 0, len(picked))
	for _, it := range picked {
		states = append(states, models.StateFromElement(it))
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "object_id"}},
		DoUpdates: clause.AssignmentColumns(append(elementColumns, "provider", "epoch", "updated_at")),
		Where:     supersedesWhere(preferred),
	}).Create(&states)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// supersedesWhere mirrors repository.Supersedes for the upsert's DO UPDATE.
func supersedesWhere(preferred models.Provider) clause.Where {
	return clause.Where{Exprs: []clause.Expression{clause.Expr{
		SQL: "((excluded.provider = ? AND tle_current.provider <> ?) OR " +
			"((excluded.provider = ?) = (tle_current.provider = ?) AND excluded.epoch >= tle_current.epoch))",
		Vars: []any{preferred, preferred, preferred, preferred},
	}}}
}

func (s *Store) QueryTrailing(ctx context.Context, q repository.TrailingQuery) (orbit.Series, error) {
	if s == nil || s.db == nil {
		return orbit.NewSeries(q.ObjectID, q.Provider, nil)
	}
	if !q.Provider.Valid() {
		return orbit.Series{}, orbit.ErrUnknownProvider
	}
	until := q.Until
	if until.IsZero() {
		until = time.Now().UTC()
	}
	query := s.db.WithContext(ctx).Model(&models.OrbitalElement{}).
		Where("object_id = ?", q.ObjectID).
		Where("provider = ?", q.Provider).
		Where("epoch <= ?", until)
	if q.Window > 0 {
		query = query.Where("epoch >= ?", until.Add(-q.Window))
	}
	var items []models.OrbitalElement
	// Newest first so the cap keeps the most recent rows; NewSeries re-sorts.
	if err := query.Order("epoch desc").Limit(repository.TrailingLimit(q.Limit)).Find(&items).Error; err != nil {
		return orbit.Series{}, err
	}
	return orbit.NewSeries(q.ObjectID, q.Provider, items)
}

func (s *Store) LatestElement(ctx context.Context, objectID string) (*models.OrbitalElement, error) {
	if s == nil || s.db == nil || strings.TrimSpace(objectID) == "" {
		return nil, nil
	}
	var item models.OrbitalElement
	err := s.db.WithContext(ctx).
		Where("object_id = ?", strings.TrimSpace(objectID)).
		Order("epoch desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetObjectState(ctx context.Context, objectID string) (*models.ObjectState, error) {
	if s == nil || s.db == nil || strings.TrimSpace(objectID) == "" {
		return nil, nil
	}
	var item models.ObjectState
	err := s.db.WithContext(ctx).Where("object_id = ?", strings.TrimSpace(objectID)).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- signals ----------------------------------------------------------------

func (s *Store) InsertSignalIfAbsent(ctx context.Context, item *models.Signal) (bool, error) {
	if s == nil || s.db == nil || item == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "fingerprint"}},
		DoNothing: true,
	}).Create(item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) ListSignals(ctx context.Context, params repository.ListSignalsParams) ([]models.Signal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Signal{})
	if params.ObjectID != nil && strings.TrimSpace(*params.ObjectID) != "" {
		query = query.Where("object_id = ?", strings.TrimSpace(*params.ObjectID))
	}
	if params.Type != nil && *params.Type != "" {
		query = query.Where("signal_type = ?", *params.Type)
	}
	if params.Status != nil && *params.Status != "" {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("detected_at >= ?", *params.Since)
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "detected_at")
	var items []models.Signal
	if err := query.Limit(normalizeLimit(params.Limit, 200)).Offset(normalizeOffset(params.Offset)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ExpireSignals marks overdue active signals expired. Rows are kept.
func (s *Store) ExpireSignals(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	res := s.db.WithContext(ctx).Model(&models.Signal{}).
		Where("status = ?", models.SignalActive).
		Where("expires_at < ?", now).
		Updates(map[string]any{"status": models.SignalExpired, "updated_at": now})
	return res.RowsAffected, res.Error
}

// --- operations -------------------------------------------------------------

func (s *Store) UpsertSourceHealth(ctx context.Context, item *models.SourceHealth) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"endpoint",
			"last_poll_at",
			"last_error",
			"health_status",
			"last_records",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListSourceHealth(ctx context.Context) ([]models.SourceHealth, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.SourceHealth
	if err := s.db.WithContext(ctx).Order("provider asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) InsertTelemetryRun(ctx context.Context, item *models.TelemetryRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListTelemetryRuns(ctx context.Context, params repository.ListRunsParams) ([]models.TelemetryRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.TelemetryRun{})
	if params.State != nil && *params.State != "" {
		query = query.Where("state = ?", *params.State)
	}
	var items []models.TelemetryRun
	err := query.Order("started_at desc").
		Limit(normalizeLimit(params.Limit, 50)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	switch column {
	case "detected_at", "expires_at", "created_at", "severity", "signal_type":
	default:
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

var _ repository.Repository = (*Store)(nil)
