package models

import (
	"time"

	"gorm.io/datatypes"
)

type RunState string

const (
	RunSuccess RunState = "success"
	RunPartial RunState = "partial"
	RunFailed  RunState = "failed"
)

// TelemetryRun is the persisted report of one orchestrated ingest/detect cycle.
type TelemetryRun struct {
	ID    string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	State RunState `gorm:"type:varchar(10);not null;index" json:"state"`

	RecordsCelestrak  int `gorm:"not null" json:"records_celestrak"`
	RecordsSpaceTrack int `gorm:"not null" json:"records_spacetrack"`
	Anomalies         int `gorm:"not null" json:"anomalies"`
	Maneuvers         int `gorm:"not null" json:"maneuvers"`
	SignalsCreated    int `gorm:"not null" json:"signals_created"`
	SignalsExpired    int `gorm:"not null" json:"signals_expired"`

	HealthProvider   string `gorm:"type:varchar(20)" json:"health_provider"`
	ManeuverProvider string `gorm:"type:varchar(20)" json:"maneuver_provider"`
	Degraded         bool   `gorm:"not null" json:"degraded"`
	BudgetExceeded   bool   `gorm:"not null" json:"budget_exceeded"`

	Errors datatypes.JSON `gorm:"type:jsonb" json:"errors"`

	StartedAt  time.Time `gorm:"type:timestamptz;not null;index" json:"started_at"`
	FinishedAt time.Time `gorm:"type:timestamptz;not null" json:"finished_at"`
}

func (TelemetryRun) TableName() string {
	return "telemetry_runs"
}
