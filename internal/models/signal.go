package models

import (
	"time"

	"gorm.io/datatypes"
)

type SignalType string

const (
	SignalStale        SignalType = "stale"
	SignalAltitudeDrop SignalType = "altitude_drop"
	SignalAltitudeRise SignalType = "altitude_rise"
	SignalDragSpike    SignalType = "drag_spike"

	SignalOrbitRaise  SignalType = "orbit_raise"
	SignalOrbitLower  SignalType = "orbit_lower"
	SignalPlaneChange SignalType = "plane_change"
)

// IsManeuver reports whether the type comes from the maneuver detector.
func (t SignalType) IsManeuver() bool {
	switch t {
	case SignalOrbitRaise, SignalOrbitLower, SignalPlaneChange:
		return true
	default:
		return false
	}
}

type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type SignalStatus string

const (
	SignalActive        SignalStatus = "active"
	SignalAcknowledged  SignalStatus = "acknowledged"
	SignalExpired       SignalStatus = "expired"
	SignalFalsePositive SignalStatus = "false_positive"
)

// SourceRef points a signal back at the element set that triggered it.
type SourceRef struct {
	ObjectID string    `json:"object_id"`
	Provider Provider  `json:"provider"`
	Epoch    time.Time `json:"epoch"`
}

// Signal is the persisted, user-visible unit of intelligence. Fingerprint is the
// dedup key: a colliding insert is a no-op.
type Signal struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Fingerprint string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"fingerprint"`
	SignalType  SignalType     `gorm:"type:varchar(30);not null;index" json:"signal_type"`
	Severity    Severity       `gorm:"type:varchar(10);not null" json:"severity"`
	ObjectID    string         `gorm:"type:varchar(16);not null;index" json:"object_id"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	SourceRefs  datatypes.JSON `gorm:"type:jsonb" json:"source_refs"`
	Metrics     datatypes.JSON `gorm:"type:jsonb" json:"metrics"`
	Status      SignalStatus   `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	DetectedAt time.Time `gorm:"type:timestamptz;not null;index" json:"detected_at"`
	ExpiresAt  time.Time `gorm:"type:timestamptz;not null;index" json:"expires_at"`
	CreatedAt  time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Signal) TableName() string {
	return "signals"
}
