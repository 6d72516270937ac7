package models

import "time"

// SourceHealth records the outcome of the latest poll per provider.
type SourceHealth struct {
	ID           uint64     `gorm:"primaryKey;autoIncrement"`
	Provider     Provider   `gorm:"type:varchar(20);uniqueIndex;not null"`
	Endpoint     string     `gorm:"type:varchar(500)"`
	LastPollAt   *time.Time `gorm:"type:timestamptz"`
	LastError    *string    `gorm:"type:text"`
	HealthStatus string     `gorm:"type:varchar(20);default:'unknown'"`
	LastRecords  int        `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (SourceHealth) TableName() string {
	return "source_health"
}
