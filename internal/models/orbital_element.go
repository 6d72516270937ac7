package models

import "time"

// OrbitalElement is one element set for one object from one provider at one epoch.
// Rows are append-only; a provider re-issuing the same epoch overwrites in place.
type OrbitalElement struct {
	ObjectID string    `gorm:"primaryKey;type:varchar(16)" json:"object_id"`
	Epoch    time.Time `gorm:"primaryKey;type:timestamptz" json:"epoch"`
	Provider Provider  `gorm:"primaryKey;type:varchar(20)" json:"provider"`

	Name string `gorm:"type:varchar(100)" json:"name"`

	MeanMotion     float64 `gorm:"not null" json:"mean_motion"`
	Eccentricity   float64 `gorm:"not null" json:"eccentricity"`
	InclinationDeg float64 `gorm:"not null" json:"inclination_deg"`
	RAANDeg        float64 `gorm:"column:raan_deg;not null" json:"raan_deg"`
	ArgPerigeeDeg  float64 `gorm:"not null" json:"arg_perigee_deg"`
	MeanAnomalyDeg float64 `gorm:"not null" json:"mean_anomaly_deg"`
	BStar          float64 `gorm:"column:bstar;not null" json:"bstar"`
	ApoapsisKm     float64 `gorm:"not null" json:"apoapsis_km"`
	PeriapsisKm    float64 `gorm:"not null" json:"periapsis_km"`
	PeriodMinutes  float64 `gorm:"not null" json:"period_minutes"`
	Line1          string  `gorm:"column:tle_line1;type:varchar(80)" json:"tle_line1"`
	Line2          string  `gorm:"column:tle_line2;type:varchar(80)" json:"tle_line2"`

	FetchedAt time.Time `gorm:"type:timestamptz;not null" json:"fetched_at"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (OrbitalElement) TableName() string {
	return "tle_history"
}

// MeanAltitudeKm approximates altitude as the average of apoapsis and periapsis.
func (e OrbitalElement) MeanAltitudeKm() float64 {
	return (e.ApoapsisKm + e.PeriapsisKm) / 2
}
