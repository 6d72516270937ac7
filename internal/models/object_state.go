package models

import "time"

// ObjectState is the latest known elements per object, preferring provider A.
type ObjectState struct {
	ObjectID string    `gorm:"primaryKey;type:varchar(16)" json:"object_id"`
	Provider Provider  `gorm:"type:varchar(20);not null" json:"provider"`
	Epoch    time.Time `gorm:"type:timestamptz;not null" json:"epoch"`
	Name     string    `gorm:"type:varchar(100)" json:"name"`

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

	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (ObjectState) TableName() string {
	return "tle_current"
}

func StateFromElement(e OrbitalElement) ObjectState {
	return ObjectState{
		ObjectID:       e.ObjectID,
		Provider:       e.Provider,
		Epoch:          e.Epoch,
		Name:           e.Name,
		MeanMotion:     e.MeanMotion,
		Eccentricity:   e.Eccentricity,
		InclinationDeg: e.InclinationDeg,
		RAANDeg:        e.RAANDeg,
		ArgPerigeeDeg:  e.ArgPerigeeDeg,
		MeanAnomalyDeg: e.MeanAnomalyDeg,
		BStar:          e.BStar,
		ApoapsisKm:     e.ApoapsisKm,
		PeriapsisKm:    e.PeriapsisKm,
		PeriodMinutes:  e.PeriodMinutes,
		Line1:          e.Line1,
		Line2:          e.Line2,
	}
}
