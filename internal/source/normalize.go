package source

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
)

var errNoEpoch = errors.New("epoch missing or unparseable")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("tle", func(fl validator.FieldLevel) bool {
		return orbit.ValidChecksum(fl.Field().String())
	})
	return v
}

// candidate is the provider-neutral intermediate shape. Pointers mark fields a
// feed may omit; a nil required field drops the record rather than letting a
// false zero reach the detectors.
type candidate struct {
	ObjectID     string   `validate:"required,max=16"`
	Name         string   `validate:"max=100"`
	MeanMotion   *float64 `validate:"required,gt=0,lt=20"`
	Eccentricity *float64 `validate:"required,gte=0,lt=1"`
	Inclination  *float64 `validate:"required,gte=0,lte=180"`
	RAAN         *float64 `validate:"required,gte=0,lt=360"`
	ArgPerigee   *float64 `validate:"required,gte=0,lt=360"`
	MeanAnomaly  *float64 `validate:"required,gte=0,lt=360"`
	BStar        *float64 `validate:"required"`
	Apoapsis     *float64 `validate:"omitempty,gt=-200"`
	Periapsis    *float64 `validate:"omitempty,gt=-200"`
	Period       *float64 `validate:"omitempty,gt=0"`
	Line1        string   `validate:"required,tle"`
	Line2        string   `validate:"required,tle"`

	epoch time.Time
}

func (c candidate) toElement(p models.Provider, fetchedAt time.Time) (models.OrbitalElement, error) {
	if c.epoch.IsZero() {
		return models.OrbitalElement{}, errNoEpoch
	}
	if err := validate.Struct(c); err != nil {
		return models.OrbitalElement{}, err
	}
	if id, ok := orbit.CatalogNumber(c.Line1); !ok || id != c.ObjectID {
		return models.OrbitalElement{}, fmt.Errorf("tle catalog number %q does not match %s", id, c.ObjectID)
	}

	apo, peri, period := c.Apoapsis, c.Periapsis, c.Period
	if apo == nil || peri == nil || period == nil {
		g, ok := orbit.DeriveGeometry(*c.MeanMotion, *c.Eccentricity)
		if !ok {
			return models.OrbitalElement{}, errors.New("cannot derive orbit geometry")
		}
		apo, peri, period = &g.ApoapsisKm, &g.PeriapsisKm, &g.PeriodMinutes
	}

	return models.OrbitalElement{
		ObjectID:       c.ObjectID,
		Epoch:          c.epoch,
		Provider:       p,
		Name:           c.Name,
		MeanMotion:     *c.MeanMotion,
		Eccentricity:   *c.Eccentricity,
		InclinationDeg: *c.Inclination,
		RAANDeg:        *c.RAAN,
		ArgPerigeeDeg:  *c.ArgPerigee,
		MeanAnomalyDeg: *c.MeanAnomaly,
		BStar:          *c.BStar,
		ApoapsisKm:     *apo,
		PeriapsisKm:    *peri,
		PeriodMinutes:  *period,
		Line1:          c.Line1,
		Line2:          c.Line2,
		FetchedAt:      fetchedAt,
	}, nil
}

var epochLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseEpoch reads provider epochs, which carry no zone and are UTC.
func parseEpoch(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range epochLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseFloatPtr returns nil for blank or malformed input.
func parseFloatPtr(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}
