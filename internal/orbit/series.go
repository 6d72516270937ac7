package orbit

import (
	"errors"
	"fmt"
	"sort"

	"orbitwatch/internal/models"
)

var (
	ErrMixedProviders  = errors.New("orbit: series mixes providers")
	ErrMixedObjects    = errors.New("orbit: series mixes objects")
	ErrUnknownProvider = errors.New("orbit: unknown provider")
)

// Series is an oldest-first sequence of element sets for one object from exactly
// one provider. The zero value is an empty series. It can only be built through
// NewSeries, so a detector handed a Series never sees mixed sources.
type Series struct {
	objectID string
	provider models.Provider
	points   []models.OrbitalElement
}

func NewSeries(objectID string, provider models.Provider, records []models.OrbitalElement) (Series, error) {
	if !provider.Valid() {
		return Series{}, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
	points := make([]models.OrbitalElement, 0, len(records))
	for _, r := range records {
		if r.Provider != provider {
			return Series{}, fmt.Errorf("%w: object %s has %s record in %s series", ErrMixedProviders, r.ObjectID, r.Provider, provider)
		}
		if r.ObjectID != objectID {
			return Series{}, fmt.Errorf("%w: %s record in %s series", ErrMixedObjects, r.ObjectID, objectID)
		}
		points = append(points, r)
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Epoch.Before(points[j].Epoch)
	})
	return Series{objectID: objectID, provider: provider, points: points}, nil
}

func (s Series) ObjectID() string          { return s.objectID }
func (s Series) Provider() models.Provider { return s.provider }
func (s Series) Len() int                  { return len(s.points) }

func (s Series) At(i int) models.OrbitalElement { return s.points[i] }

func (s Series) Oldest() (models.OrbitalElement, bool) {
	if len(s.points) == 0 {
		return models.OrbitalElement{}, false
	}
	return s.points[0], true
}

func (s Series) Latest() (models.OrbitalElement, bool) {
	if len(s.points) == 0 {
		return models.OrbitalElement{}, false
	}
	return s.points[len(s.points)-1], true
}

// Points returns a copy of the records, oldest first.
func (s Series) Points() []models.OrbitalElement {
	out := make([]models.OrbitalElement, len(s.points))
	copy(out, s.points)
	return out
}
