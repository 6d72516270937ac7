package source

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"orbitwatch/internal/client/celestrak"
	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
)

// CelestrakSource is provider A. Each element set arrives twice, as OMM JSON and
// as formatted lines; only objects present in both survive.
type CelestrakSource struct {
	Client *celestrak.Client
	// Group fetches one named listing and filters it. Empty queries each
	// watched catalog number on its own.
	Group  string
	Logger *zap.Logger
	Now    func() time.Time
}

func (s *CelestrakSource) Provider() models.Provider { return models.ProviderCelestrak }

func (s *CelestrakSource) Endpoint() string {
	if s == nil || s.Client == nil {
		return ""
	}
	return s.Client.Endpoint()
}

func (s *CelestrakSource) FetchCurrent(ctx context.Context, watchlist []string) ([]models.OrbitalElement, error) {
	if s == nil || s.Client == nil {
		return nil, &FetchError{Provider: models.ProviderCelestrak, Op: "init", Err: errNoClient}
	}
	watch := watchSet(watchlist)
	if len(watch) == 0 {
		return nil, nil
	}

	var queries []celestrak.Query
	if s.Group != "" {
		queries = []celestrak.Query{{Group: s.Group}}
	} else {
		for id := range watch {
			queries = append(queries, celestrak.Query{CatalogNumber: id})
		}
	}

	fetchedAt := s.now()
	out := make([]models.OrbitalElement, 0, len(watch))
	var lastErr *FetchError
	succeeded := 0
	for _, q := range queries {
		items, err := s.fetchQuery(ctx, q, watch, fetchedAt)
		if err != nil {
			lastErr = err
			s.logger().Warn("celestrak query failed",
				zap.String("group", q.Group),
				zap.String("catnr", q.CatalogNumber),
				zap.Bool("transient", err.Transient),
				zap.Error(err.Err),
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		succeeded++
		out = append(out, items...)
	}
	if succeeded == 0 && lastErr != nil {
		return nil, lastErr
	}
	return keepLatest(out), nil
}

func (s *CelestrakSource) fetchQuery(ctx context.Context, q celestrak.Query, watch map[string]struct{}, fetchedAt time.Time) ([]models.OrbitalElement, *FetchError) {
	gp, err := s.Client.FetchGP(ctx, q)
	if err != nil {
		return nil, newFetchError(models.ProviderCelestrak, "fetch gp", err)
	}
	if len(gp) == 0 {
		return nil, nil
	}
	text, err := s.Client.FetchTLE(ctx, q)
	if err != nil {
		return nil, newFetchError(models.ProviderCelestrak, "fetch tle", err)
	}
	return s.crossReference(gp, orbit.ParseTLEText(text), watch, fetchedAt), nil
}

func (s *CelestrakSource) crossReference(gp []celestrak.GPElement, lines map[string]orbit.TLE, watch map[string]struct{}, fetchedAt time.Time) []models.OrbitalElement {
	out := make([]models.OrbitalElement, 0, len(watch))
	for _, item := range gp {
		if item.NoradCatID == nil {
			continue
		}
		id := orbit.NormalizeCatalogID(strconv.Itoa(*item.NoradCatID))
		if _, ok := watch[id]; !ok {
			continue
		}
		tle, ok := lines[id]
		if !ok {
			s.logger().Debug("celestrak record without element lines", zap.String("object_id", id))
			continue
		}
		c := candidate{
			ObjectID:     id,
			Name:         item.ObjectName,
			MeanMotion:   item.MeanMotion,
			Eccentricity: item.Eccentricity,
			Inclination:  item.Inclination,
			RAAN:         item.RAOfAscNode,
			ArgPerigee:   item.ArgOfPericenter,
			MeanAnomaly:  item.MeanAnomaly,
			BStar:        item.BStar,
			Line1:        tle.Line1,
			Line2:        tle.Line2,
			epoch:        parseEpoch(item.Epoch),
		}
		el, err := c.toElement(models.ProviderCelestrak, fetchedAt)
		if err != nil {
			s.logger().Warn("celestrak record dropped", zap.String("object_id", id), zap.Error(err))
			continue
		}
		out = append(out, el)
	}
	return out
}

func (s *CelestrakSource) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *CelestrakSource) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
