package source

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"orbitwatch/internal/client/spacetrack"
	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
)

var errNoClient = errors.New("source client is not configured")

// SpaceTrackSource is provider B. It logs in on demand, reuses a cached
// session, and on a rejected session logs in once more and retries once.
type SpaceTrackSource struct {
	Client      *spacetrack.Client
	Credentials *spacetrack.CredentialHolder
	Logger      *zap.Logger
	Now         func() time.Time
}

func (s *SpaceTrackSource) Provider() models.Provider { return models.ProviderSpaceTrack }

func (s *SpaceTrackSource) Endpoint() string {
	if s == nil || s.Client == nil {
		return ""
	}
	return s.Client.Endpoint()
}

func (s *SpaceTrackSource) FetchCurrent(ctx context.Context, watchlist []string) ([]models.OrbitalElement, error) {
	if s == nil || s.Client == nil {
		return nil, &FetchError{Provider: models.ProviderSpaceTrack, Op: "init", Err: errNoClient}
	}
	if s.Credentials == nil {
		s.Credentials = &spacetrack.CredentialHolder{}
	}
	watch := watchSet(watchlist)
	if len(watch) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(watch))
	for id := range watch {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sess, err := s.session(ctx, false)
	if err != nil {
		return nil, err
	}
	rows, err := s.Client.QueryGP(ctx, sess, ids)
	if errors.Is(err, spacetrack.ErrUnauthorized) {
		s.logger().Info("spacetrack session rejected, logging in again")
		if ierr := s.Credentials.Invalidate(ctx); ierr != nil {
			s.logger().Warn("spacetrack session cache invalidate failed", zap.Error(ierr))
		}
		sess, err = s.session(ctx, true)
		if err != nil {
			return nil, err
		}
		rows, err = s.Client.QueryGP(ctx, sess, ids)
	}
	if err != nil {
		fe := newFetchError(models.ProviderSpaceTrack, "query gp", err)
		// A session rejected right after a fresh login is left to the next run.
		fe.Transient = fe.Transient || errors.Is(err, spacetrack.ErrUnauthorized)
		return nil, fe
	}

	fetchedAt := s.now()
	out := make([]models.OrbitalElement, 0, len(rows))
	for _, row := range rows {
		id := orbit.NormalizeCatalogID(row.NoradCatID)
		if _, ok := watch[id]; !ok {
			continue
		}
		el, err := fromGPRecord(id, row).toElement(models.ProviderSpaceTrack, fetchedAt)
		if err != nil {
			s.logger().Warn("spacetrack record dropped", zap.String("object_id", id), zap.Error(err))
			continue
		}
		out = append(out, el)
	}
	return keepLatest(out), nil
}

// session returns a usable session, logging in when none is cached or fresh is set.
func (s *SpaceTrackSource) session(ctx context.Context, fresh bool) (spacetrack.Session, error) {
	now := s.now()
	if !fresh {
		if sess, ok := s.Credentials.Current(ctx, now); ok {
			return sess, nil
		}
	}
	sess, err := s.Client.Login(ctx)
	if err != nil {
		return spacetrack.Session{}, newFetchError(models.ProviderSpaceTrack, "login", err)
	}
	if err := s.Credentials.Save(ctx, sess, now); err != nil {
		s.logger().Warn("spacetrack session cache write failed", zap.Error(err))
	}
	return sess, nil
}

func fromGPRecord(id string, row spacetrack.GPRecord) candidate {
	return candidate{
		ObjectID:     id,
		Name:         row.ObjectName,
		MeanMotion:   parseFloatPtr(row.MeanMotion),
		Eccentricity: parseFloatPtr(row.Eccentricity),
		Inclination:  parseFloatPtr(row.Inclination),
		RAAN:         parseFloatPtr(row.RAOfAscNode),
		ArgPerigee:   parseFloatPtr(row.ArgOfPericenter),
		MeanAnomaly:  parseFloatPtr(row.MeanAnomaly),
		BStar:        parseFloatPtr(row.BStar),
		Apoapsis:     parseFloatPtr(row.Apoapsis),
		Periapsis:    parseFloatPtr(row.Periapsis),
		Period:       parseFloatPtr(row.Period),
		Line1:        row.TLELine1,
		Line2:        row.TLELine2,
		epoch:        parseEpoch(row.Epoch),
	}
}

func (s *SpaceTrackSource) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *SpaceTrackSource) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
