// Package source adapts the two tracking providers to one normalized element
// record. Adapters are the only code that sees the providers' native shapes.
package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"orbitwatch/internal/models"
	"orbitwatch/internal/orbit"
)

// Source fetches the current element set for each watched object.
// An object missing from one response is not an error.
type Source interface {
	Provider() models.Provider
	Endpoint() string
	FetchCurrent(ctx context.Context, watchlist []string) ([]models.OrbitalElement, error)
}

// FetchError is the only error shape adapters return.
type FetchError struct {
	Provider models.Provider
	Op       string
	// Transient errors (timeouts, rate limits, 5xx, expired sessions) are left
	// for the next scheduled run.
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type statusCoder interface {
	StatusCode() int
}

func newFetchError(p models.Provider, op string, err error) *FetchError {
	return &FetchError{Provider: p, Op: op, Transient: isTransient(err), Err: err}
}

// AsFetchError returns err as a *FetchError, wrapping it for p when an adapter
// returned some other shape, such as a bare context deadline.
func AsFetchError(p models.Provider, op string, err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return newFetchError(p, op, err)
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		return code == http.StatusTooManyRequests || code >= 500
	}
	return false
}

// watchSet normalizes catalog ids the same way adapters normalize responses.
func watchSet(watchlist []string) map[string]struct{} {
	out := make(map[string]struct{}, len(watchlist))
	for _, raw := range watchlist {
		if id := orbit.NormalizeCatalogID(raw); id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

// keepLatest collapses duplicate rows for one object to the newest epoch.
func keepLatest(items []models.OrbitalElement) []models.OrbitalElement {
	idx := map[string]int{}
	out := make([]models.OrbitalElement, 0, len(items))
	for _, it := range items {
		if i, ok := idx[it.ObjectID]; ok {
			if it.Epoch.After(out[i].Epoch) {
				out[i] = it
			}
			continue
		}
		idx[it.ObjectID] = len(out)
		out = append(out, it)
	}
	return out
}
