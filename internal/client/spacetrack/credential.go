package spacetrack

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"orbitwatch/internal/cache"
)

const sessionKey = "spacetrack:session"

// CredentialHolder keeps the current session for the adapter. The cache lets a
// later one-shot invocation reuse an unexpired session instead of logging in.
type CredentialHolder struct {
	Cache cache.Store

	mu      sync.Mutex
	session Session
}

func (h *CredentialHolder) Current(ctx context.Context, now time.Time) (Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.session.Valid(now) {
		return h.session, true
	}
	if h.Cache == nil {
		return Session{}, false
	}
	raw, ok, err := h.Cache.Get(ctx, sessionKey)
	if err != nil || !ok {
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil || !s.Valid(now) {
		return Session{}, false
	}
	h.session = s
	return s, true
}

func (h *CredentialHolder) Save(ctx context.Context, s Session, now time.Time) error {
	h.mu.Lock()
	h.session = s
	h.mu.Unlock()
	if h.Cache == nil {
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ttl := time.Duration(0)
	if !s.ExpiresAt.IsZero() {
		ttl = s.ExpiresAt.Sub(now)
	}
	return h.Cache.Set(ctx, sessionKey, raw, ttl)
}

func (h *CredentialHolder) Invalidate(ctx context.Context) error {
	h.mu.Lock()
	h.session = Session{}
	h.mu.Unlock()
	if h.Cache == nil {
		return nil
	}
	return h.Cache.Delete(ctx, sessionKey)
}
