package session

import (
	"context"
	"sync"
	"time"
)

type ctxKey struct{}

// WithID attaches a session id to ctx.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IDFromContext returns the session id carried by ctx, or "".
func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Revocations remembers ended sessions until their tokens would have
// expired anyway.
type Revocations struct {
	mu  sync.Mutex
	ids map[string]time.Time
}

func NewRevocations() *Revocations {
	return &Revocations{ids: make(map[string]time.Time)}
}

func (r *Revocations) Revoke(id string, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[id] = until
	r.pruneLocked(time.Now())
}

func (r *Revocations) Revoked(id string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.ids[id]
	return ok && time.Now().Before(until)
}

func (r *Revocations) pruneLocked(now time.Time) {
	for id, until := range r.ids {
		if !now.Before(until) {
			delete(r.ids, id)
		}
	}
}
