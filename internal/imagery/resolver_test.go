package imagery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biodex/internal/provider"
)

type stubSource struct {
	name  string
	url   string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Lookup(ctx context.Context, _ string) (string, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.url, s.err
}

func TestResolvePriorityOrder(t *testing.T) {
	first := &stubSource{name: "first", url: "https://img/first.jpg"}
	second := &stubSource{name: "second", url: "https://img/second.jpg"}

	u, src := NewResolver(first, second).ResolveSource(context.Background(), "Lobo", "1")
	assert.Equal(t, "https://img/first.jpg", u)
	assert.Equal(t, "first", src)
	assert.Zero(t, second.calls.Load())
}

func TestResolveFallsThrough(t *testing.T) {
	failing := &stubSource{name: "failing", err: errors.New("boom")}
	empty := &stubSource{name: "empty"}
	slow := &stubSource{name: "slow", url: "https://img/slow.jpg", delay: time.Second}
	good := &stubSource{name: "good", url: "https://img/good.jpg"}

	r := NewResolver(failing, empty, slow, good)
	r.Timeout = 20 * time.Millisecond

	u, src := r.ResolveSource(context.Background(), "Lobo", "1")
	assert.Equal(t, "https://img/good.jpg", u)
	assert.Equal(t, "good", src)
}

func TestResolvePlaceholderIsDeterministic(t *testing.T) {
	r := NewResolver(&stubSource{name: "a", err: errors.New("down")}, &stubSource{name: "b"})

	u1 := r.Resolve(context.Background(), "Bicho Raro", "48484")
	u2 := r.Resolve(context.Background(), "Bicho Raro", "48484")
	assert.Equal(t, "https://picsum.photos/seed/48484/400/300", u1)
	assert.Equal(t, u1, u2)

	assert.NotEqual(t, u1, r.Resolve(context.Background(), "Bicho Raro", "48485"))
}

func TestPlaceholderURL(t *testing.T) {
	p := Placeholder{Template: "http://localhost:8080/placeholder/{seed}.png"}
	assert.Equal(t, "http://localhost:8080/placeholder/a%2Fb.png", p.URL("a/b", ""))
	assert.Equal(t, "http://localhost:8080/placeholder/lobo.png", p.URL("", " Lobo "))
	assert.Equal(t, "http://localhost:8080/placeholder/biodex.png", p.URL("", ""))
}

func TestResolveCachesProviderHitsOnly(t *testing.T) {
	src := &stubSource{name: "src", url: "https://img/lobo.jpg"}
	r := NewResolver(src)
	r.Cache = NewLRU(10, time.Minute)

	assert.Equal(t, "https://img/lobo.jpg", r.Resolve(context.Background(), "Lobo", "1"))
	u, from := r.ResolveSource(context.Background(), "lobo", "1")
	assert.Equal(t, "https://img/lobo.jpg", u)
	assert.Equal(t, "cache", from)
	assert.EqualValues(t, 1, src.calls.Load())

	miss := NewResolver(&stubSource{name: "none"})
	lru := NewLRU(10, time.Minute)
	miss.Cache = lru
	miss.Resolve(context.Background(), "Bicho", "9")
	assert.Zero(t, lru.Len())
}

func TestLRUEvictionAndTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	c := NewLRU(2, time.Minute)
	c.now = func() time.Time { return now }

	c.Set(ctx, "a", "1")
	c.Set(ctx, "b", "2")
	_, _ = c.Get(ctx, "a")
	c.Set(ctx, "c", "3")

	_, ok := c.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry evicted")
	v, ok := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "c")
	assert.False(t, ok, "expired")
}

func TestTieredBackfills(t *testing.T) {
	ctx := context.Background()
	l1, l2 := NewLRU(4, time.Minute), NewLRU(4, time.Minute)
	l2.Set(ctx, "k", "v")

	v, ok := Tiered{l1, l2}.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	v, ok = l1.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestRedisCacheUnavailableIsMiss(t *testing.T) {
	rc := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rc.Close() })

	c := NewRedisCache(rc, time.Minute)
	c.Set(context.Background(), "k", "v")
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestProviderBackedSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/taxa":
			_, _ = w.Write([]byte(`{"results":[{"id":1,"default_photo":{"medium_url":"https://inat/taxon.jpg"}}]}`))
		case "/w/api.php":
			_, _ = w.Write([]byte(`{"query":{"pages":{"1":{"thumbnail":{"source":"https://wiki/page.jpg"}}}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	taxa := TaxonPhotos{INat: provider.NewINaturalist(srv.URL)}
	u, err := taxa.Lookup(context.Background(), "Lobo")
	require.NoError(t, err)
	assert.Equal(t, "https://inat/taxon.jpg", u)

	pages := PageImages{Wiki: provider.NewWikipedia(srv.URL)}
	u, err = pages.Lookup(context.Background(), "Lobo")
	require.NoError(t, err)
	assert.Equal(t, "https://wiki/page.jpg", u)
}
