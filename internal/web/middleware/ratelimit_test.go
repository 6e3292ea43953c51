package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, _ := l.Allow(ctx, "10.0.0.1")
	assert.False(t, ok, "third request in window")

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "other keys have their own budget")

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	assert.True(t, ok, "new window")
}

func TestMemoryLimiter_SweepsExpiredWindows(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	require.Len(t, l.windows, 2)

	now = now.Add(2 * time.Minute)
	_, _ = l.Allow(ctx, "c")
	assert.Len(t, l.windows, 1)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, "api", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, mr.Exists("ratelimit:api:10.0.0.1"))
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:api:10.0.0.1"))

	mr.FastForward(time.Minute)
	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_RestoresMissingTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, "api", 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set("ratelimit:api:10.0.0.1", "5"))
	assert.Zero(t, mr.TTL("ratelimit:api:10.0.0.1"))

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:api:10.0.0.1"))

	mr.FastForward(30 * time.Second)
	_, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL("ratelimit:api:10.0.0.1"), "window is not extended")

	mr.FastForward(30 * time.Second)
	ok, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiter_PrefixesAreIndependent(t *testing.T) {
	_, client := newTestRedis(t)
	api := NewRedisLimiter(client, "api", 1, time.Minute)
	imports := NewRedisLimiter(client, "import", 1, time.Minute)
	ctx := context.Background()

	ok, _ := api.Allow(ctx, "ip")
	assert.True(t, ok)
	ok, _ = imports.Allow(ctx, "ip")
	assert.True(t, ok)
	ok, _ = api.Allow(ctx, "ip")
	assert.False(t, ok)
}

func TestRateLimit_Rejects(t *testing.T) {
	h := RateLimit(NewMemoryLimiter(1, time.Minute))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE001")
}

func TestRateLimit_FailsOpenWhenRedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	h := RateLimit(NewRedisLimiter(client, "api", 1, time.Minute))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
