package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-mc/lantern/core"
)

func newTestClient(t *testing.T, opts Options) *Client {
	t.Helper()
	if opts.Backoff == 0 {
		opts.Backoff = time.Millisecond
	}
	if opts.HostSpacing == 0 {
		opts.HostSpacing = time.Millisecond
	}
	return NewClient(NewCache(), opts)
}

func TestGetJSONCachesWithinTTL(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"value": 42}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Options{DefaultTTL: time.Minute})

	var first, second struct {
		Value int `json:"value"`
	}
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, time.Minute, &first))
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, time.Minute, &second))

	assert.Equal(t, int32(1), calls.Load(), "second call must be served from cache")
	assert.Equal(t, 42, second.Value)
}

func TestGetText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain body"))
	}))
	defer srv.Close()

	c := newTestClient(t, Options{})

	body, err := c.GetText(context.Background(), srv.URL, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "plain body", body)
}

func TestDistinctHeadersAreDistinctCacheEntries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Options{})

	var v map[string]any
	keyed := http.Header{"X-Api-Key": []string{"secret"}}
	require.NoError(t, c.GetJSONWithHeaders(context.Background(), srv.URL, nil, time.Minute, &v))
	require.NoError(t, c.GetJSONWithHeaders(context.Background(), srv.URL, keyed, time.Minute, &v))

	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryBoundOnServerError(t *testing.T) {
	var calls atomic.Int32
	var stamps []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		stamps = append(stamps, time.Now())
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, Options{Attempts: 3, Backoff: 10 * time.Millisecond})

	var v map[string]any
	err := c.GetJSON(context.Background(), srv.URL, -1, &v)

	require.Error(t, err)
	var se *core.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, int32(3), calls.Load(), "exactly 3 attempts")

	// Backoff must not decrease between attempts.
	require.Len(t, stamps, 3)
	gap1 := stamps[1].Sub(stamps[0])
	gap2 := stamps[2].Sub(stamps[1])
	assert.GreaterOrEqual(t, gap2, gap1)
}

func TestPermanentStatusFailsImmediately(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, Options{Attempts: 3})

	var v map[string]any
	err := c.GetJSON(context.Background(), srv.URL, -1, &v)

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "404 must not retry")
}

func TestRateLimitSurfacesDistinctly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, Options{Attempts: 2})

	var v map[string]any
	err := c.GetJSON(context.Background(), srv.URL, -1, &v)

	assert.ErrorIs(t, err, core.ErrRateLimited)
}

func TestStaleCacheServedOnExhaustion(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"value": "good"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Options{Attempts: 2})

	var v struct {
		Value string `json:"value"`
	}
	// Populate the cache with a very short TTL, then let it expire.
	require.NoError(t, c.GetJSON(context.Background(), srv.URL, time.Millisecond, &v))
	time.Sleep(5 * time.Millisecond)

	fail.Store(true)
	v.Value = ""
	err := c.GetJSON(context.Background(), srv.URL, time.Millisecond, &v)

	require.NoError(t, err, "expired entry must be served when retries exhaust")
	assert.Equal(t, "good", v.Value)
}

func TestOfflineNoCacheIsDistinctError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on

	c := newTestClient(t, Options{Attempts: 2})

	var v map[string]any
	err := c.GetJSON(context.Background(), url, time.Minute, &v)

	assert.ErrorIs(t, err, core.ErrOffline)
	assert.NotErrorIs(t, err, core.ErrRateLimited)
}

func TestHostGateSpacesRequests(t *testing.T) {
	var stamps []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stamps = append(stamps, time.Now())
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	spacing := 30 * time.Millisecond
	c := newTestClient(t, Options{HostSpacing: spacing})

	var v map[string]any
	require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/a", -1, &v))
	require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/b", -1, &v))

	require.Len(t, stamps, 2)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), spacing-5*time.Millisecond)
}

func TestRoundTripperRoutesThroughCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, Options{DefaultTTL: time.Minute})
	httpClient := c.HTTPClient()

	for i := 0; i < 2; i++ {
		resp, err := httpClient.Get(srv.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenDoesNotCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("jar bytes"))
	}))
	defer srv.Close()

	c := newTestClient(t, Options{})

	for i := 0; i < 2; i++ {
		body, _, err := c.Open(context.Background(), srv.URL)
		require.NoError(t, err)
		_ = body.Close()
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestCacheKeyNormalizesHeaders(t *testing.T) {
	a := CacheKey("GET", "https://example.com/x", http.Header{"X-Api-Key": []string{"k"}, "Accept": []string{"application/json"}})
	b := CacheKey("GET", "https://example.com/x", http.Header{"Accept": []string{"application/json"}, "X-Api-Key": []string{"k"}})
	assert.Equal(t, a, b)

	c := CacheKey("POST", "https://example.com/x", nil)
	assert.NotEqual(t, a, c)
}

func TestGateContextCancellation(t *testing.T) {
	g := newHostGate(time.Hour)
	require.NoError(t, g.Wait(context.Background(), "h"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.Wait(ctx, "h")
	assert.True(t, errors.Is(err, context.Canceled))
}
