package visitors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/quotegen/internal/docstore"
)

func stats(t *testing.T, store *docstore.Memory) int64 {
	t.Helper()
	s, err := store.Stats(context.Background(), docstore.StatsGeneral)
	require.NoError(t, err)
	return s.VisitorCount
}

func TestFirstActivationIncrementsOnce(t *testing.T) {
	store := docstore.NewMemory()
	c := NewCounter(store, NewMemoryFlags(0))
	ctx := context.Background()

	assert.True(t, c.Activate(ctx, "s1"))
	assert.False(t, c.Activate(ctx, "s1"))
	assert.False(t, c.Activate(ctx, "s1"))
	assert.True(t, c.Recorded("s1"))
	assert.Equal(t, int64(1), stats(t, store))
}

func TestDistinctSessionsEachCount(t *testing.T) {
	store := docstore.NewMemory()
	c := NewCounter(store, NewMemoryFlags(time.Hour))
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Activate(ctx, fmt.Sprintf("session-%d", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(n), stats(t, store))
}

func TestConcurrentActivationsOfOneSession(t *testing.T) {
	store := docstore.NewMemory()
	c := NewCounter(store, NewMemoryFlags(time.Hour))
	ctx := context.Background()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Activate(ctx, "same") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int64(1), stats(t, store))
}

// flakyStore fails the first n increments.
type flakyStore struct {
	*docstore.Memory
	failures atomic.Int32
}

func (f *flakyStore) Increment(ctx context.Context, docID string, delta int64) error {
	if f.failures.Add(-1) >= 0 {
		return errors.New("unavailable")
	}
	return f.Memory.Increment(ctx, docID, delta)
}

func TestFailedIncrementRetriesOnNextActivation(t *testing.T) {
	store := &flakyStore{Memory: docstore.NewMemory()}
	store.failures.Store(1)
	c := NewCounter(store, NewMemoryFlags(time.Hour))
	ctx := context.Background()

	assert.False(t, c.Activate(ctx, "s1"))
	assert.False(t, c.Recorded("s1"))
	assert.Equal(t, int64(0), stats(t, store.Memory))

	assert.True(t, c.Activate(ctx, "s1"))
	assert.Equal(t, int64(1), stats(t, store.Memory))
}

func TestExpiredFlagIsForgotten(t *testing.T) {
	store := docstore.NewMemory()
	flags := NewMemoryFlags(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	flags.now = func() time.Time { return now }
	c := NewCounter(store, flags)
	ctx := context.Background()

	require.True(t, c.Activate(ctx, "s1"))

	now = now.Add(30 * time.Second)
	assert.False(t, c.Activate(ctx, "s1"), "activity within the ttl keeps the flag")

	now = now.Add(2 * time.Minute)
	assert.False(t, c.Recorded("s1"))
}

func TestLiveSessionCountedOnceAcrossIdleAndRestart(t *testing.T) {
	store := docstore.NewMemory()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newServer := func() *httptest.Server {
		flags := NewMemoryFlags(30 * time.Minute)
		flags.now = func() time.Time { return now }
		r := chi.NewRouter()
		RegisterRoutes(r, NewCounter(store, flags), store)
		srv := httptest.NewServer(r)
		t.Cleanup(srv.Close)
		return srv
	}

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	visit := func(srv *httptest.Server) map[string]bool {
		resp, err := client.Post(srv.URL+"/api/visits", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		var body map[string]bool
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	first := newServer()
	assert.True(t, visit(first)["counted"])

	// The server-side flag has long expired but the browser session is live.
	now = now.Add(31 * time.Minute)
	body := visit(first)
	assert.False(t, body["counted"])
	assert.True(t, body["recorded"])

	// A restarted server has no flags at all.
	restarted := newServer()
	assert.False(t, visit(restarted)["counted"])

	assert.Equal(t, int64(1), stats(t, store))
}

func TestSweepDropsExpired(t *testing.T) {
	flags := NewMemoryFlags(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	flags.now = func() time.Time { return now }

	flags.Claim("a")
	now = now.Add(45 * time.Second)
	flags.Claim("b")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, flags.Sweep())
	assert.False(t, flags.Recorded("a"))
	assert.True(t, flags.Recorded("b"))
}

func TestWatchDeliversLiveTotal(t *testing.T) {
	store := docstore.NewMemory()
	c := NewCounter(store, NewMemoryFlags(0))
	ctx := context.Background()

	values := make(chan int64, 16)
	sub := c.Watch(func(n int64) { values <- n })
	defer sub.Unsubscribe()

	assert.Equal(t, int64(0), <-values)

	// Other sessions' visits reach a watcher that never activated.
	require.NoError(t, store.Increment(ctx, docstore.StatsGeneral, 1))
	c.Activate(ctx, "s2")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case v := <-values:
			if v == 2 {
				return
			}
		case <-deadline:
			t.Fatal("watcher never saw total of 2")
		}
	}
}

func TestVisitRoutes(t *testing.T) {
	store := docstore.NewMemory()
	counter := NewCounter(store, NewMemoryFlags(time.Hour))
	r := chi.NewRouter()
	RegisterRoutes(r, counter, store)
	srv := httptest.NewServer(r)
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	visit := func(c *http.Client) map[string]bool {
		resp, err := c.Post(srv.URL+"/api/visits", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		var body map[string]bool
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body
	}

	assert.True(t, visit(client)["counted"])
	assert.False(t, visit(client)["counted"], "same cookie, same session")

	other, _ := cookiejar.New(nil)
	assert.True(t, visit(&http.Client{Jar: other})["counted"])

	resp, err := http.Get(srv.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	var stats map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, int64(2), stats["visitor_count"])
}
