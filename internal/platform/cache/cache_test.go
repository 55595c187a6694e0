package cache

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/logging"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.Now
	return New(store, WithClock(clock.Now), WithLogger(logging.Discard())), clock
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "employees||1|10", NewKey("employees", 1, 10).String())
	assert.Equal(t, "profile|u-1", NewKey("profile").Scoped("u-1").String())
	assert.Equal(t, `employees||a\|b`, NewKey("employees", "a|b").String())
	assert.NotEqual(t, NewKey("a", "b|c").String(), NewKey("a", "b", "c").String())
}

func TestQueryServesFreshEntry(t *testing.T) {
	c, clock := newTestCache(t)
	calls := 0
	fetch := func(context.Context) ([]department, error) {
		calls++
		return []department{{ID: "d1", Name: "Engineering"}}, nil
	}
	key := NewKey("departments")

	first, err := Query(context.Background(), c, key, 10*time.Minute, fetch)
	require.NoError(t, err)
	clock.Advance(9 * time.Minute)
	second, err := Query(context.Background(), c, key, 10*time.Minute, fetch)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestQueryRefetchesStaleEntry(t *testing.T) {
	c, clock := newTestCache(t)
	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}
	key := NewKey("employees", 1, 10)

	v, err := Query(context.Background(), c, key, 30*time.Second, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	clock.Advance(30 * time.Second)
	v, err = Query(context.Background(), c, key, 30*time.Second, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestQueryDoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache(t)
	calls := 0
	boom := errors.New("backend down")
	fetch := func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", boom
		}
		return "ok", nil
	}
	key := NewKey("requests")

	_, err := Query(context.Background(), c, key, time.Minute, fetch)
	require.ErrorIs(t, err, boom)

	v, err := Query(context.Background(), c, key, time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestQuerySharesConcurrentMisses(t *testing.T) {
	c, _ := newTestCache(t)
	var calls atomic.Int32
	release := make(chan struct{})
	fetch := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}
	key := NewKey("positions")

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Query(context.Background(), c, key, time.Minute, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestInvalidateForcesRefetchAcrossScopes(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	version := "v1"
	fetch := func(context.Context) (string, error) { return version, nil }

	pageOne := NewKey("requests", 1)
	mine := NewKey("requests", "mine").Scoped("user-1")
	other := NewKey("timesheets", 1)

	for _, k := range []Key{pageOne, mine, other} {
		_, err := Query(ctx, c, k, time.Hour, fetch)
		require.NoError(t, err)
	}

	version = "v2"
	require.NoError(t, c.Invalidate(ctx, "requests"))

	v, err := Query(ctx, c, pageOne, time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	v, err = Query(ctx, c, mine, time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	v, err = Query(ctx, c, other, time.Hour, fetch)
	require.NoError(t, err)
	assert.Equal(t, "v1", v, "unrelated resource keeps its entry")
}

func TestInvalidateDuringFetchDiscardsResult(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(context.Context) (string, error) {
		close(started)
		<-release
		return "old", nil
	}
	key := NewKey("employees", 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = Query(ctx, c, key, time.Hour, slow)
	}()
	<-started
	require.NoError(t, c.Invalidate(ctx, "employees"))
	close(release)
	<-done

	v, err := Query(ctx, c, key, time.Hour, func(context.Context) (string, error) { return "new", nil })
	require.NoError(t, err)
	assert.Equal(t, "new", v)
}

func TestQueryHonoursCallerCancellation(t *testing.T) {
	c, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Query(ctx, c, NewKey("team"), time.Minute, func(ctx context.Context) (int, error) {
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCancelledCallerDoesNotFailOtherWaiters(t *testing.T) {
	c, _ := newTestCache(t)
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]department, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []department{{ID: "d1", Name: "Engineering"}}, nil
	}
	key := NewKey("departments")

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := Query(first, c, key, time.Minute, fetch)
		firstErr <- err
	}()
	<-started

	type result struct {
		value []department
		err   error
	}
	second := make(chan result, 1)
	go func() {
		v, err := Query(context.Background(), c, key, time.Minute, fetch)
		second <- result{v, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)
	close(release)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "Engineering", got.value[0].Name)

	cached, err := Query(context.Background(), c, key, time.Minute, func(context.Context) ([]department, error) {
		t.Error("value should have been stored by the shared fetch")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

type tokenKey struct{}

func TestSharedUnauthorizedStaysWithItsCaller(t *testing.T) {
	c, _ := newTestCache(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fetch := func(ctx context.Context) (string, error) {
		n := calls.Add(1)
		if ctx.Value(tokenKey{}) == "expired" {
			if n == 1 {
				close(started)
				<-release
			}
			return "", &backend.Error{Backend: "primary", Status: http.StatusUnauthorized}
		}
		return "settings", nil
	}
	key := NewKey("credits.settings")

	expiredErr := make(chan error, 1)
	go func() {
		_, err := Query(context.WithValue(context.Background(), tokenKey{}, "expired"), c, key, time.Minute, fetch)
		expiredErr <- err
	}()
	<-started

	valid := make(chan error, 1)
	var got string
	go func() {
		v, err := Query(context.WithValue(context.Background(), tokenKey{}, "valid"), c, key, time.Minute, fetch)
		got = v
		valid <- err
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	assert.True(t, backend.IsUnauthorized(<-expiredErr))
	require.NoError(t, <-valid)
	assert.Equal(t, "settings", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemoryStoreExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := NewMemoryStore()
	store.now = clock.Now
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a|", Entry{Data: []byte(`1`)}, time.Second))
	_, ok, err := store.Get(ctx, "a|")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok, err = store.Get(ctx, "a|")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreClaim(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	store := NewMemoryStore()
	store.now = clock.Now
	ctx := context.Background()

	ok, err := store.Claim(ctx, "submit|k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Claim(ctx, "submit|k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(time.Minute)
	ok, err = store.Claim(ctx, "submit|k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	store, err := NewRedisStore(url)
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	entry := Entry{Data: []byte(`{"id":"d1"}`), FetchedAt: time.Now().UTC().Truncate(time.Millisecond)}
	require.NoError(t, store.Set(ctx, "redis-test|x|1", entry, time.Minute))
	require.NoError(t, store.Set(ctx, "redis-test|y|2", entry, time.Minute))

	got, ok, err := store.Get(ctx, "redis-test|x|1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, string(entry.Data), string(got.Data))
	assert.True(t, entry.FetchedAt.Equal(got.FetchedAt))

	removed, err := store.DeletePrefix(ctx, "redis-test|")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok, err = store.Get(ctx, "redis-test|x|1")
	require.NoError(t, err)
	assert.False(t, ok)

	claimed, err := store.Claim(ctx, "redis-test|claim", time.Second)
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = store.Claim(ctx, "redis-test|claim", time.Second)
	require.NoError(t, err)
	assert.False(t, claimed)
	_, err = store.DeletePrefix(ctx, "redis-test|")
	require.NoError(t, err)
}
