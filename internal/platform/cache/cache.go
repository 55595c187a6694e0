package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/metrics"
)

// DefaultRetention is how long an entry outlives its stale time in the store.
// A stale entry is never served; retention only bounds memory.
const DefaultRetention = 5 * time.Minute

// DefaultFetchTimeout bounds a shared fetch once it no longer follows the
// context of the caller that started it.
const DefaultFetchTimeout = 30 * time.Second

type Option func(*Cache)

func WithMetrics(m *metrics.Collector) Option {
	return func(c *Cache) { c.metrics = m }
}

func WithLogger(log *logrus.Logger) Option {
	return func(c *Cache) { c.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithRetention(d time.Duration) Option {
	return func(c *Cache) { c.retention = d }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// Cache is the keyed query cache shared by every domain service. Concurrent
// misses for one key share a single backend call. Failed fetches are never
// stored.
type Cache struct {
	store     Store
	group     singleflight.Group
	metrics   *metrics.Collector
	log       *logrus.Logger
	now       func() time.Time
	retention time.Duration

	fetchTimeout time.Duration

	mu          sync.Mutex
	generations map[string]uint64
}

func New(store Store, opts ...Option) *Cache {
	c := &Cache{
		store:        store,
		log:          logrus.StandardLogger(),
		now:          time.Now,
		retention:    DefaultRetention,
		fetchTimeout: DefaultFetchTimeout,
		generations:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Store() Store {
	return c.store
}

// Query returns the cached value for key when it is younger than staleTime and
// otherwise calls fetch, stores the result and returns it.
//
// Concurrent misses share one fetch. That fetch runs detached from the
// caller that started it, so a caller going away only ends its own wait. A
// 401 belongs to the token that made the call: other waiters fetch again
// with their own credentials instead of inheriting it.
func Query[T any](ctx context.Context, c *Cache, key Key, staleTime time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	id := key.String()

	entry, ok, err := c.store.Get(ctx, id)
	if err != nil {
		c.log.WithError(err).WithField("key", id).Warn("cache read failed")
	}
	if ok && c.now().Sub(entry.FetchedAt) < staleTime {
		var out T
		if err := json.Unmarshal(entry.Data, &out); err == nil {
			c.metrics.RecordCache(key.Resource, "hit")
			return out, nil
		}
		c.log.WithField("key", id).Warn("cache entry undecodable, refetching")
	}
	if ok {
		c.metrics.RecordCache(key.Resource, "stale")
	} else {
		c.metrics.RecordCache(key.Resource, "miss")
	}

	gen := c.generation(key.Resource)
	flightKey := id + "#" + strconv.FormatUint(gen, 10)
	leader := false
	ch := c.group.DoChan(flightKey, func() (any, error) {
		leader = true
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()
		return c.fill(fetchCtx, key, id, gen, staleTime, func(ctx context.Context) (any, error) {
			return fetch(ctx)
		})
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Shared {
		c.metrics.RecordCache(key.Resource, "shared")
	}
	if res.Err != nil && !leader && backend.IsUnauthorized(res.Err) {
		c.log.WithField("key", id).Debug("shared fetch was unauthorized, fetching with own credentials")
		res.Val, res.Err = c.fill(ctx, key, id, gen, staleTime, func(ctx context.Context) (any, error) {
			return fetch(ctx)
		})
	}
	if res.Err != nil {
		return zero, res.Err
	}
	var out T
	if err := json.Unmarshal(res.Val.([]byte), &out); err != nil {
		return zero, errors.Wrapf(err, "decode %s", key.Resource)
	}
	return out, nil
}

// fill runs fetch and stores the encoded result unless the resource was
// invalidated after gen was read.
func (c *Cache) fill(ctx context.Context, key Key, id string, gen uint64, staleTime time.Duration, fetch func(context.Context) (any, error)) (any, error) {
	value, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", key.Resource)
	}
	if c.generation(key.Resource) == gen {
		entry := Entry{Data: data, FetchedAt: c.now()}
		if err := c.store.Set(ctx, id, entry, staleTime+c.retention); err != nil {
			c.log.WithError(err).WithField("key", id).Warn("cache write failed")
		}
	}
	return data, nil
}

// Invalidate drops every cached query of the given resources across all
// scopes. Fetches already in flight for them will not write their results.
func (c *Cache) Invalidate(ctx context.Context, resources ...string) error {
	for _, resource := range resources {
		c.mu.Lock()
		c.generations[resource]++
		c.mu.Unlock()
		removed, err := c.store.DeletePrefix(ctx, resourcePrefix(resource))
		if err != nil {
			return errors.Wrapf(err, "invalidate %s", resource)
		}
		c.metrics.RecordCache(resource, "invalidate")
		c.log.WithFields(logrus.Fields{"resource": resource, "removed": removed}).Debug("cache invalidated")
	}
	return nil
}

func (c *Cache) generation(resource string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[resource]
}

// Forget is Invalidate for mutation paths: the backend call already
// succeeded, so a failed invalidation is logged instead of reported.
func (c *Cache) Forget(ctx context.Context, resources ...string) {
	if err := c.Invalidate(ctx, resources...); err != nil {
		c.log.WithError(err).WithField("resources", resources).Error("cache invalidation failed")
	}
}
