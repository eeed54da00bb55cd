package query

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/logging"
	"github.com/riskibarqy/sports-scoreboard/internal/platform/resilience"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/metric"
)

const defaultWorkers = 16

type entry struct {
	status    Status
	value     any
	err       error
	updatedAt time.Time
}

func (e entry) settled() bool {
	return e.status == StatusSuccess || e.status == StatusError
}

func (e entry) fresh(now time.Time, staleTime time.Duration) bool {
	return e.status == StatusSuccess && staleTime > 0 && now.Sub(e.updatedAt) < staleTime
}

func (e entry) result(fetching bool) Result[any] {
	switch e.status {
	case StatusSuccess:
		return Result[any]{Status: StatusSuccess, Data: e.value, UpdatedAt: e.updatedAt, Fetching: fetching}
	case StatusError:
		return Result[any]{Status: StatusError, Err: e.err, UpdatedAt: e.updatedAt, Fetching: fetching}
	default:
		return loading[any]()
	}
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries  int   `json:"entries"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Fetches  int64 `json:"fetches"`
	Failures int64 `json:"failures"`
	InFlight int   `json:"inFlight"`
}

type Config struct {
	// Workers bounds concurrent background fetches. Overflow runs on plain goroutines.
	Workers int
	// MaxEntries bounds the number of keys kept; zero is unbounded.
	MaxEntries int
	Logger     *logging.Logger
	Meter      metric.Meter
}

// Cache owns the state of every query key: its settled value or error, and the
// single in-flight fetch that may be refreshing it. Entries are only ever
// replaced wholesale.
type Cache struct {
	mu         sync.Mutex
	entries    map[Key]entry
	maxEntries int

	flight resilience.Group[Key]
	pool   *ants.Pool
	logger *logging.Logger
	inst   instruments
	now    func() time.Time

	hits     atomic.Int64
	misses   atomic.Int64
	fetches  atomic.Int64
	failures atomic.Int64
}

func NewCache(cfg Config) (*Cache, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create query worker pool: %w", err)
	}

	c := &Cache{
		entries:    make(map[Key]entry),
		maxEntries: max(cfg.MaxEntries, 0),
		pool:       pool,
		logger:     logger.Named("query"),
		inst:       newInstruments(cfg.Meter),
		now:        time.Now,
	}
	c.flight.Launch = pool.Submit
	return c, nil
}

// Close releases the worker pool. In-flight fetches still complete.
func (c *Cache) Close() {
	c.pool.Release()
}

// Fetch returns the settled state of key, waiting for a fetch when nothing is
// cached yet. Stale data is returned immediately while a background
// revalidation runs. Only the caller's wait honours ctx; the fetch itself
// keeps running so other observers still get the value.
func (c *Cache) Fetch(ctx context.Context, key Key, producer Producer, opts Options) Result[any] {
	if !opts.Enabled {
		return idle[any]()
	}

	e, ok := c.lookup(key)
	if ok && e.fresh(c.now(), opts.StaleTime) {
		c.recordHit(ctx, key)
		return e.result(false)
	}
	c.recordMiss(ctx, key)

	if ok && e.status == StatusSuccess {
		c.start(ctx, key, producer, opts)
		return e.result(true)
	}

	c.markLoading(key)
	done := c.start(ctx, key, producer, opts)
	select {
	case out := <-done:
		settled, _ := out.Val.(entry)
		return settled.result(false)
	case <-ctx.Done():
		return failed[any](ctx.Err(), c.now())
	}
}

// Observe returns the current state of key without waiting. A missing key
// reports loading while its first fetch runs in the background; stale data
// and errors stay visible with Fetching set while they are refreshed.
func (c *Cache) Observe(ctx context.Context, key Key, producer Producer, opts Options) Result[any] {
	if !opts.Enabled {
		return idle[any]()
	}

	e, ok := c.lookup(key)
	if ok && e.fresh(c.now(), opts.StaleTime) {
		c.recordHit(ctx, key)
		return e.result(false)
	}
	c.recordMiss(ctx, key)

	if !ok {
		c.markLoading(key)
	}
	c.start(ctx, key, producer, opts)

	if !ok || !e.settled() {
		return loading[any]()
	}
	return e.result(true)
}

// FetchAs is Fetch with a typed result.
func FetchAs[T any](ctx context.Context, c *Cache, key Key, producer Producer, opts Options) Result[T] {
	return Convert[T](c.Fetch(ctx, key, producer, opts))
}

// ObserveAs is Observe with a typed result.
func ObserveAs[T any](ctx context.Context, c *Cache, key Key, producer Producer, opts Options) Result[T] {
	return Convert[T](c.Observe(ctx, key, producer, opts))
}

// Invalidate drops the cached entry for key. A fetch already in flight still
// settles and repopulates it.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateWhere drops every entry whose key matches.
func (c *Cache) InvalidateWhere(match func(Key) bool) int {
	if match == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// InvalidateLeague drops every entry of one kind for a league. An empty kind
// matches all kinds.
func (c *Cache) InvalidateLeague(kind, league string) int {
	return c.InvalidateWhere(func(k Key) bool {
		return k.League == league && (kind == "" || k.Kind == kind)
	})
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) Stats() Stats {
	return Stats{
		Entries:  c.Len(),
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Fetches:  c.fetches.Load(),
		Failures: c.failures.Load(),
		InFlight: c.flight.InFlight(),
	}
}

func (c *Cache) lookup(key Key) (entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) markLoading(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.evictLocked()
	c.entries[key] = entry{status: StatusLoading}
}

func (c *Cache) settle(key Key, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.evictLocked()
	}
	c.entries[key] = e
}

// evictLocked makes room for one more key by dropping the oldest settled
// entry. Loading entries are never evicted. Must be called with c.mu held.
func (c *Cache) evictLocked() {
	if c.maxEntries == 0 || len(c.entries) < c.maxEntries {
		return
	}

	var (
		oldestKey Key
		oldestAt  time.Time
		found     bool
	)
	for key, e := range c.entries {
		if !e.settled() {
			continue
		}
		if !found || e.updatedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = key, e.updatedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

// start joins or launches the single flight for key. The flight always
// resolves to an entry value; producer errors live inside it.
func (c *Cache) start(ctx context.Context, key Key, producer Producer, opts Options) <-chan resilience.Outcome {
	fetchCtx := context.WithoutCancel(ctx)
	return c.flight.DoChan(key, func() (any, error) {
		return c.load(fetchCtx, key, producer, opts), nil
	})
}

func (c *Cache) load(ctx context.Context, key Key, producer Producer, opts Options) entry {
	attempts := opts.attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		c.fetches.Add(1)
		c.inst.add(ctx, c.inst.fetches, key)

		value, err := invoke(ctx, producer)
		if err == nil {
			e := entry{status: StatusSuccess, value: value, updatedAt: c.now()}
			c.settle(key, e)
			return e
		}
		lastErr = err

		if attempt < attempts {
			c.logger.WarnContext(ctx, "query fetch failed, retrying",
				"key", key.String(),
				"attempt", attempt,
				"max_attempts", attempts,
				"error", err,
			)
			if opts.RetryDelay > 0 {
				time.Sleep(opts.RetryDelay)
			}
		}
	}

	c.failures.Add(1)
	c.inst.add(ctx, c.inst.failures, key)
	c.logger.WarnContext(ctx, "query fetch failed", "key", key.String(), "attempts", attempts, "error", lastErr)

	e := entry{status: StatusError, err: lastErr, updatedAt: c.now()}
	c.settle(key, e)
	return e
}

func invoke(ctx context.Context, producer Producer) (value any, err error) {
	if producer == nil {
		return nil, fmt.Errorf("query: producer is required")
	}

	var catcher panics.Catcher
	catcher.Try(func() {
		value, err = producer(ctx)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		return nil, recovered.AsError()
	}
	return value, err
}

func (c *Cache) recordHit(ctx context.Context, key Key) {
	c.hits.Add(1)
	c.inst.add(ctx, c.inst.hits, key)
}

func (c *Cache) recordMiss(ctx context.Context, key Key) {
	c.misses.Add(1)
	c.inst.add(ctx, c.inst.misses, key)
}
