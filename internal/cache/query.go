package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storefront/internal/metrics"

	"github.com/rs/zerolog"
)

// Key identifies a cached read. Resource and Scope form the invalidation
// unit; Variant distinguishes filtered views of the same data.
type Key struct {
	Resource string
	Scope    string
	Variant  string
}

// String renders the key as resource:scope[:variant].
func (k Key) String() string {
	if k.Variant == "" {
		return k.prefix()
	}
	return k.prefix() + ":" + k.Variant
}

func (k Key) prefix() string {
	return k.Resource + ":" + k.Scope
}

type loader func(ctx context.Context) ([]byte, error)

// Query caches read results and refetches them in the background after
// invalidation.
type Query struct {
	store  Store
	ttl    time.Duration
	logger zerolog.Logger

	mu          sync.Mutex
	loaders     map[string]loader
	generations map[string]uint64

	refetchTimeout time.Duration
	wg             sync.WaitGroup
}

// NewQuery creates a query cache over store. A non-positive ttl keeps
// entries until they are invalidated.
func NewQuery(store Store, ttl time.Duration, logger zerolog.Logger) *Query {
	return &Query{
		store:          store,
		ttl:            ttl,
		logger:         logger.With().Str("component", "cache").Logger(),
		loaders:        make(map[string]loader),
		generations:    make(map[string]uint64),
		refetchTimeout: 10 * time.Second,
	}
}

// Fetch returns the cached value for key, calling load on a miss. Store
// failures degrade to a direct load.
func Fetch[T any](ctx context.Context, q *Query, key Key, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	name := key.String()

	raw, ok, err := q.store.Get(ctx, name)
	if err != nil {
		q.logger.Warn().Err(err).Str("key", name).Msg("cache read failed")
	}
	if ok {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			metrics.CacheLookups.WithLabelValues(key.Resource, "hit").Inc()
			return value, nil
		}
		q.logger.Warn().Str("key", name).Msg("discarding undecodable cache entry")
	}
	metrics.CacheLookups.WithLabelValues(key.Resource, "miss").Inc()

	generation := q.generationOf(key.prefix())

	value, err := load(ctx)
	if err != nil {
		return zero, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return zero, fmt.Errorf("failed to encode cache entry %s: %w", name, err)
	}

	q.register(key, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})

	q.put(ctx, key.prefix(), name, encoded, generation)

	return value, nil
}

// Invalidate drops every variant cached for resource and scope, then
// refetches the dropped entries that have a known loader.
func (q *Query) Invalidate(ctx context.Context, resource, scope string) error {
	prefix := Key{Resource: resource, Scope: scope}.prefix()

	q.mu.Lock()
	q.generations[prefix]++
	q.mu.Unlock()

	removed, err := q.store.DeletePrefix(ctx, prefix)
	metrics.CacheInvalidations.WithLabelValues(resource).Inc()
	if err != nil {
		q.logger.Error().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
		return fmt.Errorf("failed to invalidate %s: %w", prefix, err)
	}

	q.logger.Debug().Str("prefix", prefix).Int("removed", len(removed)).Msg("cache invalidated")

	for _, name := range removed {
		q.mu.Lock()
		load, ok := q.loaders[name]
		q.mu.Unlock()
		if !ok {
			continue
		}
		q.wg.Add(1)
		go q.refetch(prefix, name, load)
	}

	return nil
}

// Wait blocks until in-flight refetches finish.
func (q *Query) Wait() {
	q.wg.Wait()
}

func (q *Query) refetch(prefix, name string, load loader) {
	defer q.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), q.refetchTimeout)
	defer cancel()

	generation := q.generationOf(prefix)

	encoded, err := load(ctx)
	if err != nil {
		q.logger.Warn().Err(err).Str("key", name).Msg("background refetch failed")
		return
	}

	q.put(ctx, prefix, name, encoded, generation)
}

// put stores encoded under name if prefix has not been invalidated since
// generation was read. An invalidation can land between the check and the
// write and find nothing to delete, so the generation is checked again
// after the write and the entry dropped if it moved.
func (q *Query) put(ctx context.Context, prefix, name string, encoded []byte, generation uint64) {
	if q.generationOf(prefix) != generation {
		return
	}
	if err := q.store.Set(ctx, name, encoded, q.ttl); err != nil {
		q.logger.Warn().Err(err).Str("key", name).Msg("cache write failed")
		return
	}
	if q.generationOf(prefix) == generation {
		return
	}
	if err := q.store.Delete(ctx, name); err != nil {
		q.logger.Warn().Err(err).Str("key", name).Msg("failed to drop stale cache entry")
	}
}

func (q *Query) register(key Key, load loader) {
	q.mu.Lock()
	q.loaders[key.String()] = load
	q.mu.Unlock()
}

func (q *Query) generationOf(prefix string) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.generations[prefix]
}
