package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dish struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "menu_items:t1", Key{Resource: "menu_items", Scope: "t1"}.String())
	assert.Equal(t, "menu_items:t1:available", Key{Resource: "menu_items", Scope: "t1", Variant: "available"}.String())
}

func TestFetch_HitAndMiss(t *testing.T) {
	ctx := context.Background()
	q := NewQuery(NewMemoryStore(), time.Minute, zerolog.Nop())
	key := Key{Resource: "menu_items", Scope: "t1"}

	var calls int32
	load := func(ctx context.Context) ([]dish, error) {
		atomic.AddInt32(&calls, 1)
		return []dish{{Name: "Jollof Rice", Price: 1800}}, nil
	}

	first, err := Fetch(ctx, q, key, load)
	require.NoError(t, err)
	second, err := Fetch(ctx, q, key, load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_LoadErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	q := NewQuery(NewMemoryStore(), time.Minute, zerolog.Nop())
	key := Key{Resource: "menu_items", Scope: "t1"}
	boom := errors.New("connection refused")

	_, err := Fetch(ctx, q, key, func(ctx context.Context) ([]dish, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	got, err := Fetch(ctx, q, key, func(ctx context.Context) ([]dish, error) { return []dish{{Name: "Zobo"}}, nil })
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestInvalidate_RefetchesAllVariants(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	q := NewQuery(store, time.Minute, zerolog.Nop())

	menu := []dish{{Name: "Puff Puff", Price: 500}}
	load := func(ctx context.Context) ([]dish, error) { return append([]dish(nil), menu...), nil }

	all := Key{Resource: "menu_items", Scope: "t1"}
	public := Key{Resource: "menu_items", Scope: "t1", Variant: "available"}
	other := Key{Resource: "menu_items", Scope: "t2"}

	_, err := Fetch(ctx, q, all, load)
	require.NoError(t, err)
	_, err = Fetch(ctx, q, public, load)
	require.NoError(t, err)
	_, err = Fetch(ctx, q, other, load)
	require.NoError(t, err)

	menu = append(menu, dish{Name: "Suya Platter", Price: 2500})
	require.NoError(t, q.Invalidate(ctx, "menu_items", "t1"))
	q.Wait()

	// Refetched entries are served without calling the loader again.
	noLoad := func(ctx context.Context) ([]dish, error) {
		t.Fatal("loader should not run after refetch")
		return nil, nil
	}
	got, err := Fetch(ctx, q, all, noLoad)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = Fetch(ctx, q, public, noLoad)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// The other tenant keeps its entry.
	got, err = Fetch(ctx, q, other, noLoad)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestFetch_InvalidationDuringLoadSkipsWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	q := NewQuery(store, time.Minute, zerolog.Nop())
	key := Key{Resource: "opening_hours", Scope: "t1"}

	_, err := Fetch(ctx, q, key, func(ctx context.Context) (int, error) {
		require.NoError(t, q.Invalidate(ctx, "opening_hours", "t1"))
		return 1, nil
	})
	require.NoError(t, err)
	q.Wait()

	_, ok, err := store.Get(ctx, key.String())
	require.NoError(t, err)
	assert.False(t, ok)
}

// racingStore runs beforeSet once, right before the first write reaches
// the backing store.
type racingStore struct {
	Store
	once      sync.Once
	beforeSet func()
}

func (r *racingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.once.Do(r.beforeSet)
	return r.Store.Set(ctx, key, value, ttl)
}

func TestFetch_InvalidationBeforeWriteDropsStaleEntry(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{Store: NewMemoryStore()}
	q := NewQuery(store, time.Minute, zerolog.Nop())
	key := Key{Resource: "menu_items", Scope: "t1"}

	var mu sync.Mutex
	menu := []dish{{Name: "Jollof Rice", Price: 1800}}
	load := func(ctx context.Context) ([]dish, error) {
		mu.Lock()
		defer mu.Unlock()
		return append([]dish(nil), menu...), nil
	}

	store.beforeSet = func() {
		mu.Lock()
		menu = append(menu, dish{Name: "Suya Platter", Price: 2500})
		mu.Unlock()
		assert.NoError(t, q.Invalidate(ctx, "menu_items", "t1"))
	}

	first, err := Fetch(ctx, q, key, load)
	require.NoError(t, err)
	assert.Len(t, first, 1)
	q.Wait()

	got, err := Fetch(ctx, q, key, load)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRefetch_InvalidationBeforeWriteDropsStaleEntry(t *testing.T) {
	ctx := context.Background()
	store := &racingStore{Store: NewMemoryStore()}
	q := NewQuery(store, time.Minute, zerolog.Nop())
	key := Key{Resource: "promo_banners", Scope: "t1"}

	var version int32 = 1
	load := func(ctx context.Context) (int32, error) { return atomic.LoadInt32(&version), nil }

	// Prime the entry without tripping the hook.
	store.once.Do(func() {})
	_, err := Fetch(ctx, q, key, load)
	require.NoError(t, err)

	// The refetch triggered below loads version 2; before it is written a
	// second change lands and invalidates again.
	store.once = sync.Once{}
	store.beforeSet = func() {
		atomic.StoreInt32(&version, 3)
		assert.NoError(t, q.Invalidate(ctx, "promo_banners", "t1"))
	}
	atomic.StoreInt32(&version, 2)
	require.NoError(t, q.Invalidate(ctx, "promo_banners", "t1"))
	q.Wait()

	got, err := Fetch(ctx, q, key, load)
	require.NoError(t, err)
	assert.Equal(t, int32(3), got)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, _ := store.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStore_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "promo_banners:a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "promo_banners:a:live", []byte("2"), 0))
	require.NoError(t, store.Set(ctx, "promo_banners:b", []byte("3"), 0))

	removed, err := store.DeletePrefix(ctx, "promo_banners:a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"promo_banners:a", "promo_banners:a:live"}, removed)

	_, ok, _ := store.Get(ctx, "promo_banners:b")
	assert.True(t, ok)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "menu_items:a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "menu_items:a:available", []byte("2"), 0))

	require.NoError(t, store.Delete(ctx, "menu_items:a"))
	require.NoError(t, store.Delete(ctx, "menu_items:missing"))

	_, ok, _ := store.Get(ctx, "menu_items:a")
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, "menu_items:a:available")
	assert.True(t, ok)
}
