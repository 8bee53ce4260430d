package realtime

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) model.ChangeEvent {
	t.Helper()
	select {
	case e, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
		return model.ChangeEvent{}
	}
}

func TestTopic_Matches(t *testing.T) {
	tenant := uuid.New()
	e := model.ChangeEvent{Table: model.TableMenuItems, TenantID: tenant, Op: model.OpInsert}

	tests := []struct {
		name  string
		topic Topic
		want  bool
	}{
		{"wildcard", Topic{}, true},
		{"table only", Topic{Table: model.TableMenuItems}, true},
		{"tenant only", Topic{TenantID: tenant}, true},
		{"exact", Topic{Table: model.TableMenuItems, TenantID: tenant}, true},
		{"other table", Topic{Table: model.TablePromoBanners, TenantID: tenant}, false},
		{"other tenant", Topic{Table: model.TableMenuItems, TenantID: uuid.New()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.Matches(e))
		})
	}
}

func TestHub_PublishRoutesByTopic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	tenantA, tenantB := uuid.New(), uuid.New()

	subA := hub.Subscribe(ctx, Topic{Table: model.TableMenuItems, TenantID: tenantA}, 4)
	subB := hub.Subscribe(ctx, Topic{Table: model.TableMenuItems, TenantID: tenantB}, 4)

	hub.Publish(model.ChangeEvent{Table: model.TableMenuItems, TenantID: tenantA, Op: model.OpUpdate})

	got := receive(t, subA)
	assert.Equal(t, tenantA, got.TenantID)

	select {
	case e := <-subB.C:
		t.Fatalf("tenant B received %v", e)
	default:
	}
}

func TestHub_SlowSubscriberDropsEvents(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sub := hub.Subscribe(context.Background(), Topic{}, 1)
	defer sub.Close()

	e := model.ChangeEvent{Table: model.TableOpeningHours, TenantID: uuid.New(), Op: model.OpDelete}
	hub.Publish(e)
	hub.Publish(e) // dropped, must not block

	assert.Equal(t, e, receive(t, sub))
	select {
	case <-sub.C:
		t.Fatal("second event should have been dropped")
	default:
	}
}

func TestHub_ContextCancelClosesSubscription(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	sub := hub.Subscribe(ctx, Topic{}, 1)
	require.Equal(t, 1, hub.Len())

	cancel()

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed")
	}
	assert.Equal(t, 0, hub.Len())

	// Close after cancel is harmless.
	sub.Close()
}

func TestHub_CloseReleasesWatcher(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	before := runtime.NumGoroutine()

	subs := make([]*Subscription, 50)
	for i := range subs {
		subs[i] = hub.Subscribe(context.Background(), Topic{}, 1)
	}
	for _, sub := range subs {
		sub.Close()
	}

	assert.Equal(t, 0, hub.Len())
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 2*time.Second, 10*time.Millisecond)
}

type fakeCache struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeCache) Invalidate(_ context.Context, resource, scope string) error {
	f.mu.Lock()
	f.calls = append(f.calls, resource+":"+scope)
	f.mu.Unlock()
	return nil
}

func TestInvalidator_InvalidatesOnAnyOp(t *testing.T) {
	cache := &fakeCache{}
	inv := NewInvalidator(cache, zerolog.Nop())

	tenant := uuid.New()
	for _, op := range []model.ChangeOp{model.OpInsert, model.OpUpdate, model.OpDelete} {
		inv.Handle(context.Background(), model.ChangeEvent{Table: model.TablePromoBanners, TenantID: tenant, Op: op})
	}
	inv.Handle(context.Background(), model.ChangeEvent{Table: model.TablePromoBanners, Op: model.OpInsert})

	want := model.TablePromoBanners + ":" + tenant.String()
	assert.Equal(t, []string{want, want, want}, cache.calls)
}

// burstBroker replays events to the listener as fast as it accepts them.
type burstBroker struct {
	events []model.ChangeEvent
}

func (b *burstBroker) Publish(context.Context, model.ChangeEvent) error { return nil }

func (b *burstBroker) Listen(_ context.Context, fn func(model.ChangeEvent)) error {
	for _, e := range b.events {
		fn(e)
	}
	return nil
}

func (b *burstBroker) Close() error { return nil }

func TestPump_InvalidatesEveryEventInABurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zerolog.Nop())
	// A dashboard that never reads; its queue overflows immediately.
	stalled := hub.Subscribe(ctx, Topic{}, 1)
	defer stalled.Close()

	const tenants = 600
	broker := &burstBroker{}
	want := make([]string, 0, tenants)
	for i := 0; i < tenants; i++ {
		e := model.ChangeEvent{Table: model.TableMenuItems, TenantID: uuid.New(), Op: model.OpUpdate}
		broker.events = append(broker.events, e)
		want = append(want, model.TableMenuItems+":"+e.TenantID.String())
	}

	cache := &fakeCache{}
	require.NoError(t, Pump(ctx, broker, hub, NewInvalidator(cache, zerolog.Nop()), zerolog.Nop()))

	assert.Equal(t, want, cache.calls)
}

func TestNotify_InvalidatesThenPublishes(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(zerolog.Nop())
	cache := &fakeCache{}
	notify := NewNotify(cache, NewLocalBroker(hub), zerolog.Nop())

	tenant := uuid.New()
	sub := hub.Subscribe(ctx, Topic{Table: model.TableMenuItems, TenantID: tenant}, 1)
	defer sub.Close()

	notify.Changed(ctx, model.TableMenuItems, tenant, model.OpInsert)

	got := receive(t, sub)
	assert.Equal(t, model.OpInsert, got.Op)
	assert.Equal(t, []string{model.TableMenuItems + ":" + tenant.String()}, cache.calls)
}

func TestDecodeEvent(t *testing.T) {
	tenant := uuid.New()
	payload, err := encodeEvent(model.ChangeEvent{Table: model.TableRestaurantInfo, TenantID: tenant, Op: model.OpUpdate})
	require.NoError(t, err)

	e, err := decodeEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, tenant, e.TenantID)

	_, err = decodeEvent([]byte(`{"op":"INSERT"}`))
	assert.Error(t, err)

	_, err = decodeEvent([]byte(`not json`))
	assert.Error(t, err)
}
