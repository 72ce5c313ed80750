package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	model "github.com/taskboard/taskboard/internal/models"
)

// fakeStore is the syncer's view of the record store: a list snapshot the
// poll backstop fetches.
type fakeStore struct {
	mu    sync.Mutex
	tasks []model.Task
}

func (s *fakeStore) set(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
}

func (s *fakeStore) fetch(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...), nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSyncerAppliesBusEvents(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	store := &fakeStore{}
	mirror := NewMirror()
	syncer := NewSyncer(bus, mirror, store.fetch, time.Hour, 10*time.Millisecond)

	if err := syncer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer syncer.Shutdown()

	if err := bus.Publish(context.Background(), Inserted(makeTask("a", time.Now()))); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	waitFor(t, "event to reach mirror", func() bool {
		_, ok := mirror.Get("a")
		return ok
	})
}

func TestSyncerInitialFetchPopulatesMirror(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	store := &fakeStore{}
	store.set([]model.Task{*makeTask("seed", time.Now())})
	mirror := NewMirror()
	syncer := NewSyncer(bus, mirror, store.fetch, time.Hour, 10*time.Millisecond)

	if err := syncer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer syncer.Shutdown()

	if _, ok := mirror.Get("seed"); !ok {
		t.Error("mirror should hold seeded tasks after Start")
	}
}

func TestSyncerPollHealsMissedEvents(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	store := &fakeStore{}
	mirror := NewMirror()
	syncer := NewSyncer(bus, mirror, store.fetch, 20*time.Millisecond, 10*time.Millisecond)

	if err := syncer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer syncer.Shutdown()

	// the store changes without any event reaching the bus
	store.set([]model.Task{*makeTask("missed", time.Now())})

	waitFor(t, "poll to heal the mirror", func() bool {
		_, ok := mirror.Get("missed")
		return ok
	})
}

// flakyBus drops its first subscription immediately, as a lost connection
// would, then serves a working one.
type flakyBus struct {
	inner      *MemoryBus
	mu         sync.Mutex
	subscribes int
}

func (b *flakyBus) Publish(ctx context.Context, event Event) error {
	return b.inner.Publish(ctx, event)
}

func (b *flakyBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	b.mu.Lock()
	b.subscribes++
	first := b.subscribes == 1
	b.mu.Unlock()

	if first {
		dead := make(chan Event)
		close(dead)
		return dead, nil
	}
	return b.inner.Subscribe(ctx)
}

func (b *flakyBus) subscribeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribes
}

func TestSyncerResubscribesAfterStreamLoss(t *testing.T) {
	bus := &flakyBus{inner: NewMemoryBus()}
	defer bus.inner.Close()

	store := &fakeStore{}
	mirror := NewMirror()
	syncer := NewSyncer(bus, mirror, store.fetch, time.Hour, 10*time.Millisecond)

	if err := syncer.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer syncer.Shutdown()

	waitFor(t, "resubscribe", func() bool {
		return bus.subscribeCount() >= 2
	})

	// give the second subscription a moment to register, then publish
	waitFor(t, "event after resubscribe", func() bool {
		bus.Publish(context.Background(), Inserted(makeTask("late", time.Now())))
		_, ok := mirror.Get("late")
		return ok
	})
}

func TestMemoryBusFanOut(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	second, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, Inserted(makeTask("a", time.Now()))); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	for _, events := range []<-chan Event{first, second} {
		select {
		case event := <-events:
			if event.TaskID() != "a" {
				t.Errorf("wrong event: %+v", event)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber never received the event")
		}
	}
}

func TestMemoryBusSubscriptionClosesOnCancel(t *testing.T) {
	bus := NewMemoryBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	cancel()

	select {
	case _, open := <-events:
		if open {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel never closed")
	}
}
