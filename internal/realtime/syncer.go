package realtime

import (
	"context"
	"log"
	"sync"
	"time"

	model "github.com/taskboard/taskboard/internal/models"
)

// FetchFunc loads the full task list for the poll backstop. It should return
// the same slice of the collection the mirror is meant to track.
type FetchFunc func(ctx context.Context) ([]model.Task, error)

// Syncer keeps a Mirror converged with the store through two independent
// paths: the event subscription (fast) and a periodic full refetch (healing).
// Both paths feed the mirror's idempotent merge, so their interleaving is
// harmless. A dropped subscription resubscribes forever on a fixed backoff
// rather than leaving the mirror silently stale.
type Syncer struct {
	bus    Bus
	mirror *Mirror
	fetch  FetchFunc

	pollInterval    time.Duration
	resubscribeWait time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSyncer(bus Bus, mirror *Mirror, fetch FetchFunc, pollInterval, resubscribeWait time.Duration) *Syncer {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	if resubscribeWait <= 0 {
		resubscribeWait = 3 * time.Second
	}
	return &Syncer{
		bus:             bus,
		mirror:          mirror,
		fetch:           fetch,
		pollInterval:    pollInterval,
		resubscribeWait: resubscribeWait,
	}
}

// Start begins the subscription and poll loops. The initial fetch runs
// synchronously so the mirror is populated before Start returns.
func (s *Syncer) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	if err := s.refetch(ctx); err != nil {
		s.cancel()
		return err
	}

	s.wg.Add(2)
	go s.subscribeLoop(ctx)
	go s.pollLoop(ctx)
	return nil
}

func (s *Syncer) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Syncer) subscribeLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		events, err := s.bus.Subscribe(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("realtime: subscribe failed, retrying in %s: %v", s.resubscribeWait, err)
			if !s.sleep(ctx, s.resubscribeWait) {
				return
			}
			continue
		}

		for event := range events {
			s.mirror.Apply(event)
		}

		// Channel closed: the subscription dropped.
		if ctx.Err() != nil {
			return
		}
		log.Printf("realtime: subscription lost, resubscribing in %s", s.resubscribeWait)
		if !s.sleep(ctx, s.resubscribeWait) {
			return
		}
	}
}

func (s *Syncer) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.refetch(ctx); err != nil && ctx.Err() == nil {
				log.Printf("realtime: poll refetch failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Syncer) refetch(ctx context.Context) error {
	tasks, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	s.mirror.ReplaceAll(tasks)
	return nil
}

func (s *Syncer) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
