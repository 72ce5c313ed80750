package services

import (
	"context"
	"log"
	"sync"
	"time"

	model "github.com/taskboard/taskboard/internal/models"
	"github.com/taskboard/taskboard/internal/realtime"
	repository "github.com/taskboard/taskboard/internal/repositories"
)

// LifecycleService covers the housekeeping layered on top of the workflow:
// archive flags, auto-archive of old completed tasks, and permanent removal
// of soft-deleted rows. None of it touches the state machine; visibility
// flags are last-write-wins by design of the data model.
type LifecycleService struct {
	repo *repository.TaskRepository
	bus  realtime.Bus

	stop    chan struct{}
	loopWG  sync.WaitGroup
	started bool
}

func NewLifecycleService(repo *repository.TaskRepository, bus realtime.Bus) *LifecycleService {
	return &LifecycleService{
		repo: repo,
		bus:  bus,
		stop: make(chan struct{}),
	}
}

// SetArchived flips the archive flag on one or more tasks.
func (s *LifecycleService) SetArchived(ctx context.Context, ids []string, archived bool) ([]model.Task, error) {
	tasks, err := s.repo.SetArchived(ctx, ids, archived)
	if err != nil {
		return nil, err
	}

	for i := range tasks {
		s.publish(ctx, realtime.Updated(nil, &tasks[i]))
	}
	return tasks, nil
}

// AutoArchive archives completed tasks whose completion is older than the
// retention window. Safe to trigger repeatedly; already-archived rows are
// skipped.
func (s *LifecycleService) AutoArchive(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	return s.repo.ArchiveCompletedBefore(ctx, cutoff)
}

// Purge permanently removes every soft-deleted task and reports the count.
// Nothing qualifying is a successful no-op.
func (s *LifecycleService) Purge(ctx context.Context) (int64, error) {
	doomed, err := s.repo.Purge(ctx)
	if err != nil {
		return 0, err
	}

	for i := range doomed {
		s.publish(ctx, realtime.Deleted(&doomed[i]))
	}
	return int64(len(doomed)), nil
}

// BulkDelete hard-deletes the selected archived tasks. Ids that are not
// archived are skipped rather than failing the batch.
func (s *LifecycleService) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	doomed, err := s.repo.DeleteArchived(ctx, ids)
	if err != nil {
		return 0, err
	}

	for i := range doomed {
		s.publish(ctx, realtime.Deleted(&doomed[i]))
	}
	return int64(len(doomed)), nil
}

// StartAutoArchive runs AutoArchive on a fixed interval until Shutdown.
func (s *LifecycleService) StartAutoArchive(interval, retention time.Duration) {
	if s.started {
		return
	}
	s.started = true

	s.loopWG.Add(1)
	go func() {
		defer s.loopWG.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				n, err := s.AutoArchive(context.Background(), retention)
				if err != nil {
					log.Printf("auto-archive: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("auto-archive: archived %d completed tasks", n)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *LifecycleService) Shutdown() {
	if !s.started {
		return
	}
	close(s.stop)
	s.loopWG.Wait()
}

func (s *LifecycleService) publish(ctx context.Context, event realtime.Event) {
	if err := s.bus.Publish(ctx, event); err != nil {
		log.Printf("realtime: publish %s for task %s failed: %v", event.Kind, event.TaskID(), err)
	}
}
