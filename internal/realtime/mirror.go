package realtime

import (
	"sync"

	model "github.com/taskboard/taskboard/internal/models"
)

// Mirror is a client-side copy of the task collection, kept consistent by
// merging bus events and periodic full refetches through the same idempotent
// rules. Events may arrive duplicated or out of order; Apply tolerates both.
type Mirror struct {
	mu    sync.RWMutex
	order []string
	tasks map[string]model.Task

	refresh chan struct{}
}

func NewMirror() *Mirror {
	return &Mirror{
		tasks:   make(map[string]model.Task),
		refresh: make(chan struct{}, 1),
	}
}

// Apply merges one event into the mirror:
//   - insert: ignored if the id is already present, so duplicates never
//     produce two entries;
//   - update: replaces the cached row, upserting if absent — but a stale
//     event whose updated_at is older than the cached row is discarded;
//   - delete: removes the id, silently succeeding when it is absent.
func (m *Mirror) Apply(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch event.Kind {
	case KindInsert:
		if event.After == nil {
			return
		}
		if _, ok := m.tasks[event.After.ID]; ok {
			return
		}
		m.tasks[event.After.ID] = *event.After
		m.order = append(m.order, event.After.ID)

	case KindUpdate:
		if event.After == nil {
			return
		}
		current, ok := m.tasks[event.After.ID]
		if ok && current.UpdatedAt.After(event.After.UpdatedAt) {
			return
		}
		if !ok {
			m.order = append(m.order, event.After.ID)
		}
		m.tasks[event.After.ID] = *event.After

	case KindDelete:
		id := event.TaskID()
		if _, ok := m.tasks[id]; !ok {
			return
		}
		delete(m.tasks, id)
		for i, existing := range m.order {
			if existing == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}

	default:
		return
	}

	m.signal()
}

// ReplaceAll swaps the entire mirror for a freshly fetched list. This is the
// self-healing path: whatever events were missed, the mirror now matches the
// store.
func (m *Mirror) ReplaceAll(tasks []model.Task) {
	m.mu.Lock()
	m.order = make([]string, 0, len(tasks))
	m.tasks = make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		if _, ok := m.tasks[t.ID]; ok {
			continue
		}
		m.tasks[t.ID] = t
		m.order = append(m.order, t.ID)
	}
	m.mu.Unlock()

	m.signal()
}

func (m *Mirror) Get(id string) (model.Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	return t, ok
}

func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

// Board returns the default view: live tasks that are neither deleted nor
// archived, in arrival order.
func (m *Mirror) Board() []model.Task {
	return m.snapshot(func(t model.Task) bool {
		return !t.IsDeleted && !t.IsArchived
	})
}

// Archived returns archived tasks; deleted rows are hidden here too.
func (m *Mirror) Archived() []model.Task {
	return m.snapshot(func(t model.Task) bool {
		return !t.IsDeleted && t.IsArchived
	})
}

// All returns every cached row, deleted included.
func (m *Mirror) All() []model.Task {
	return m.snapshot(func(model.Task) bool { return true })
}

func (m *Mirror) snapshot(keep func(model.Task) bool) []model.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Task, 0, len(m.order))
	for _, id := range m.order {
		if t, ok := m.tasks[id]; ok && keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Refresh signals after every accepted mutation. Signals coalesce while the
// consumer is busy, but one is always pending after the final mutation, so a
// view that re-reads on each signal never misses the final state.
func (m *Mirror) Refresh() <-chan struct{} {
	return m.refresh
}

func (m *Mirror) signal() {
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}
