package realtime

import (
	"reflect"
	"testing"
	"time"

	"github.com/taskboard/taskboard/internal/constants"
	model "github.com/taskboard/taskboard/internal/models"
)

func makeTask(id string, updatedAt time.Time) *model.Task {
	return &model.Task{
		ID:           id,
		BusinessName: "Acme " + id,
		Brief:        "demo",
		Status:       constants.StatusOpen,
		UpdatedAt:    updatedAt,
	}
}

func TestMirrorInsertIsIdempotent(t *testing.T) {
	mirror := NewMirror()
	now := time.Now()

	mirror.Apply(Inserted(makeTask("a", now)))
	mirror.Apply(Inserted(makeTask("a", now)))

	if mirror.Len() != 1 {
		t.Errorf("duplicate insert must not duplicate the entry, got %d", mirror.Len())
	}
}

func TestMirrorUpdateIsIdempotent(t *testing.T) {
	mirror := NewMirror()
	now := time.Now()

	task := makeTask("a", now)
	task.Status = constants.StatusInProgressNoFile

	mirror.Apply(Inserted(makeTask("a", now.Add(-time.Second))))
	mirror.Apply(Updated(nil, task))
	once := mirror.All()

	mirror.Apply(Updated(nil, task))
	twice := mirror.All()

	if !reflect.DeepEqual(once, twice) {
		t.Error("applying the same update twice must not change the mirror")
	}
}

func TestMirrorDiscardsStaleUpdate(t *testing.T) {
	mirror := NewMirror()
	now := time.Now()

	current := makeTask("a", now)
	current.Status = constants.StatusInProgressNoFile
	mirror.Apply(Inserted(current))

	stale := makeTask("a", now.Add(-time.Minute))
	stale.Status = constants.StatusOpen
	mirror.Apply(Updated(nil, stale))

	got, ok := mirror.Get("a")
	if !ok {
		t.Fatal("task missing from mirror")
	}
	if got.Status != constants.StatusInProgressNoFile {
		t.Errorf("stale event must not overwrite newer state, got %s", got.Status)
	}
}

func TestMirrorUpdateUpsertsUnknownID(t *testing.T) {
	mirror := NewMirror()

	mirror.Apply(Updated(nil, makeTask("ghost", time.Now())))

	if _, ok := mirror.Get("ghost"); !ok {
		t.Error("update for an unknown id should upsert")
	}
}

func TestMirrorDeleteIsOrderTolerant(t *testing.T) {
	mirror := NewMirror()
	now := time.Now()

	// delete arriving before the insert is a no-op, not an error
	mirror.Apply(Deleted(makeTask("a", now)))
	if mirror.Len() != 0 {
		t.Errorf("expected empty mirror, got %d", mirror.Len())
	}

	mirror.Apply(Inserted(makeTask("a", now)))
	mirror.Apply(Deleted(makeTask("a", now)))
	if mirror.Len() != 0 {
		t.Errorf("expected empty mirror after delete, got %d", mirror.Len())
	}
}

func TestMirrorViewsFilterVisibilityFlags(t *testing.T) {
	mirror := NewMirror()
	now := time.Now()

	live := makeTask("live", now)
	archived := makeTask("archived", now)
	archived.IsArchived = true
	deleted := makeTask("deleted", now)
	deleted.IsDeleted = true
	deletedArchived := makeTask("both", now)
	deletedArchived.IsDeleted = true
	deletedArchived.IsArchived = true

	mirror.ReplaceAll([]model.Task{*live, *archived, *deleted, *deletedArchived})

	board := mirror.Board()
	if len(board) != 1 || board[0].ID != "live" {
		t.Errorf("unexpected board view: %+v", board)
	}

	archive := mirror.Archived()
	if len(archive) != 1 || archive[0].ID != "archived" {
		t.Errorf("unexpected archive view: %+v", archive)
	}
}

func TestMirrorReplaceAll(t *testing.T) {
	mirror := NewMirror()
	now := time.Now()

	mirror.Apply(Inserted(makeTask("gone", now)))
	mirror.ReplaceAll([]model.Task{*makeTask("a", now), *makeTask("b", now)})

	if mirror.Len() != 2 {
		t.Errorf("expected 2 tasks after replace, got %d", mirror.Len())
	}
	if _, ok := mirror.Get("gone"); ok {
		t.Error("replace must drop tasks absent from the fetched list")
	}
}

func TestMirrorSignalsAfterFinalMutation(t *testing.T) {
	mirror := NewMirror()
	now := time.Now()

	// rapid burst with nobody reading: signals coalesce
	for i := 0; i < 5; i++ {
		task := makeTask("a", now.Add(time.Duration(i)*time.Second))
		task.VersionNumber = i
		mirror.Apply(Updated(nil, task))
	}

	select {
	case <-mirror.Refresh():
	default:
		t.Fatal("a refresh signal must be pending after mutations")
	}

	// the state visible on that signal is the final one
	got, _ := mirror.Get("a")
	if got.VersionNumber != 4 {
		t.Errorf("expected final state v4, got v%d", got.VersionNumber)
	}

	select {
	case <-mirror.Refresh():
		t.Error("no further signal expected once drained")
	default:
	}
}
