package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taskboard/taskboard/internal/constants"
	dto "github.com/taskboard/taskboard/internal/data_models"
	model "github.com/taskboard/taskboard/internal/models"
	"github.com/taskboard/taskboard/internal/taskerr"
)

// View selects which visibility slice of the collection to list.
type View int

const (
	// ViewBoard is the default view: neither deleted nor archived.
	ViewBoard View = iota
	// ViewArchive holds archived, non-deleted tasks.
	ViewArchive
	// ViewAll mirrors the whole table, deleted rows included.
	ViewAll
)

type ListFilter struct {
	View      View
	Status    []constants.TaskStatus
	ClaimedBy string
}

// Predicate guards a conditional update. The update succeeds only if the
// stored row still matches every set field; zero rows affected means another
// actor got there first.
type Predicate struct {
	Status    []constants.TaskStatus
	ClaimedBy *string
	CreatedBy *string
	Version   *int

	// LegacyHasFile widens the Status clause to stored legacy "in_progress"
	// rows, which normalize on read by artifact presence: true admits rows
	// carrying a file, false admits rows without one. Nil leaves the clause
	// on Status alone.
	LegacyHasFile *bool
}

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Insert(ctx context.Context, req dto.CreateTaskRequest, createdBy string) (*model.Task, error) {
	task := &model.Task{
		ID:           uuid.NewString(),
		BusinessName: req.BusinessName,
		Brief:        req.Brief,
		Phone:        req.Phone,
		Address:      req.Address,
		Note:         req.Note,
		Status:       constants.StatusOpen,
		CreatedBy:    createdBy,
		CreatedAt:    time.Now().UTC(),
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}

	return task, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskerr.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) List(ctx context.Context, filter ListFilter) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{})

	switch filter.View {
	case ViewBoard:
		query = query.Where("is_deleted = ? AND is_archived = ?", false, false)
	case ViewArchive:
		query = query.Where("is_deleted = ? AND is_archived = ?", false, true)
	}
	if len(filter.Status) > 0 {
		query = query.Where("status IN ?", filter.Status)
	}
	if filter.ClaimedBy != "" {
		query = query.Where("claimed_by = ?", filter.ClaimedBy)
	}

	var tasks []model.Task
	err := query.Order("created_at desc").Find(&tasks).Error
	return tasks, err
}

// UpdateIf applies fields to the row only while it still matches pred, in a
// single statement. This is the sole concurrency guard in the system: zero
// rows affected means the expected prior state is gone and the caller gets
// ErrConflict, never a silent partial win.
func (r *TaskRepository) UpdateIf(ctx context.Context, id string, pred Predicate, fields map[string]interface{}) (*model.Task, error) {
	query := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND is_deleted = ?", id, false)

	if len(pred.Status) > 0 {
		switch {
		case pred.LegacyHasFile == nil:
			query = query.Where("status IN ?", pred.Status)
		case *pred.LegacyHasFile:
			query = query.Where("status IN ? OR (status = ? AND current_file_url IS NOT NULL)",
				pred.Status, constants.LegacyInProgress)
		default:
			query = query.Where("status IN ? OR (status = ? AND current_file_url IS NULL)",
				pred.Status, constants.LegacyInProgress)
		}
	}
	if pred.ClaimedBy != nil {
		query = query.Where("claimed_by = ?", *pred.ClaimedBy)
	}
	if pred.CreatedBy != nil {
		query = query.Where("created_by = ?", *pred.CreatedBy)
	}
	if pred.Version != nil {
		query = query.Where("version_number = ?", *pred.Version)
	}

	res := query.Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, taskerr.ErrConflict
	}

	return r.FindByID(ctx, id)
}

// SetCoordinates writes geocoding results unconditionally. Coordinates are
// not a contended resource, so no guard is needed.
func (r *TaskRepository) SetCoordinates(ctx context.Context, id string, lat, lng float64) (*model.Task, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"latitude": lat, "longitude": lng})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, taskerr.ErrTaskNotFound
	}
	return r.FindByID(ctx, id)
}

// SetArchived flips the archive flag on the given ids. It touches neither
// the state machine nor the delete flag.
func (r *TaskRepository) SetArchived(ctx context.Context, ids []string, archived bool) ([]model.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Update("is_archived", archived)
	if res.Error != nil {
		return nil, res.Error
	}

	var tasks []model.Task
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tasks).Error
	return tasks, err
}

// ArchiveCompletedBefore archives completed tasks older than the cutoff.
// Idempotent: already-archived rows are excluded from the count.
func (r *TaskRepository) ArchiveCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("status = ? AND is_archived = ? AND is_deleted = ? AND completed_at < ?",
			constants.StatusCompleted, false, false, cutoff).
		Update("is_archived", true)
	return res.RowsAffected, res.Error
}

// Purge permanently removes soft-deleted rows and reports how many went.
// Zero qualifying rows is a successful no-op.
func (r *TaskRepository) Purge(ctx context.Context) ([]model.Task, error) {
	var doomed []model.Task
	err := r.db.WithContext(ctx).Where("is_deleted = ?", true).Find(&doomed).Error
	if err != nil {
		return nil, err
	}
	if len(doomed) == 0 {
		return nil, nil
	}

	res := r.db.WithContext(ctx).Where("is_deleted = ?", true).Delete(&model.Task{})
	if res.Error != nil {
		return nil, res.Error
	}
	return doomed, nil
}

// DeleteArchived hard-deletes the selected archived rows.
func (r *TaskRepository) DeleteArchived(ctx context.Context, ids []string) ([]model.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var doomed []model.Task
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_archived = ?", ids, true).Find(&doomed).Error
	if err != nil {
		return nil, err
	}
	if len(doomed) == 0 {
		return nil, nil
	}

	doomedIDs := make([]string, 0, len(doomed))
	for _, t := range doomed {
		doomedIDs = append(doomedIDs, t.ID)
	}

	res := r.db.WithContext(ctx).Where("id IN ?", doomedIDs).Delete(&model.Task{})
	if res.Error != nil {
		return nil, res.Error
	}
	return doomed, nil
}
