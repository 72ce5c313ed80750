package services

import (
	"context"
	"log"
	"time"

	"github.com/taskboard/taskboard/internal/blob"
	"github.com/taskboard/taskboard/internal/constants"
	dto "github.com/taskboard/taskboard/internal/data_models"
	"github.com/taskboard/taskboard/internal/geocode"
	"github.com/taskboard/taskboard/internal/identity"
	model "github.com/taskboard/taskboard/internal/models"
	"github.com/taskboard/taskboard/internal/realtime"
	repository "github.com/taskboard/taskboard/internal/repositories"
	"github.com/taskboard/taskboard/internal/taskerr"
)

// WorkflowService owns the task state machine. Every transition is a single
// conditional update keyed on the expected prior status; there are no locks.
// Two callers racing on the same precondition means exactly one wins and the
// rest get ErrConflict.
type WorkflowService struct {
	repo  *repository.TaskRepository
	bus   realtime.Bus
	blobs blob.Store
	geo   geocode.Geocoder

	geocodeTimeout time.Duration
}

func NewWorkflowService(
	repo *repository.TaskRepository,
	bus realtime.Bus,
	blobs blob.Store,
	geo geocode.Geocoder,
) *WorkflowService {
	return &WorkflowService{
		repo:           repo,
		bus:            bus,
		blobs:          blobs,
		geo:            geo,
		geocodeTimeout: 15 * time.Second,
	}
}

// statuses a transition may start from, including legacy aliases still in
// stored rows. Predicates run in the store, so aliases must appear there even
// though reads normalize them away. Legacy "in_progress" is ambiguous: whether
// it counts as uploadable or reviewable depends on artifact presence, so the
// predicates carry it as a file-aware clause instead of a list entry.
var (
	reviewableStatuses = []constants.TaskStatus{
		constants.StatusInProgressWithFile,
		constants.LegacyAwaitingApproval,
	}
	uploadableStatuses = []constants.TaskStatus{
		constants.StatusInProgressNoFile,
		constants.StatusFeedbackNeeded,
	}
	revertableStatuses = []constants.TaskStatus{
		constants.StatusInProgressNoFile,
		constants.StatusInProgressWithFile,
		constants.StatusFeedbackNeeded,
		constants.StatusCompleted,
		constants.LegacyInProgress,
		constants.LegacyAwaitingApproval,
	}

	legacyWithFile    = true
	legacyWithoutFile = false
)

func (s *WorkflowService) Create(ctx context.Context, caller identity.Principal, req dto.CreateTaskRequest) (*model.Task, error) {
	if req.BusinessName == "" || req.Brief == "" {
		return nil, taskerr.ErrValidation
	}

	task, err := s.repo.Insert(ctx, req, caller.UserID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.Inserted(task))
	return task, nil
}

func (s *WorkflowService) Get(ctx context.Context, id string) (*model.Task, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *WorkflowService) ListBoard(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx, repository.ListFilter{View: repository.ViewBoard})
}

func (s *WorkflowService) ListArchive(ctx context.Context) ([]model.Task, error) {
	return s.repo.List(ctx, repository.ListFilter{View: repository.ViewArchive})
}

// Claim assigns an open task to the caller. At most one of any number of
// concurrent claimants succeeds.
func (s *WorkflowService) Claim(ctx context.Context, caller identity.Principal, id string) (*model.Task, error) {
	now := time.Now().UTC()

	task, err := s.repo.UpdateIf(ctx, id,
		repository.Predicate{Status: []constants.TaskStatus{constants.StatusOpen}},
		map[string]interface{}{
			"status":     constants.StatusInProgressNoFile,
			"taken_by":   caller.DisplayName,
			"claimed_by": caller.UserID,
			"claimed_at": now,
		})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.Updated(nil, task))
	return task, nil
}

// UploadFile stores one deliverable version and moves the task to
// in_progress_with_file. The version guard in the predicate makes concurrent
// uploads of the same base version conflict instead of both appending.
func (s *WorkflowService) UploadFile(ctx context.Context, caller identity.Principal, id, filename string, data []byte, contentType string) (*model.Task, error) {
	if filename == "" || len(data) == 0 {
		return nil, taskerr.ErrValidation
	}

	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	objectPath := blob.ArtifactPath(id, filename, now)
	if err := s.blobs.Put(ctx, objectPath, data, contentType); err != nil {
		return nil, err
	}
	fileURL := s.blobs.PublicURL(objectPath)

	nextVersion := task.VersionNumber + 1
	versions, err := task.AppendVersion(model.VersionEntry{
		URL:        fileURL,
		Version:    nextVersion,
		UploadedAt: now,
		UploadedBy: caller.UserID,
	})
	if err != nil {
		return nil, err
	}

	pred := repository.Predicate{
		Status:        uploadableStatuses,
		LegacyHasFile: &legacyWithoutFile,
		Version:       &task.VersionNumber,
	}
	if task.ClaimedBy != nil {
		pred.ClaimedBy = task.ClaimedBy
	}

	updated, err := s.repo.UpdateIf(ctx, id, pred, map[string]interface{}{
		"status":           constants.StatusInProgressWithFile,
		"current_file_url": fileURL,
		"version_number":   nextVersion,
		"versions":         versions,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.Updated(task, updated))
	return updated, nil
}

// Approve completes a reviewed task. Geocoding of the task address runs in
// the background after the transition commits; its failure never unwinds the
// approval.
func (s *WorkflowService) Approve(ctx context.Context, reviewer identity.Principal, id string) (*model.Task, error) {
	now := time.Now().UTC()

	task, err := s.repo.UpdateIf(ctx, id,
		repository.Predicate{Status: reviewableStatuses, LegacyHasFile: &legacyWithFile},
		map[string]interface{}{
			"status":       constants.StatusCompleted,
			"approved_by":  reviewer.UserID,
			"approved_at":  now,
			"completed_at": now,
			"map_status":   constants.MapStatusPending,
		})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.Updated(nil, task))

	if task.Address != "" && task.Latitude == nil {
		go s.geocodeTask(task.ID, task.Address)
	}

	return task, nil
}

// RequestChanges records reviewer feedback against the current version and
// sends the task back to the claimant. Appending the entry, setting
// has_feedback, and flipping the status happen in one conditional write, so
// there is no window where feedback exists but the status lags. The version
// guard in the predicate keeps the entry's version tag honest: an upload
// landing between the read and the write turns into a conflict instead of
// feedback filed against a superseded version.
func (s *WorkflowService) RequestChanges(ctx context.Context, reviewer identity.Principal, id, comment string) (*model.Task, error) {
	if comment == "" {
		return nil, taskerr.ErrValidation
	}

	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.Status.InProgressWithFile() {
		return nil, taskerr.ErrConflict
	}

	feedback, err := task.AppendFeedback(model.FeedbackEntry{
		Comment:   comment,
		Author:    reviewer.DisplayName,
		Version:   task.VersionNumber,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	pred := repository.Predicate{
		Status:        reviewableStatuses,
		LegacyHasFile: &legacyWithFile,
		Version:       &task.VersionNumber,
	}
	if task.ClaimedBy != nil {
		pred.ClaimedBy = task.ClaimedBy
	}

	updated, err := s.repo.UpdateIf(ctx, id, pred, map[string]interface{}{
		"status":       constants.StatusFeedbackNeeded,
		"feedback":     feedback,
		"has_feedback": true,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.Updated(task, updated))
	return updated, nil
}

// Revert walks a task back to the in-progress state matching its artifacts:
// with-file when an upload exists, no-file otherwise. Approval bookkeeping
// and the field-visit status are cleared.
func (s *WorkflowService) Revert(ctx context.Context, caller identity.Principal, id string) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.Status.Active() && task.Status != constants.StatusCompleted {
		return nil, taskerr.ErrConflict
	}

	target := constants.StatusInProgressNoFile
	if task.CurrentFileURL != nil {
		target = constants.StatusInProgressWithFile
	}

	updated, err := s.repo.UpdateIf(ctx, id,
		repository.Predicate{Status: revertableStatuses},
		map[string]interface{}{
			"status":       target,
			"approved_by":  nil,
			"approved_at":  nil,
			"completed_at": nil,
			"map_status":   constants.MapStatusNone,
		})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.Updated(task, updated))
	return updated, nil
}

// Delete soft-deletes a task. Only its creator may do so; the workflow
// status is left untouched.
func (s *WorkflowService) Delete(ctx context.Context, caller identity.Principal, id string) (*model.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.CreatedBy != caller.UserID {
		return nil, taskerr.ErrUnauthorized
	}

	updated, err := s.repo.UpdateIf(ctx, id,
		repository.Predicate{CreatedBy: &caller.UserID},
		map[string]interface{}{"is_deleted": true})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, realtime.Updated(task, updated))
	return updated, nil
}

func (s *WorkflowService) geocodeTask(id, address string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.geocodeTimeout)
	defer cancel()

	result, err := s.geo.Geocode(ctx, address)
	if err != nil {
		log.Printf("geocode: task %s address lookup failed: %v", id, err)
		return
	}

	task, err := s.repo.SetCoordinates(ctx, id, result.Latitude, result.Longitude)
	if err != nil {
		log.Printf("geocode: task %s coordinate write failed: %v", id, err)
		return
	}

	s.publish(ctx, realtime.Updated(nil, task))
}

// publish fans the accepted change out to subscribers. The mutation already
// committed, so a bus failure is logged, not surfaced; the poll backstop
// re-converges any client that missed it.
func (s *WorkflowService) publish(ctx context.Context, event realtime.Event) {
	if err := s.bus.Publish(ctx, event); err != nil {
		log.Printf("realtime: publish %s for task %s failed: %v", event.Kind, event.TaskID(), err)
	}
}
