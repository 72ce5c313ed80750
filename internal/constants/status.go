package constants

type TaskStatus string

const (
	StatusOpen               TaskStatus = "open"
	StatusInProgressNoFile   TaskStatus = "in_progress_no_file"
	StatusInProgressWithFile TaskStatus = "in_progress_with_file"
	StatusFeedbackNeeded     TaskStatus = "feedback_needed"
	StatusCompleted          TaskStatus = "completed"
)

// Legacy statuses still present in stored rows. They are accepted on read
// and in conditional-update predicates, but never written back.
const (
	LegacyInProgress       TaskStatus = "in_progress"
	LegacyAwaitingApproval TaskStatus = "awaiting_approval"
)

// Normalize maps legacy statuses onto the canonical five-state model.
// "in_progress" is ambiguous and resolves on whether an artifact exists.
func Normalize(s TaskStatus, hasFile bool) TaskStatus {
	switch s {
	case LegacyAwaitingApproval:
		return StatusInProgressWithFile
	case LegacyInProgress:
		if hasFile {
			return StatusInProgressWithFile
		}
		return StatusInProgressNoFile
	default:
		return s
	}
}

// Active reports whether a task is claimed and being worked on.
func (s TaskStatus) Active() bool {
	switch s {
	case StatusInProgressNoFile, StatusInProgressWithFile, StatusFeedbackNeeded,
		LegacyInProgress, LegacyAwaitingApproval:
		return true
	}
	return false
}

// InProgressWithFile reports whether s means "uploaded, awaiting review",
// including the legacy alias.
func (s TaskStatus) InProgressWithFile() bool {
	return s == StatusInProgressWithFile || s == LegacyAwaitingApproval
}

// MapStatus tracks post-completion field visits. It is independent of the
// workflow status.
type MapStatus string

const (
	MapStatusNone    MapStatus = ""
	MapStatusPending MapStatus = "pending_visit"
	MapStatusVisited MapStatus = "visited"
)
