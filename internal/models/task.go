package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/taskboard/taskboard/internal/constants"
)

// VersionEntry is one uploaded deliverable artifact. Entries are append-only.
type VersionEntry struct {
	URL        string    `json:"url"`
	Version    int       `json:"version"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by"`
}

// FeedbackEntry is a reviewer comment tied to the version it refers to.
// Entries are immutable once appended.
type FeedbackEntry struct {
	Comment   string    `json:"comment"`
	Author    string    `json:"author"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	BusinessName string `gorm:"not null" json:"business_name"`
	Brief        string `gorm:"not null" json:"brief"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Note         string `json:"note,omitempty"`

	Status     constants.TaskStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	TakenBy    *string              `json:"taken_by,omitempty"`
	ClaimedBy  *string              `gorm:"size:36" json:"claimed_by,omitempty"`
	CreatedBy  string               `gorm:"size:36;not null" json:"created_by"`
	ApprovedBy *string              `gorm:"size:36" json:"approved_by,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`

	CurrentFileURL *string        `json:"current_file_url,omitempty"`
	VersionNumber  int            `gorm:"not null;default:0" json:"version_number"`
	Versions       datatypes.JSON `json:"versions,omitempty"`
	Feedback       datatypes.JSON `json:"feedback,omitempty"`
	HasFeedback    bool           `gorm:"not null;default:false" json:"has_feedback"`

	Latitude  *float64            `json:"latitude,omitempty"`
	Longitude *float64            `json:"longitude,omitempty"`
	MapStatus constants.MapStatus `gorm:"type:varchar(20)" json:"map_status,omitempty"`

	IsDeleted  bool `gorm:"not null;default:false;index" json:"is_deleted"`
	IsArchived bool `gorm:"not null;default:false;index" json:"is_archived"`
}

// AfterFind folds legacy statuses into the canonical five-state model so
// no caller ever sees an alias.
func (t *Task) AfterFind(*gorm.DB) error {
	t.Status = constants.Normalize(t.Status, t.CurrentFileURL != nil)
	return nil
}

// VersionEntries decodes the append-only versions column. A null column
// decodes as an empty slice.
func (t *Task) VersionEntries() ([]VersionEntry, error) {
	if len(t.Versions) == 0 {
		return nil, nil
	}
	var entries []VersionEntry
	if err := json.Unmarshal(t.Versions, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (t *Task) FeedbackEntries() ([]FeedbackEntry, error) {
	if len(t.Feedback) == 0 {
		return nil, nil
	}
	var entries []FeedbackEntry
	if err := json.Unmarshal(t.Feedback, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AppendVersion returns the versions column with one more entry.
func (t *Task) AppendVersion(entry VersionEntry) (datatypes.JSON, error) {
	entries, err := t.VersionEntries()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(append(entries, entry))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// AppendFeedback returns the feedback column with one more entry.
func (t *Task) AppendFeedback(entry FeedbackEntry) (datatypes.JSON, error) {
	entries, err := t.FeedbackEntries()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(append(entries, entry))
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
