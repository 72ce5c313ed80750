package realtime

import (
	model "github.com/taskboard/taskboard/internal/models"
)

type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Event is one change notification for the task collection. Delivery is
// at-least-once with no ordering guarantee, so consumers must merge events
// idempotently.
type Event struct {
	Kind   Kind        `json:"kind"`
	Before *model.Task `json:"before,omitempty"`
	After  *model.Task `json:"after,omitempty"`
}

// TaskID returns the id of the affected row from whichever image is present.
func (e Event) TaskID() string {
	if e.After != nil {
		return e.After.ID
	}
	if e.Before != nil {
		return e.Before.ID
	}
	return ""
}

func Inserted(after *model.Task) Event {
	return Event{Kind: KindInsert, After: after}
}

func Updated(before, after *model.Task) Event {
	return Event{Kind: KindUpdate, Before: before, After: after}
}

func Deleted(before *model.Task) Event {
	return Event{Kind: KindDelete, Before: before}
}
