package taskerr

import "net/http"

// ErrConflict means a conditional update affected zero rows: another actor
// already transitioned or deleted the task. Callers must re-fetch.
var ErrConflict = &Exception{
	Message:    "task was modified by another user",
	StatusCode: http.StatusConflict,
}
