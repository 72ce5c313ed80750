package taskerr

import "net/http"

var ErrStoreUnavailable = &Exception{
	Message:    "task store unavailable",
	StatusCode: http.StatusInternalServerError,
}
