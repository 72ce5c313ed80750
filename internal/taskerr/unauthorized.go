package taskerr

import "net/http"

var ErrUnauthorized = &Exception{
	Message:    "caller does not own this task",
	StatusCode: http.StatusForbidden,
}
