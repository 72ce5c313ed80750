package taskerr

import "net/http"

var ErrUpstreamUnavailable = &Exception{
	Message:    "upstream service unavailable",
	StatusCode: http.StatusBadGateway,
}
