package taskerr

import "net/http"

var ErrInvalidCredentials = &Exception{
	Message:    "missing or invalid credentials",
	StatusCode: http.StatusUnauthorized,
}
