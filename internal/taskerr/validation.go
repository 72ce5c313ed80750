package taskerr

import "net/http"

var ErrValidation = &Exception{
	Message:    "missing or invalid fields",
	StatusCode: http.StatusBadRequest,
}
