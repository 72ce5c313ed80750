package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskboard/taskboard/internal/taskerr"
)

func TestServiceErrorMapping(t *testing.T) {
	httpErr, ok := serviceError(taskerr.ErrTaskNotFound).(*echo.HTTPError)
	if !ok {
		t.Fatal("expected an *echo.HTTPError")
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
	if httpErr.Message != taskerr.ErrTaskNotFound.Message {
		t.Errorf("unexpected message: %v", httpErr.Message)
	}
}

func TestServiceErrorMasksDriverErrors(t *testing.T) {
	httpErr, ok := serviceError(errors.New("driver: bad connection")).(*echo.HTTPError)
	if !ok {
		t.Fatal("expected an *echo.HTTPError")
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
	if httpErr.Message != taskerr.ErrStoreUnavailable.Message {
		t.Errorf("driver error text must not leak, got %v", httpErr.Message)
	}
}
