package validators

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "github.com/taskboard/taskboard/internal/data_models"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if r.BusinessName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "business_name is required")
	}
	if r.Brief == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "brief is required")
	}
	return nil
}

func ValidateFeedbackRequest(r *dto.FeedbackRequest) error {
	if r.Comment == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "comment is required")
	}
	return nil
}
