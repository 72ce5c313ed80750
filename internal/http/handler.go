package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "github.com/taskboard/taskboard/internal/data_models"
	middleware "github.com/taskboard/taskboard/internal/http/middlewares"
	"github.com/taskboard/taskboard/internal/http/validators"
	"github.com/taskboard/taskboard/internal/services"
	"github.com/taskboard/taskboard/internal/taskerr"
)

const maxUploadBytes = 32 << 20

type Handler struct {
	workflow  *services.WorkflowService
	lifecycle *services.LifecycleService
}

func NewHandler(workflow *services.WorkflowService, lifecycle *services.LifecycleService) *Handler {
	return &Handler{
		workflow:  workflow,
		lifecycle: lifecycle,
	}
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	task, err := h.workflow.Create(c.Request().Context(), middleware.Principal(c), req)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) GetTask(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task id is required")
	}

	task, err := h.workflow.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	tasks, err := h.workflow.ListBoard(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) ListArchivedTasks(c echo.Context) error {
	tasks, err := h.workflow.ListArchive(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) ClaimTask(c echo.Context) error {
	task, err := h.workflow.Claim(c.Request().Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}

	task, err := h.workflow.UploadFile(
		c.Request().Context(),
		middleware.Principal(c),
		c.Param("id"),
		fileHeader.Filename,
		data,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ApproveTask(c echo.Context) error {
	task, err := h.workflow.Approve(c.Request().Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) RequestChanges(c echo.Context) error {
	var req dto.FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := validators.ValidateFeedbackRequest(&req); err != nil {
		return err
	}

	task, err := h.workflow.RequestChanges(c.Request().Context(), middleware.Principal(c), c.Param("id"), req.Comment)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) RevertTask(c echo.Context) error {
	task, err := h.workflow.Revert(c.Request().Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	task, err := h.workflow.Delete(c.Request().Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (h *Handler) ArchiveTask(c echo.Context) error {
	return h.setArchived(c, []string{c.Param("id")}, true)
}

func (h *Handler) UnarchiveTask(c echo.Context) error {
	return h.setArchived(c, []string{c.Param("id")}, false)
}

func (h *Handler) BulkArchive(c echo.Context) error {
	var req dto.BulkIDsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	return h.setArchived(c, req.IDs, true)
}

func (h *Handler) setArchived(c echo.Context, ids []string, archived bool) error {
	tasks, err := h.lifecycle.SetArchived(c.Request().Context(), ids, archived)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(tasks),
		"tasks": tasks,
	})
}

func (h *Handler) BulkDelete(c echo.Context) error {
	var req dto.BulkIDsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}

	count, err := h.lifecycle.BulkDelete(c.Request().Context(), req.IDs)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": count})
}

func (h *Handler) Purge(c echo.Context) error {
	count, err := h.lifecycle.Purge(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"purged": count})
}

// serviceError translates a service failure into the HTTP response. Errors
// outside the application taxonomy are store or driver failures; clients get
// the generic unavailable message, not the raw error text.
func serviceError(err error) error {
	var appErr *taskerr.Exception
	if !errors.As(err, &appErr) {
		err = taskerr.ErrStoreUnavailable
	}
	return echo.NewHTTPError(taskerr.StatusCode(err), err.Error())
}
