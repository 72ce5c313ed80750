package http

import (
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/taskboard/taskboard/internal/http/middlewares"
	"github.com/taskboard/taskboard/internal/identity"
)

func Register(e *echo.Echo, h *Handler, resolver identity.Resolver, rateLimitPerMinute int) {
	e.Use(middleware.RateLimiter(rateLimitPerMinute, time.Minute))

	// everything except static artifact downloads requires a principal
	api := e.Group("", middleware.Identity(resolver))

	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks", h.ListTasks)
	api.GET("/tasks/archived", h.ListArchivedTasks)
	api.GET("/tasks/:id", h.GetTask)

	api.POST("/tasks/:id/claim", h.ClaimTask)
	api.POST("/tasks/:id/upload", h.UploadFile)
	api.POST("/tasks/:id/approve", h.ApproveTask)
	api.POST("/tasks/:id/feedback", h.RequestChanges)
	api.POST("/tasks/:id/revert", h.RevertTask)
	api.DELETE("/tasks/:id", h.DeleteTask)

	api.POST("/tasks/:id/archive", h.ArchiveTask)
	api.POST("/tasks/:id/unarchive", h.UnarchiveTask)
	api.POST("/tasks/archive/bulk", h.BulkArchive)
	api.DELETE("/tasks/archive/bulk", h.BulkDelete)

	api.POST("/admin/purge", h.Purge)
}
