package router

import (
	"github.com/labstack/echo/v4"

	"slotpoll/modules/export/controller"
)

// ExportRouter handles export routes
type ExportRouter struct {
	ExportController *controller.ExportController
}

// NewExportRouter creates a new router
func NewExportRouter(exportController *controller.ExportController) *ExportRouter {
	return &ExportRouter{
		ExportController: exportController,
	}
}

// Setup registers export routes
func (r *ExportRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	eventRoutes := v1.Group("/events")
	eventRoutes.GET("/:id/export.ics", r.ExportController.ExportICS)
}
