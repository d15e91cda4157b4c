package controller

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"slotpoll/core/controller"
	"slotpoll/modules/export/service"
)

// ExportController handles calendar export HTTP requests
type ExportController struct {
	controller.BaseController
	ExportService service.ExportServiceInterface
}

// NewExportController creates a new controller
func NewExportController(svc service.ExportServiceInterface) *ExportController {
	return &ExportController{
		BaseController: controller.NewBaseController(),
		ExportService:  svc,
	}
}

// ExportICS handles GET /events/:id/export.ics
// @Summary Download the finalized slot as an iCalendar file
// @Tags Export
// @Produce text/calendar
// @Param id path string true "Event ID"
// @Success 200 {file} binary
// @Failure 400 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id}/export.ics [get]
func (c *ExportController) ExportICS(ctx echo.Context) error {
	result, appErr := c.ExportService.ExportICS(ctx.Request().Context(), ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, result.Filename))
	return ctx.Blob(http.StatusOK, "text/calendar; charset=utf-8", result.Data)
}
