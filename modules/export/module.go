package export

import (
	"github.com/labstack/echo/v4"

	"slotpoll/modules/export/controller"
	"slotpoll/modules/export/router"
	"slotpoll/modules/export/service"
)

// Init initializes the export module and registers routes.
func Init(e *echo.Echo, events service.EventDirectory) *service.ExportService {
	svc := service.NewExportService(events)
	ctrl := controller.NewExportController(svc)
	rtr := router.NewExportRouter(ctrl)

	rtr.Setup(e)

	return svc
}
