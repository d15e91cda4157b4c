package realtime

import (
	"github.com/labstack/echo/v4"

	"slotpoll/core/cache"
	"slotpoll/core/config"
	"slotpoll/modules/realtime/controller"
	"slotpoll/modules/realtime/router"
	"slotpoll/modules/realtime/service"
)

// Init initializes the realtime module and registers the websocket
// route. The returned hub is handed to the other modules so they can
// broadcast into event rooms.
func Init(e *echo.Echo, c cache.Cache, cfg *config.AppConfig) *service.Hub {
	hub := service.NewHub(c)
	ctrl := controller.NewWSController(hub, cfg.Server.CORSOrigins)
	rtr := router.NewRealtimeRouter(ctrl)

	rtr.Setup(e)
	return hub
}
