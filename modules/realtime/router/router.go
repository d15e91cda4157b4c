package router

import (
	"github.com/labstack/echo/v4"

	"slotpoll/modules/realtime/controller"
)

// RealtimeRouter handles the websocket route
type RealtimeRouter struct {
	WSController *controller.WSController
}

func NewRealtimeRouter(wsController *controller.WSController) *RealtimeRouter {
	return &RealtimeRouter{
		WSController: wsController,
	}
}

// Setup registers the realtime route
func (r *RealtimeRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")
	v1.GET("/events/:id/ws", r.WSController.Join)
}
