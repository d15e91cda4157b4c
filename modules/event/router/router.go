package router

import (
	"github.com/labstack/echo/v4"

	"slotpoll/modules/event/controller"
)

// EventRouter handles event routes
type EventRouter struct {
	EventController *controller.EventController
}

// NewEventRouter creates a new router
func NewEventRouter(eventController *controller.EventController) *EventRouter {
	return &EventRouter{
		EventController: eventController,
	}
}

// Setup registers event routes
func (r *EventRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	eventRoutes := v1.Group("/events")
	eventRoutes.POST("", r.EventController.CreateEvent)
	eventRoutes.GET("/:id", r.EventController.GetEvent)
	eventRoutes.GET("/:id/grid", r.EventController.GetGrid)
	eventRoutes.POST("/:id/finalize", r.EventController.Finalize)
}
