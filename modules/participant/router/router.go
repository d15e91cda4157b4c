package router

import (
	"github.com/labstack/echo/v4"

	"slotpoll/modules/participant/controller"
)

// ParticipantRouter handles participant routes
type ParticipantRouter struct {
	ParticipantController *controller.ParticipantController
}

// NewParticipantRouter creates a new router
func NewParticipantRouter(participantController *controller.ParticipantController) *ParticipantRouter {
	return &ParticipantRouter{
		ParticipantController: participantController,
	}
}

// Setup registers participant routes
func (r *ParticipantRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	eventRoutes := v1.Group("/events")
	eventRoutes.POST("/:id/participants", r.ParticipantController.Join)
	eventRoutes.GET("/:id/participants", r.ParticipantController.List)
	eventRoutes.POST("/:id/block", r.ParticipantController.Block)
}
