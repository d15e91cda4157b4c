package router

import (
	"github.com/labstack/echo/v4"

	"slotpoll/modules/vote/controller"
)

// VoteRouter handles vote routes
type VoteRouter struct {
	VoteController *controller.VoteController
}

// NewVoteRouter creates a new router
func NewVoteRouter(voteController *controller.VoteController) *VoteRouter {
	return &VoteRouter{
		VoteController: voteController,
	}
}

// Setup registers vote routes
func (r *VoteRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	eventRoutes := v1.Group("/events")
	eventRoutes.POST("/:id/votes", r.VoteController.Submit)
	eventRoutes.GET("/:id/votes", r.VoteController.GetEventVotes)
	eventRoutes.GET("/:id/participants/:pid/votes", r.VoteController.GetParticipantVotes)
}
