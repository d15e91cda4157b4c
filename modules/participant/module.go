package participant

import (
	"github.com/labstack/echo/v4"

	"slotpoll/modules/participant/controller"
	"slotpoll/modules/participant/repository"
	"slotpoll/modules/participant/router"
	"slotpoll/modules/participant/service"
	rtservice "slotpoll/modules/realtime/service"
)

// Init initializes the participant module and registers routes. The
// repository is built by the caller because the vote module also reads
// from it; passing repositories across modules instead of services
// keeps the dependencies one-directional.
func Init(e *echo.Echo, repo repository.ParticipantRepositoryInterface, events service.EventDirectory, votes service.VoteStore, hub *rtservice.Hub) *service.ParticipantService {
	svc := service.NewParticipantService(repo, events, votes, hub)
	ctrl := controller.NewParticipantController(svc)
	rtr := router.NewParticipantRouter(ctrl)

	rtr.Setup(e)

	return svc
}
