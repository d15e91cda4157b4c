package vote

import (
	"github.com/labstack/echo/v4"

	"slotpoll/core/database"
	rtservice "slotpoll/modules/realtime/service"
	"slotpoll/modules/vote/controller"
	"slotpoll/modules/vote/repository"
	"slotpoll/modules/vote/router"
	"slotpoll/modules/vote/service"
)

// Init initializes the vote module and registers routes.
func Init(e *echo.Echo, db database.Database, events service.EventDirectory, participants service.ParticipantDirectory, hub *rtservice.Hub) (*service.VoteService, *repository.VoteRepository) {
	repo := repository.NewVoteRepository(db)
	svc := service.NewVoteService(repo, events, participants, hub)
	ctrl := controller.NewVoteController(svc)
	rtr := router.NewVoteRouter(ctrl)

	rtr.Setup(e)

	return svc, repo
}
