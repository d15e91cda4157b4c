package controller

import (
	"github.com/labstack/echo/v4"

	"slotpoll/core/controller"
	"slotpoll/core/errors"
	"slotpoll/modules/vote/dto"
	"slotpoll/modules/vote/service"
)

// VoteController handles vote HTTP requests
type VoteController struct {
	controller.BaseController
	VoteService service.VoteServiceInterface
}

// NewVoteController creates a new controller
func NewVoteController(svc service.VoteServiceInterface) *VoteController {
	return &VoteController{
		BaseController: controller.NewBaseController(),
		VoteService:    svc,
	}
}

// Submit handles POST /events/:id/votes
// @Summary Submit availability
// @Description Replaces the participant's whole ledger; an empty list clears it
// @Tags Vote
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.SubmitVotesRequest true "Marked slots"
// @Success 200 {object} dto.ParticipantVotesResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 409 {object} controller.ErrorResponse
// @Router /events/{id}/votes [post]
func (c *VoteController) Submit(ctx echo.Context) error {
	var req dto.SubmitVotesRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.VoteService.Submit(ctx.Request().Context(), ctx.Param("id"), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Votes saved successfully")
}

// GetEventVotes handles GET /events/:id/votes
// @Summary Get the full vote collection and per-slot aggregates
// @Tags Vote
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.EventVotesResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id}/votes [get]
func (c *VoteController) GetEventVotes(ctx echo.Context) error {
	result, appErr := c.VoteService.GetEventVotes(ctx.Request().Context(), ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// GetParticipantVotes handles GET /events/:id/participants/:pid/votes
// @Summary Get one participant's ledger
// @Tags Vote
// @Produce json
// @Param id path string true "Event ID"
// @Param pid path string true "Participant ID"
// @Success 200 {object} dto.ParticipantVotesResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id}/participants/{pid}/votes [get]
func (c *VoteController) GetParticipantVotes(ctx echo.Context) error {
	result, appErr := c.VoteService.GetParticipantVotes(ctx.Request().Context(), ctx.Param("id"), ctx.Param("pid"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}
