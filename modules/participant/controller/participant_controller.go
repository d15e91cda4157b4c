package controller

import (
	"github.com/labstack/echo/v4"

	"slotpoll/core/controller"
	"slotpoll/core/errors"
	"slotpoll/modules/participant/dto"
	"slotpoll/modules/participant/service"
)

// ParticipantController handles participant HTTP requests
type ParticipantController struct {
	controller.BaseController
	ParticipantService service.ParticipantServiceInterface
}

// NewParticipantController creates a new controller
func NewParticipantController(svc service.ParticipantServiceInterface) *ParticipantController {
	return &ParticipantController{
		BaseController:     controller.NewBaseController(),
		ParticipantService: svc,
	}
}

// Join handles POST /events/:id/participants
// @Summary Join an event as a collaborator
// @Description Rejoining with the same name (any casing) resumes the same identity and vote ledger
// @Tags Participant
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.JoinRequest true "Display name"
// @Success 200 {object} dto.JoinResponse
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id}/participants [post]
func (c *ParticipantController) Join(ctx echo.Context) error {
	var req dto.JoinRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.ParticipantService.Join(ctx.Request().Context(), ctx.Param("id"), &req, ctx.RealIP())
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Joined event successfully")
}

// List handles GET /events/:id/participants
// @Summary List active participants
// @Tags Participant
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.ListResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id}/participants [get]
func (c *ParticipantController) List(ctx echo.Context) error {
	result, appErr := c.ParticipantService.List(ctx.Request().Context(), ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// Block handles POST /events/:id/block
// @Summary Block a participant
// @Description Organizer only; the participant's votes are removed from every aggregate immediately
// @Tags Participant
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.BlockRequest true "Participant to block"
// @Success 200 {object} controller.SuccessResponse
// @Failure 403 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id}/block [post]
func (c *ParticipantController) Block(ctx echo.Context) error {
	var req dto.BlockRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	if appErr := c.ParticipantService.Block(ctx.Request().Context(), ctx.Param("id"), &req); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Participant blocked successfully")
}
