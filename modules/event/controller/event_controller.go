package controller

import (
	"github.com/labstack/echo/v4"

	"slotpoll/core/controller"
	"slotpoll/core/errors"
	"slotpoll/modules/event/dto"
	"slotpoll/modules/event/service"
)

// EventController handles event HTTP requests
type EventController struct {
	controller.BaseController
	EventService service.EventServiceInterface
}

// NewEventController creates a new controller
func NewEventController(svc service.EventServiceInterface) *EventController {
	return &EventController{
		BaseController: controller.NewBaseController(),
		EventService:   svc,
	}
}

// CreateEvent handles POST /events
// @Summary Create an availability poll
// @Description Create a new event with candidate dates or days of week and a daily time window
// @Tags Event
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event details"
// @Success 200 {object} dto.CreateEventResponse
// @Failure 400 {object} controller.ErrorResponse
// @Router /events [post]
func (c *EventController) CreateEvent(ctx echo.Context) error {
	var req dto.CreateEventRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.EventService.CreateEvent(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Event created successfully")
}

// GetEvent handles GET /events/:id
// @Summary Get event details
// @Tags Event
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} dto.EventResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id} [get]
func (c *EventController) GetEvent(ctx echo.Context) error {
	result, appErr := c.EventService.GetEventByID(ctx.Request().Context(), ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// GetGrid handles GET /events/:id/grid
// @Summary Get the voting grid
// @Description Slot keys stay in the authoring timezone; pass ?tz= for viewer-local display labels
// @Tags Event
// @Produce json
// @Param id path string true "Event ID"
// @Param tz query string false "Viewer IANA timezone"
// @Success 200 {object} dto.GridResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /events/{id}/grid [get]
func (c *EventController) GetGrid(ctx echo.Context) error {
	result, appErr := c.EventService.GetGrid(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("tz"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// Finalize handles POST /events/:id/finalize
// @Summary Finalize the event to one slot
// @Description Organizer only; the slot must be inside the event's range but does not need votes
// @Tags Event
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body dto.FinalizeRequest true "Chosen slot"
// @Success 200 {object} dto.EventResponse
// @Failure 403 {object} controller.ErrorResponse
// @Failure 409 {object} controller.ErrorResponse
// @Router /events/{id}/finalize [post]
func (c *EventController) Finalize(ctx echo.Context) error {
	var req dto.FinalizeRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	result, appErr := c.EventService.Finalize(ctx.Request().Context(), ctx.Param("id"), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Event finalized successfully")
}
