package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nand2004/GeoConnect-sub000/internal/app/models/dto"
	"github.com/Nand2004/GeoConnect-sub000/internal/app/services"
	"github.com/Nand2004/GeoConnect-sub000/internal/middleware"
)

// EventController handles event lifecycle and attendance endpoints
type EventController struct {
	eventService services.EventService
}

// NewEventController creates a new EventController
func NewEventController(eventService services.EventService) *EventController {
	return &EventController{
		eventService: eventService,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates the event together with its group chat; the creator becomes the chat admin
// @Tags event
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} dto.EventWithChatResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Creator not found"
// @Router /event/createEvent [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	req.CreatorID = middleware.ActorID(ctx, req.CreatorID)

	event, chat, err := c.eventService.CreateEvent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.EventWithChatResponse{Event: event, Chat: chat})
}

// GetEvent godoc
// @Summary Get event by ID
// @Tags event
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} models.Event
// @Failure 404 {object} dto.ErrorResponse
// @Router /event/getEvent/{eventId} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	event, err := c.eventService.GetEvent(ctx.Request.Context(), ctx.Param("eventId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, event)
}

// ListUserEvents returns events the user created or attends, soonest first
func (c *EventController) ListUserEvents(ctx *gin.Context) {
	events, err := c.eventService.ListUserEvents(ctx.Request.Context(), ctx.Param("userId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, events)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Only the creator may update. The acting user is the token subject, or userId in the body
// @Tags event
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param request body dto.UpdateEventRequest true "Changes"
// @Success 200 {object} models.Event
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 404 {object} dto.ErrorResponse
// @Router /event/updateEvent/{eventId} [put]
func (c *EventController) UpdateEvent(ctx *gin.Context) {
	var req dto.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	event, err := c.eventService.UpdateEvent(ctx.Request.Context(), ctx.Param("eventId"),
		middleware.ActorID(ctx, req.UserID), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event and its chat
// @Tags event
// @Produce json
// @Param eventId path string true "Event ID"
// @Param userId query string false "Acting user when no token is sent"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Event deleted but chat removal failed"
// @Router /event/deleteEvent/{eventId} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	err := c.eventService.DeleteEvent(ctx.Request.Context(), ctx.Param("eventId"),
		middleware.ActorID(ctx, ctx.Query("userId")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Event deleted"})
}

// JoinEvent godoc
// @Summary Join an event
// @Description Adds the user to the attendees and to the event's group chat
// @Tags event
// @Accept json
// @Produce json
// @Param request body dto.EventMembershipRequest true "Event and user"
// @Success 200 {object} dto.EventActionResponse
// @Failure 400 {object} dto.ErrorResponse "Creator, or already attending"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Chat membership could not be updated"
// @Router /event/joinEvent [post]
func (c *EventController) JoinEvent(ctx *gin.Context) {
	var req dto.EventMembershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	req.UserID = middleware.ActorID(ctx, req.UserID)

	event, err := c.eventService.JoinEvent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.EventActionResponse{Message: "Joined event", Event: event})
}

// LeaveEvent godoc
// @Summary Leave an event
// @Tags event
// @Accept json
// @Produce json
// @Param request body dto.EventMembershipRequest true "Event and user"
// @Success 200 {object} dto.EventActionResponse
// @Failure 400 {object} dto.ErrorResponse "Not attending"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse "Chat membership could not be updated"
// @Router /event/leaveEvent [post]
func (c *EventController) LeaveEvent(ctx *gin.Context) {
	var req dto.EventMembershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	req.UserID = middleware.ActorID(ctx, req.UserID)

	event, err := c.eventService.LeaveEvent(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.EventActionResponse{Message: "Left event", Event: event})
}

// NearbyEvents godoc
// @Summary Find events near a point
// @Tags event
// @Produce json
// @Param longitude query number true "Longitude"
// @Param latitude query number true "Latitude"
// @Param radius query number false "Radius in km (default 10, max 500)"
// @Success 200 {array} models.Event
// @Failure 400 {object} dto.ErrorResponse
// @Router /event/getNearbyEvents [get]
func (c *EventController) NearbyEvents(ctx *gin.Context) {
	var q dto.NearbyQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	events, err := c.eventService.NearbyEvents(ctx.Request.Context(), &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, events)
}
