package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/pkg/response"
)

// EventHandler handles the public catalog, organizer and moderation routes
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	var q dto.PublicEventQuery
	if !bindQuery(c, &q) {
		return
	}

	events, total, err := h.eventService.ListPublished(c.Request.Context(), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(events, q.Page, q.Limit, int64(total)))
}

// GetBySlug handles GET /events/:slug
func (h *EventHandler) GetBySlug(c *gin.Context) {
	event, err := h.eventService.GetBySlug(c.Request.Context(), c.Param("slug"), optionalActor(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}

// ListMine handles GET /organizer/events
func (h *EventHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}

	events, total, err := h.eventService.ListMine(c.Request.Context(), actor, &q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(events, q.Page, q.Limit, int64(total)))
}

// Get handles GET /organizer/events/:id
func (h *EventHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	event, err := h.eventService.GetByID(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}

// Create handles POST /organizer/events
func (h *EventHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(event))
}

// Update handles PUT /organizer/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}

// Delete handles DELETE /organizer/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.eventService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Submit handles POST /organizer/events/:id/submit
func (h *EventHandler) Submit(c *gin.Context) {
	h.transition(c, h.eventService.Submit)
}

// AddTariff handles POST /organizer/events/:id/tariffs
func (h *EventHandler) AddTariff(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.AddEventTariffRequest
	if !bindJSON(c, &req) {
		return
	}

	tariff, err := h.eventService.AddTariff(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(tariff))
}

// UpdateTariff handles PATCH /organizer/event-tariffs/:id
func (h *EventHandler) UpdateTariff(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateEventTariffRequest
	if !bindJSON(c, &req) {
		return
	}

	tariff, err := h.eventService.UpdateTariff(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(tariff))
}

// RemoveTariff handles DELETE /organizer/event-tariffs/:id
func (h *EventHandler) RemoveTariff(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.eventService.RemoveTariff(c.Request.Context(), actor, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListForModeration handles GET /moderation/events
func (h *EventHandler) ListForModeration(c *gin.Context) {
	var q dto.ModerationQuery
	if !bindQuery(c, &q) {
		return
	}

	events, total, err := h.eventService.ListForModeration(c.Request.Context(), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(events, q.Page, q.Limit, int64(total)))
}

// Publish handles POST /moderation/events/:id/publish
func (h *EventHandler) Publish(c *gin.Context) {
	h.transition(c, h.eventService.Publish)
}

// Reject handles POST /moderation/events/:id/reject
func (h *EventHandler) Reject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.RejectEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.eventService.Reject(c.Request.Context(), actor, c.Param("id"), req.Comment)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}

// MarkDraft handles POST /moderation/events/:id/draft
func (h *EventHandler) MarkDraft(c *gin.Context) {
	h.transition(c, h.eventService.MarkDraft)
}

// MarkPending handles POST /moderation/events/:id/pending
func (h *EventHandler) MarkPending(c *gin.Context) {
	h.transition(c, h.eventService.MarkPending)
}

type eventTransition func(ctx context.Context, actor domain.Actor, id string) (*domain.Event, error)

func (h *EventHandler) transition(c *gin.Context, op eventTransition) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	event, err := op(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(event))
}
