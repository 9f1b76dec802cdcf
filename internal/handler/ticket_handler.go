package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/pkg/response"
	"github.com/railxam2004/CulT/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// TicketHandler serves purchased tickets and admission checks
type TicketHandler struct {
	ticketService service.TicketService
}

func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// ListMine handles GET /tickets
func (h *TicketHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tickets, err := h.ticketService.ListMine(c.Request.Context(), actor.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(tickets))
}

// Get handles GET /tickets/:id
func (h *TicketHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	ticket, err := h.ticketService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(ticket))
}

// QRCode handles GET /tickets/:id/qr
func (h *TicketHandler) QRCode(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	png, err := h.ticketService.QRCode(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, "image/png", png)
}

// PDF handles GET /tickets/:id/pdf
func (h *TicketHandler) PDF(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	doc, filename, err := h.ticketService.PDF(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// Scan handles POST /tickets/scan
func (h *TicketHandler) Scan(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.ticket.scan")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.ScanTicketRequest
	if !bindJSON(c, &req) {
		return
	}
	span.SetAttributes(attribute.Bool("mark_used", req.MarkUsed))

	result, err := h.ticketService.Scan(ctx, actor, req.Code, req.MarkUsed)
	if err != nil {
		span.RecordError(err)
		handleError(c, err)
		return
	}
	span.SetAttributes(attribute.Bool("already_used", result.AlreadyUsed))
	c.JSON(http.StatusOK, response.Success(result))
}

// SetUsed handles PUT /tickets/:id/used
func (h *TicketHandler) SetUsed(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.SetTicketUsedRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.ticketService.SetUsed(c.Request.Context(), actor, c.Param("id"), *req.Used)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(ticket))
}

// ToggleUsed handles POST /tickets/:id/toggle-used
func (h *TicketHandler) ToggleUsed(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	ticket, err := h.ticketService.ToggleUsed(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(ticket))
}

// ListForEvent handles GET /organizer/events/:id/tickets
func (h *TicketHandler) ListForEvent(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	tickets, err := h.ticketService.ListForEvent(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(tickets))
}
