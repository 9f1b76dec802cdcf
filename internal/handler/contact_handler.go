package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/pkg/response"
)

// ContactHandler handles the feedback form and its staff inbox
type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Submit handles POST /contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.contactService.Submit(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(msg))
}

// List handles GET /moderation/contact-messages
func (h *ContactHandler) List(c *gin.Context) {
	var q dto.ContactListQuery
	if !bindQuery(c, &q) {
		return
	}

	messages, total, err := h.contactService.List(c.Request.Context(), &q)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(messages, q.Page, q.Limit, int64(total)))
}

// UpdateStatus handles PATCH /moderation/contact-messages/:id
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateContactStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.contactService.UpdateStatus(c.Request.Context(), c.Param("id"), domain.ContactStatus(req.Status)); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
