package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/pkg/response"
)

// ApplicationHandler handles organizer role requests
type ApplicationHandler struct {
	applicationService service.ApplicationService
}

func NewApplicationHandler(applicationService service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

// Submit handles POST /organizer-applications
func (h *ApplicationHandler) Submit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.SubmitApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.Submit(c.Request.Context(), actor.UserID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(app))
}

// ListMine handles GET /organizer-applications
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	apps, err := h.applicationService.ListMine(c.Request.Context(), actor.UserID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(apps))
}

// List handles GET /moderation/organizer-applications
func (h *ApplicationHandler) List(c *gin.Context) {
	var q dto.ApplicationListQuery
	if !bindQuery(c, &q) {
		return
	}

	apps, err := h.applicationService.List(c.Request.Context(), domain.ApplicationStatus(q.Status))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(apps))
}

// MarkInReview handles POST /moderation/organizer-applications/:id/review
func (h *ApplicationHandler) MarkInReview(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	app, err := h.applicationService.MarkInReview(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(app))
}

// Approve handles POST /moderation/organizer-applications/:id/approve
func (h *ApplicationHandler) Approve(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	app, err := h.applicationService.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(app))
}

// Reject handles POST /moderation/organizer-applications/:id/reject
func (h *ApplicationHandler) Reject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.RejectApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.Reject(c.Request.Context(), actor, c.Param("id"), req.Comment)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(app))
}
