package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railxam2004/CulT/internal/domain"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/pkg/response"
)

// CartHandler handles the shopping cart of the current user
type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Get(c.Request.Context(), actor.UserID)
	h.respond(c, http.StatusOK, cart, err)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), actor.UserID, &req)
	h.respond(c, http.StatusOK, cart, err)
}

// UpdateItem handles PATCH /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.UpdateItem(c.Request.Context(), actor.UserID, c.Param("id"), req.Quantity)
	h.respond(c, http.StatusOK, cart, err)
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), actor.UserID, c.Param("id"))
	h.respond(c, http.StatusOK, cart, err)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), actor.UserID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) respond(c *gin.Context, status int, cart *domain.Cart, err error) {
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(status, response.Success(dto.NewCartResponse(cart)))
}
