package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railxam2004/CulT/internal/dto"
	"github.com/railxam2004/CulT/internal/service"
	"github.com/railxam2004/CulT/pkg/response"
)

// CatalogHandler serves categories and ticket classes
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListCategories handles GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(categories))
}

// CreateCategory handles POST /categories (admin)
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(category))
}

// ListTariffs handles GET /tariffs
func (h *CatalogHandler) ListTariffs(c *gin.Context) {
	tariffs, err := h.catalogService.ListTariffs(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(tariffs))
}

// CreateTariff handles POST /tariffs (admin)
func (h *CatalogHandler) CreateTariff(c *gin.Context) {
	var req dto.CreateTariffRequest
	if !bindJSON(c, &req) {
		return
	}

	tariff, err := h.catalogService.CreateTariff(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(tariff))
}
