package handlers

import (
	"net/http"

	"store-service/internal/dto"
	"store-service/internal/models"
	"store-service/internal/repository"
	"store-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog   *service.CatalogService
	inventory *service.InventoryService
	log       *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, inventory *service.InventoryService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:   catalog,
		inventory: inventory,
		log:       log,
	}
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), service.ProductInput{
		SKU:          req.SKU,
		Name:         req.Name,
		Description:  req.Description,
		PriceCents:   req.PriceCents,
		CurrencyCode: req.CurrencyCode,
		IsActive:     active,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProductResponse(p))
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(p))
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	limit, offset := paginationParams(c)
	filter := repository.ProductListFilter{
		OnlyActive: c.DefaultQuery("active", "true") == "true",
		Limit:      limit,
		Offset:     offset,
	}
	if q := c.Query("q"); q != "" {
		filter.Query = &q
	}

	list, total, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": lo.Map(list, func(p models.Product, _ int) dto.ProductResponse {
			return dto.NewProductResponse(&p)
		}),
		"total": total,
	})
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), id, service.ProductPatch{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(p))
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.catalog.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("product not found"))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("product deleted"))
}

func (h *CatalogHandler) GetStock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.inventory.GetStock(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStockResponse(inv))
}

// GetAvailability — быстрый путь для витрины, через кэш.
func (h *CatalogHandler) GetAvailability(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	available, err := h.inventory.GetAvailable(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": id, "available": available})
}

func (h *CatalogHandler) Restock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}
	inv, err := h.inventory.Restock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStockResponse(inv))
}

func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}
	inv, err := h.inventory.AdjustQuantity(c.Request.Context(), id, req.Delta)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStockResponse(inv))
}
