package handlers

import (
	"net/http"

	"store-service/internal/dto"
	"store-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts *service.CartService
	log   *zap.Logger
}

func NewCartHandler(carts *service.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{carts: carts, log: log}
}

// GetOrCreate — активная корзина владельца; создаётся при отсутствии.
func (h *CartHandler) GetOrCreate(c *gin.Context) {
	var req dto.GetOrCreateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}
	cart, err := h.carts.GetOrCreate(c.Request.Context(), service.CartOwner{
		UserID:       req.UserID,
		SessionToken: req.SessionToken,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCartResponse(cart))
}

func (h *CartHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	cart, err := h.carts.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCartResponse(cart))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), id, req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCartResponse(cart))
}

// SetItemQuantity выставляет количество позиции; ноль её удаляет.
func (h *CartHandler) SetItemQuantity(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		return
	}
	var req struct {
		Quantity int64 `json:"quantity" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}
	cart, err := h.carts.UpdateItemQuantity(c.Request.Context(), id, productID, req.Quantity)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCartResponse(cart))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "product_id")
	if !ok {
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), id, productID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCartResponse(cart))
}
