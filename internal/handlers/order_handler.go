package handlers

import (
	"context"
	"net/http"
	"strconv"

	"store-service/internal/dto"
	"store-service/internal/models"
	"store-service/internal/repository"
	"store-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type OrderHandler struct {
	checkout *service.CheckoutService
	orders   *service.OrderService
	log      *zap.Logger
}

func NewOrderHandler(checkout *service.CheckoutService, orders *service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{
		checkout: checkout,
		orders:   orders,
		log:      log,
	}
}

// Checkout — корзина в заказ одной транзакцией.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid checkout request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}

	ord, err := h.checkout.Checkout(c.Request.Context(), service.CheckoutInput{
		CartID:            req.CartID,
		BillingAddressID:  req.BillingAddressID,
		ShippingAddressID: req.ShippingAddressID,
		ShippingCents:     req.ShippingCents,
		TaxCents:          req.TaxCents,
		CouponCode:        req.CouponCode,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewOrderResponse(ord))
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	ord, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(ord))
}

func (h *OrderHandler) GetByNumber(c *gin.Context) {
	ord, err := h.orders.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(ord))
}

// ListSummaries — админская сводка; анонимные заказы отдаются
// с пустыми customer-полями.
func (h *OrderHandler) ListSummaries(c *gin.Context) {
	limit, offset := paginationParams(c)
	list, err := h.orders.ListSummaries(c.Request.Context(), limit, offset)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": lo.Map(list, func(s repository.OrderSummary, _ int) dto.OrderSummaryResponse {
			return dto.NewOrderSummaryResponse(s)
		}),
	})
}

func (h *OrderHandler) RecordPayment(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}

	p, err := h.orders.RecordPayment(c.Request.Context(), service.RecordPaymentInput{
		OrderID:     id,
		AmountCents: req.AmountCents,
		Method:      req.Method,
		GatewayRef:  req.GatewayRef,
		Status:      models.PaymentStatus(req.Status),
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPaymentResponse(p))
}

func (h *OrderHandler) MarkPaid(c *gin.Context) {
	h.runTransition(c, h.orders.MarkPaid)
}

func (h *OrderHandler) StartProcessing(c *gin.Context) {
	h.runTransition(c, h.orders.StartProcessing)
}

func (h *OrderHandler) Ship(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ShipOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
			return
		}
	}
	ord, err := h.orders.Ship(c.Request.Context(), id, req.Carrier, req.TrackingNumber)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(ord))
}

func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	h.runTransition(c, h.orders.MarkDelivered)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
			return
		}
	}
	ord, err := h.orders.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(ord))
}

func (h *OrderHandler) Refund(c *gin.Context) {
	h.runTransition(c, h.orders.Refund)
}

func (h *OrderHandler) runTransition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*models.Order, error)) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	ord, err := fn(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(ord))
}

func paginationParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
