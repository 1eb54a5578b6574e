package handlers

import (
	"net/http"

	"store-service/internal/dto"
	"store-service/internal/models"
	"store-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type AccountHandler struct {
	accounts *service.AccountService
	log      *zap.Logger
}

func NewAccountHandler(accounts *service.AccountService, log *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, log: log}
}

func (h *AccountHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}
	u, err := h.accounts.CreateUser(c.Request.Context(), service.CreateUserInput{
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		FullName:     req.FullName,
		Phone:        req.Phone,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(u))
}

func (h *AccountHandler) GetUserByEmail(c *gin.Context) {
	u, err := h.accounts.GetUserByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(u))
}

func (h *AccountHandler) ListRoles(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	roles, err := h.accounts.ListRoles(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": lo.Map(roles, func(r models.Role, _ int) string { return r.Name }),
	})
}

func (h *AccountHandler) AssignRole(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.accounts.AssignRole(c.Request.Context(), userID, c.Param("role")); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("role assigned"))
}

func (h *AccountHandler) RevokeRole(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.accounts.RevokeRole(c.Request.Context(), userID, c.Param("role")); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("role revoked"))
}

func (h *AccountHandler) CreateAddress(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body"))
		return
	}
	a, err := h.accounts.CreateAddress(c.Request.Context(), service.AddressInput{
		UserID:     userID,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		Region:     req.Region,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewAddressResponse(a))
}

func (h *AccountHandler) ListAddresses(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.accounts.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": lo.Map(list, func(a models.Address, _ int) dto.AddressResponse {
			return dto.NewAddressResponse(&a)
		}),
	})
}

func (h *AccountHandler) SetDefaultShipping(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	addressID, ok := parseUUIDParam(c, "address_id")
	if !ok {
		return
	}
	if err := h.accounts.SetDefaultShippingAddress(c.Request.Context(), userID, addressID); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("default shipping address set"))
}

func (h *AccountHandler) SetDefaultBilling(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	addressID, ok := parseUUIDParam(c, "address_id")
	if !ok {
		return
	}
	if err := h.accounts.SetDefaultBillingAddress(c.Request.Context(), userID, addressID); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("default billing address set"))
}

func (h *AccountHandler) DeleteAddress(c *gin.Context) {
	if _, ok := parseUUIDParam(c, "id"); !ok {
		return
	}
	addressID, ok := parseUUIDParam(c, "address_id")
	if !ok {
		return
	}
	deleted, err := h.accounts.DeleteAddress(c.Request.Context(), addressID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("address not found"))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse("address deleted"))
}
