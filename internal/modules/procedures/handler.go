package procedures

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"petclinic/internal/domain"
	"petclinic/internal/middleware"
	"petclinic/internal/pkg/response"
	"petclinic/internal/repository"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (int64, error)
	AddItemToOrder(ctx context.Context, req AddItemRequest) (*domain.InvoiceItem, error)
	ConfirmInvoice(ctx context.Context, req ConfirmInvoiceRequest) (*repository.Receipt, error)
}

type Handler struct {
	service OrderService
}

func NewHandler(service OrderService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	staff := rg.Group("/procedures/staff")
	{
		staff.POST("/create-order", h.CreateOrder)
		staff.POST("/add-item-to-order", h.AddItemToOrder)
		staff.POST("/confirm-invoice", h.ConfirmInvoice)
	}
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, http.StatusBadRequest, "message", err)
		return
	}
	if req.EmployeeID == 0 {
		req.EmployeeID = c.GetInt64(middleware.CtxEmployeeID)
	}
	if req.BranchID == 0 {
		req.BranchID = c.GetInt64(middleware.CtxBranchID)
	}

	id, err := h.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, CreateOrderResponse{InvoiceID: id})
}

func (h *Handler) AddItemToOrder(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, http.StatusBadRequest, "message", err)
		return
	}

	item, err := h.service.AddItemToOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item)
}

func (h *Handler) ConfirmInvoice(c *gin.Context) {
	var req ConfirmInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, http.StatusBadRequest, "message", err)
		return
	}

	receipt, err := h.service.ConfirmInvoice(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, receipt)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Message(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidState):
		response.Message(c, http.StatusBadRequest, err.Error())
	default:
		// Storage errors reach the client verbatim here; front-desk clients parse them.
		_ = c.Error(err)
		response.Message(c, http.StatusBadRequest, err.Error())
	}
}
