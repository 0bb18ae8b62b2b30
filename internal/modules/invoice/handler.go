package invoice

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"petclinic/internal/domain"
	"petclinic/internal/pkg/response"
)

type InvoiceService interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (*domain.Invoice, error)
	Get(ctx context.Context, id int64) (*domain.Invoice, error)
	Update(ctx context.Context, id int64, req UpdateInvoiceRequest) error
	UpdateStatus(ctx context.Context, id int64, status string) (*StatusResponse, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	service InvoiceService
}

func NewHandler(service InvoiceService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("/:id", h.Get)
		invoices.PUT("/:id", h.Update)
		invoices.PUT("/:id/status", h.UpdateStatus)
		invoices.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, http.StatusBadRequest, "error", err)
		return
	}

	inv, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		// Validation and rolled-back transactions both surface their message.
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrTransaction) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, inv)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	inv, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, inv)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, http.StatusBadRequest, "error", err)
		return
	}

	if err := h.service.Update(c.Request.Context(), id, req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, http.StatusBadRequest, "error", err)
		return
	}

	res, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid invoice id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "internal server error")
	}
}
