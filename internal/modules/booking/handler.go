package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"petclinic/internal/domain"
	"petclinic/internal/middleware"
	"petclinic/internal/pkg/response"
)

type BookingService interface {
	Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	CreateByStaff(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	CreateByCustomer(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error)
	Get(ctx context.Context, id int64) (*DetailsResponse, error)
	Update(ctx context.Context, id int64, req UpdateBookingRequest) error
	UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (*domain.Booking, error)
	CheckIn(ctx context.Context, id, employeeID int64) (*domain.Booking, error)
}

type Handler struct {
	service BookingService
}

func NewHandler(service BookingService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the booking endpoints; staffOnly guards the front-desk actions.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, staffOnly gin.HandlerFunc) {
	if staffOnly == nil {
		staffOnly = func(c *gin.Context) { c.Next() }
	}

	rg.POST("/bookings", staffOnly, h.Create)
	rg.GET("/bookings/:id", h.Get)
	rg.PUT("/bookings/:id", staffOnly, h.Update)
	rg.POST("/bookings/:id/status", staffOnly, h.UpdateStatus)
	rg.POST("/bookings/:id/check-in", staffOnly, h.CheckIn)

	rg.POST("/bookingextended/create-by-staff", staffOnly, h.CreateByStaff)
	rg.POST("/bookingextended/create-by-customer", h.CreateByCustomer)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, http.StatusBadRequest, "error", err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, b)
}

func (h *Handler) CreateByStaff(c *gin.Context) {
	h.createExtended(c, h.service.CreateByStaff)
}

func (h *Handler) CreateByCustomer(c *gin.Context) {
	h.createExtended(c, h.service.CreateByCustomer)
}

func (h *Handler) createExtended(c *gin.Context, create func(context.Context, CreateBookingRequest) (*domain.Booking, error)) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, http.StatusBadRequest, "error", err)
		return
	}

	b, err := create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, CreatedResponse{NewBookingID: b.ID})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	details, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateBookingRequest
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

	b, err := h.service.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Booking status updated to "+string(b.Status))
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	employeeID := c.GetInt64(middleware.CtxEmployeeID)
	var req CheckInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindError(c, http.StatusBadRequest, "error", err)
			return
		}
		if req.EmployeeID > 0 {
			employeeID = req.EmployeeID
		}
	}

	b, err := h.service.CheckIn(c.Request.Context(), id, employeeID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, b)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid booking id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrIDMismatch):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "internal server error")
	}
}
