package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"petclinic/internal/domain"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CreateByStaff(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CreateByCustomer(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Get(ctx context.Context, id int64) (*DetailsResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*DetailsResponse), args.Error(1)
}

func (m *MockBookingService) Update(ctx context.Context, id int64, req UpdateBookingRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (*domain.Booking, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CheckIn(ctx context.Context, id, employeeID int64) (*domain.Booking, error) {
	args := m.Called(ctx, id, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func newRouter(svc BookingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("employee_id", int64(31))
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), nil)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var createBody = map[string]any{
	"customerId":        1,
	"petId":             2,
	"bookingType":       "CheckHealth",
	"requestedDateTime": "2026-05-01T10:00:00",
	"status":            "Pending",
}

func TestHandler_Create(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(r CreateBookingRequest) bool {
		return r.RequestedDateTime != nil && r.RequestedDateTime.Hour() == 10
	})).Return(&domain.Booking{ID: 9, Status: domain.BookingPending}, nil)

	w := doJSON(newRouter(svc), http.MethodPost, "/api/v1/bookings", createBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":9`)
}

func TestHandler_Create_BindingError(t *testing.T) {
	w := doJSON(newRouter(new(MockBookingService)), http.MethodPost, "/api/v1/bookings", map[string]any{"petId": 2})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "customerId")
}

func TestHandler_CreateExtended_ReturnsNewBookingID(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("CreateByStaff", mock.Anything, mock.Anything).Return(&domain.Booking{ID: 15}, nil)
	svc.On("CreateByCustomer", mock.Anything, mock.Anything).Return(&domain.Booking{ID: 16}, nil)
	r := newRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/bookingextended/create-by-staff", createBody)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"newBookingId":15}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/v1/bookingextended/create-by-customer", createBody)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"newBookingId":16}`, w.Body.String())
}

func TestHandler_Update(t *testing.T) {
	body := map[string]any{
		"id":                4,
		"customerId":        1,
		"petId":             2,
		"bookingType":       "CheckHealth",
		"requestedDateTime": "2026-05-01T10:00:00Z",
		"status":            "Confirmed",
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusNoContent},
		{"id mismatch", ErrIDMismatch, http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: booking 4", ErrNotFound), http.StatusNotFound},
		{"validation", fmt.Errorf("%w: bad date", ErrValidation), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockBookingService)
			svc.On("Update", mock.Anything, int64(4), mock.Anything).Return(tt.err)

			w := doJSON(newRouter(svc), http.MethodPut, "/api/v1/bookings/4", body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestHandler_UpdateStatus(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("UpdateStatus", mock.Anything, int64(3), UpdateStatusRequest{Status: "Cancelled"}).
		Return(&domain.Booking{ID: 3, Status: domain.BookingCancelled}, nil)
	svc.On("UpdateStatus", mock.Anything, int64(8), mock.Anything).
		Return(nil, fmt.Errorf("%w: booking 8", ErrNotFound))
	r := newRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/bookings/3/status", map[string]string{"status": "Cancelled"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Booking status updated to Cancelled"}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/api/v1/bookings/8/status", map[string]string{"status": "Cancelled"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_CheckIn_UsesCallerIdentity(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("CheckIn", mock.Anything, int64(3), int64(31)).
		Return(&domain.Booking{ID: 3, Status: domain.BookingConfirmed}, nil)

	w := doJSON(newRouter(svc), http.MethodPost, "/api/v1/bookings/3/check-in", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestHandler_InvalidID(t *testing.T) {
	w := doJSON(newRouter(new(MockBookingService)), http.MethodGet, "/api/v1/bookings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
