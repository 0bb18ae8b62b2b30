package procedures

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"petclinic/internal/domain"
	"petclinic/internal/repository"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (int64, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderService) AddItemToOrder(ctx context.Context, req AddItemRequest) (*domain.InvoiceItem, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceItem), args.Error(1)
}

func (m *MockOrderService) ConfirmInvoice(ctx context.Context, req ConfirmInvoiceRequest) (*repository.Receipt, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Receipt), args.Error(1)
}

func newRouter(svc OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("employee_id", int64(8))
		c.Set("branch_id", int64(2))
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateOrder_FillsCallerDefaults(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("CreateOrder", mock.Anything, CreateOrderRequest{BranchID: 2, CustomerID: 5, EmployeeID: 8, PaymentMethod: "Cash"}).
		Return(int64(41), nil)

	w := post(newRouter(svc), "/api/v1/procedures/staff/create-order", `{"customerId":5,"paymentMethod":"Cash"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"invoiceId":41}`, w.Body.String())
}

func TestHandler_AddItem_Errors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: invoice 1", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: invoice 1", ErrInvalidState), http.StatusBadRequest},
		{fmt.Errorf("%w: quantity", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("database is locked"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		svc := new(MockOrderService)
		svc.On("AddItemToOrder", mock.Anything, mock.Anything).Return(nil, tt.err)

		w := post(newRouter(svc), "/api/v1/procedures/staff/add-item-to-order", `{"invoiceId":1,"itemType":"PRODUCT","itemId":3,"quantity":1}`)

		assert.Equal(t, tt.want, w.Code, tt.err.Error())
		assert.Contains(t, w.Body.String(), `"message":`)
	}
}

func TestHandler_ConfirmInvoice(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ConfirmInvoice", mock.Anything, ConfirmInvoiceRequest{InvoiceID: 4, PaymentMethod: "Card"}).
		Return(&repository.Receipt{InvoiceID: 4, CustomerName: "Ann Lee", StaffName: "Kim Desk", PaymentMethod: "Card"}, nil)

	w := post(newRouter(svc), "/api/v1/procedures/staff/confirm-invoice", `{"invoiceId":4,"paymentMethod":"Card"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"customerName":"Ann Lee"`)
	assert.Contains(t, w.Body.String(), `"staffName":"Kim Desk"`)
}
