package procedures

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"petclinic/internal/database"
	"petclinic/internal/domain"
	"petclinic/internal/repository"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	invoices *repository.InvoiceRepository
	branch   domain.Branch
	customer domain.Customer
	staff    domain.Employee
	leash    domain.Product
	surgery  domain.Service
}

func setupTestService(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &fixture{db: db}
	f.branch = domain.Branch{Name: "Central"}
	require.NoError(t, db.Create(&f.branch).Error)
	f.customer = domain.Customer{FullName: "Ann Lee"}
	require.NoError(t, db.Create(&f.customer).Error)
	f.staff = domain.Employee{BranchID: f.branch.ID, FullName: "Kim Desk", Role: domain.RoleReceptionist, Active: true}
	require.NoError(t, db.Create(&f.staff).Error)
	f.leash = domain.Product{Name: "Leash", Price: decimal.RequireFromString("300")}
	require.NoError(t, db.Create(&f.leash).Error)
	f.surgery = domain.Service{Name: "Spay surgery", Price: decimal.RequireFromString("2500")}
	require.NoError(t, db.Create(&f.surgery).Error)

	f.invoices = repository.NewInvoiceRepository(db)
	f.svc = NewService(f.invoices, repository.NewEmployeeRepository(db), nil, 1000)
	return f
}

func (f *fixture) open(t *testing.T) int64 {
	t.Helper()
	id, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		BranchID:      f.branch.ID,
		CustomerID:    f.customer.ID,
		EmployeeID:    f.staff.ID,
		PaymentMethod: "Cash",
	})
	require.NoError(t, err)
	return id
}

func TestDraftOrder_FullFlow(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	id := f.open(t)
	inv, err := f.invoices.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePending, inv.Status)
	assert.Empty(t, inv.Items)

	item, err := f.svc.AddItemToOrder(ctx, AddItemRequest{InvoiceID: id, ItemType: "SERVICE", ItemID: f.surgery.ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "Spay surgery", item.ItemName)

	// Same line twice is deliberate here: both are kept.
	for i := 0; i < 2; i++ {
		_, err = f.svc.AddItemToOrder(ctx, AddItemRequest{InvoiceID: id, ItemType: "PRODUCT", ItemID: f.leash.ID, Quantity: 1})
		require.NoError(t, err)
	}

	receipt, err := f.svc.ConfirmInvoice(ctx, ConfirmInvoiceRequest{InvoiceID: id, PaymentMethod: "Card"})
	require.NoError(t, err)

	assert.Equal(t, "Ann Lee", receipt.CustomerName)
	assert.Equal(t, "Kim Desk", receipt.StaffName)
	assert.Equal(t, "Card", receipt.PaymentMethod)
	assert.True(t, receipt.TotalAmount.Equal(decimal.RequireFromString("3100")), receipt.TotalAmount.String())
	assert.True(t, receipt.FinalAmount.Equal(receipt.TotalAmount.Sub(receipt.DiscountAmount)))
	assert.Equal(t, 3, receipt.PointsEarned)

	inv, err = f.invoices.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePaid, inv.Status)
	assert.Len(t, inv.Items, 3)

	points, err := f.invoices.LoyaltyTransactions(ctx, id)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 3, points[0].Points)
	assert.Equal(t, f.customer.ID, points[0].CustomerID)
}

func TestDraftOrder_ClosedOrderRejectsChanges(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	id := f.open(t)
	_, err := f.svc.AddItemToOrder(ctx, AddItemRequest{InvoiceID: id, ItemType: "PRODUCT", ItemID: f.leash.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.ConfirmInvoice(ctx, ConfirmInvoiceRequest{InvoiceID: id})
	require.NoError(t, err)

	_, err = f.svc.AddItemToOrder(ctx, AddItemRequest{InvoiceID: id, ItemType: "PRODUCT", ItemID: f.leash.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.ConfirmInvoice(ctx, ConfirmInvoiceRequest{InvoiceID: id})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDraftOrder_ConfirmEmptyOrder(t *testing.T) {
	f := setupTestService(t)
	id := f.open(t)

	_, err := f.svc.ConfirmInvoice(context.Background(), ConfirmInvoiceRequest{InvoiceID: id})
	assert.ErrorIs(t, err, ErrValidation)

	inv, err := f.invoices.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePending, inv.Status)
}

func TestDraftOrder_UnknownInvoiceAndItem(t *testing.T) {
	f := setupTestService(t)
	ctx := context.Background()

	_, err := f.svc.AddItemToOrder(ctx, AddItemRequest{InvoiceID: 404, ItemType: "PRODUCT", ItemID: f.leash.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.ConfirmInvoice(ctx, ConfirmInvoiceRequest{InvoiceID: 404})
	assert.ErrorIs(t, err, ErrNotFound)

	id := f.open(t)
	_, err = f.svc.AddItemToOrder(ctx, AddItemRequest{InvoiceID: id, ItemType: "SERVICE", ItemID: 777, Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := setupTestService(t)

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{CustomerID: f.customer.ID, EmployeeID: f.staff.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateOrder(context.Background(), CreateOrderRequest{BranchID: f.branch.ID, CustomerID: f.customer.ID, EmployeeID: 999})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPointsFor(t *testing.T) {
	svc := NewService(nil, nil, nil, 1000)

	assert.Equal(t, 0, svc.pointsFor(decimal.RequireFromString("999.99")))
	assert.Equal(t, 1, svc.pointsFor(decimal.RequireFromString("1000")))
	assert.Equal(t, 12, svc.pointsFor(decimal.RequireFromString("12999")))
	assert.Equal(t, 0, svc.pointsFor(decimal.RequireFromString("-50")))
}
