package procedures

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"petclinic/internal/domain"
	"petclinic/internal/events"
	"petclinic/internal/repository"
)

// Service is the staff point-of-sale flow: open an empty order, add lines one
// at a time, then confirm it.
type Service struct {
	orders    OrderRepository
	employees EmployeeRepository
	publisher events.Publisher
	pointUnit decimal.Decimal
}

func NewService(orders OrderRepository, employees EmployeeRepository, publisher events.Publisher, pointUnit int64) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if pointUnit <= 0 {
		pointUnit = 1000
	}
	return &Service{
		orders:    orders,
		employees: employees,
		publisher: publisher,
		pointUnit: decimal.NewFromInt(pointUnit),
	}
}

func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (int64, error) {
	switch {
	case req.BranchID <= 0:
		return 0, fmt.Errorf("%w: branchId must be greater than 0", ErrValidation)
	case req.CustomerID <= 0:
		return 0, fmt.Errorf("%w: customerId must be greater than 0", ErrValidation)
	case req.EmployeeID <= 0:
		return 0, fmt.Errorf("%w: employeeId must be greater than 0", ErrValidation)
	}

	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%w: employee %d not found", ErrValidation, req.EmployeeID)
		}
		return 0, err
	}

	inv, err := s.orders.CreateWithItems(ctx, &domain.Invoice{
		BranchID:      req.BranchID,
		CustomerID:    req.CustomerID,
		EmployeeID:    req.EmployeeID,
		PetID:         req.PetID,
		InvoiceDate:   time.Now().UTC(),
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Status:        domain.InvoicePending,
	}, nil, false)
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}

	events.Emit(ctx, s.publisher, events.New(events.OrderCreated, inv.BranchID, inv.ID, inv))
	return inv.ID, nil
}

// AddItemToOrder always appends; repeating a call adds the line again.
func (s *Service) AddItemToOrder(ctx context.Context, req AddItemRequest) (*domain.InvoiceItem, error) {
	if req.InvoiceID <= 0 {
		return nil, fmt.Errorf("%w: invoiceId must be greater than 0", ErrValidation)
	}
	itemType, ok := domain.ParseItemType(req.ItemType)
	if !ok {
		return nil, fmt.Errorf("%w: itemType must be PRODUCT or SERVICE", ErrValidation)
	}
	if req.ItemID <= 0 {
		return nil, fmt.Errorf("%w: itemId must be greater than 0", ErrValidation)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than 0", ErrValidation)
	}

	item, inv, err := s.orders.AddLine(ctx, req.InvoiceID, repository.NewLine{
		ItemType: itemType,
		RefID:    req.ItemID,
		Quantity: req.Quantity,
	})
	if err != nil {
		return nil, mapError(err, req.InvoiceID)
	}

	events.Emit(ctx, s.publisher, events.New(events.OrderItemAdded, inv.BranchID, inv.ID, item))
	return item, nil
}

// ConfirmInvoice marks the order Paid and credits loyalty points.
func (s *Service) ConfirmInvoice(ctx context.Context, req ConfirmInvoiceRequest) (*repository.Receipt, error) {
	if req.InvoiceID <= 0 {
		return nil, fmt.Errorf("%w: invoiceId must be greater than 0", ErrValidation)
	}

	receipt, inv, err := s.orders.Confirm(ctx, req.InvoiceID, strings.TrimSpace(req.PaymentMethod), s.pointsFor)
	if err != nil {
		return nil, mapError(err, req.InvoiceID)
	}

	events.Emit(ctx, s.publisher, events.New(events.OrderConfirmed, inv.BranchID, inv.ID, receipt))
	return receipt, nil
}

// pointsFor is one point per full pointUnit of the final amount.
func (s *Service) pointsFor(final decimal.Decimal) int {
	if !final.IsPositive() {
		return 0
	}
	return int(final.Div(s.pointUnit).Floor().IntPart())
}

func mapError(err error, invoiceID int64) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: invoice %d", ErrNotFound, invoiceID)
	case errors.Is(err, repository.ErrInvoiceNotOpen):
		return fmt.Errorf("%w: invoice %d", ErrInvalidState, invoiceID)
	case errors.Is(err, repository.ErrEmptyInvoice):
		return fmt.Errorf("%w: invoice %d has no items", ErrValidation, invoiceID)
	case errors.Is(err, repository.ErrUnknownCatalogItem):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}
