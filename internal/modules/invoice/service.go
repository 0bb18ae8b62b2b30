package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"petclinic/internal/domain"
	"petclinic/internal/events"
	"petclinic/internal/repository"
)

type Service struct {
	invoices  InvoiceRepository
	employees EmployeeRepository
	publisher events.Publisher
}

func NewService(invoices InvoiceRepository, employees EmployeeRepository, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		invoices:  invoices,
		employees: employees,
		publisher: publisher,
	}
}

// Create writes the invoice and its lines atomically. Lines identical to one
// already on the invoice are skipped, so a replayed submission inserts nothing new.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*domain.Invoice, error) {
	if req.BranchID <= 0 {
		return nil, fmt.Errorf("%w: branchId must be greater than 0", ErrValidation)
	}
	if req.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: customerId must be greater than 0", ErrValidation)
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method == "" {
		return nil, fmt.Errorf("%w: paymentMethod is required", ErrValidation)
	}
	if req.DiscountAmount.IsNegative() {
		return nil, fmt.Errorf("%w: discountAmount must not be negative", ErrValidation)
	}

	status := domain.InvoicePending
	if strings.TrimSpace(req.Status) != "" {
		var ok bool
		if status, ok = domain.ParseInvoiceStatus(req.Status); !ok {
			return nil, fmt.Errorf("%w: unknown invoice status %q", ErrValidation, req.Status)
		}
	}

	lines, err := toLines(req.Items)
	if err != nil {
		return nil, err
	}

	employeeID, err := s.billingEmployee(ctx, req.BranchID, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	date := time.Now().UTC()
	if req.InvoiceDate != nil && !req.InvoiceDate.IsZero() {
		date = req.InvoiceDate.Time
	}

	inv := &domain.Invoice{
		BranchID:       req.BranchID,
		CustomerID:     req.CustomerID,
		EmployeeID:     employeeID,
		PetID:          req.PetID,
		InvoiceDate:    date,
		DiscountAmount: req.DiscountAmount,
		PaymentMethod:  method,
		Status:         status,
	}

	created, err := s.invoices.CreateWithItems(ctx, inv, lines, true)
	if err != nil {
		log.Error().Err(err).
			Int64("branch_id", req.BranchID).
			Int64("customer_id", req.CustomerID).
			Msg("invoice creation rolled back")
		if errors.Is(err, repository.ErrUnknownCatalogItem) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransaction, err)
	}

	events.Emit(ctx, s.publisher, events.New(events.InvoiceCreated, created.BranchID, created.ID, created))
	return created, nil
}

func (s *Service) billingEmployee(ctx context.Context, branchID int64, requested *int64) (int64, error) {
	if requested != nil && *requested > 0 {
		e, err := s.employees.GetByID(ctx, *requested)
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%w: employee %d not found", ErrValidation, *requested)
		}
		if err != nil {
			return 0, err
		}
		return e.ID, nil
	}

	e, err := s.employees.FirstAtBranch(ctx, branchID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("%w: no employee found in this branch", ErrValidation)
	}
	if err != nil {
		return 0, err
	}
	return e.ID, nil
}

func toLines(items []CreateItemRequest) ([]repository.NewLine, error) {
	lines := make([]repository.NewLine, 0, len(items))
	for i, it := range items {
		line, err := toLine(it)
		if err != nil {
			return nil, fmt.Errorf("%w (item %d)", err, i+1)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func toLine(it CreateItemRequest) (repository.NewLine, error) {
	itemType, ok := domain.ParseItemType(it.ItemType)
	if !ok {
		return repository.NewLine{}, fmt.Errorf("%w: itemType must be PRODUCT or SERVICE", ErrValidation)
	}

	var ref *int64
	switch itemType {
	case domain.ItemProduct:
		ref = it.ProductID
	case domain.ItemService:
		ref = it.ServiceID
	}
	if ref == nil || *ref <= 0 {
		return repository.NewLine{}, fmt.Errorf("%w: %s item needs a matching product or service id", ErrValidation, itemType)
	}
	if it.Quantity <= 0 {
		return repository.NewLine{}, fmt.Errorf("%w: quantity must be greater than 0", ErrValidation)
	}
	if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
		return repository.NewLine{}, fmt.Errorf("%w: unitPrice must not be negative", ErrValidation)
	}

	return repository.NewLine{
		ItemType:  itemType,
		RefID:     *ref,
		Quantity:  it.Quantity,
		UnitPrice: it.UnitPrice,
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	return inv, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, raw string) (*StatusResponse, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}

	status, ok := domain.ParseInvoiceStatus(raw)
	if !ok {
		return nil, fmt.Errorf("%w: status must be one of Pending, Processing, Paid, Cancelled", ErrValidation)
	}

	if err := s.invoices.UpdateStatus(ctx, id, status); err != nil {
		return nil, notFound(err, id)
	}

	events.Emit(ctx, s.publisher, events.New(events.InvoiceStatusChanged, inv.BranchID, id, StatusResponse{ID: id, Status: status}))
	return &StatusResponse{ID: id, Status: status}, nil
}

// Update applies a partial change. A concurrent modification is reported, not retried.
func (s *Service) Update(ctx context.Context, id int64, req UpdateInvoiceRequest) error {
	var patch repository.InvoicePatch

	if req.PaymentMethod != nil {
		method := strings.TrimSpace(*req.PaymentMethod)
		if method == "" {
			return fmt.Errorf("%w: paymentMethod must not be empty", ErrValidation)
		}
		patch.PaymentMethod = &method
	}
	if req.Status != nil {
		status, ok := domain.ParseInvoiceStatus(*req.Status)
		if !ok {
			return fmt.Errorf("%w: unknown invoice status %q", ErrValidation, *req.Status)
		}
		patch.Status = &status
	}
	if req.DiscountAmount != nil {
		if req.DiscountAmount.IsNegative() {
			return fmt.Errorf("%w: discountAmount must not be negative", ErrValidation)
		}
		patch.DiscountAmount = req.DiscountAmount
	}

	if patch.Empty() {
		return fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	inv, err := s.invoices.Patch(ctx, id, patch)
	switch {
	case errors.Is(err, repository.ErrStaleWrite):
		return fmt.Errorf("%w: invoice %d", ErrConflict, id)
	case err != nil:
		return notFound(err, id)
	}

	events.Emit(ctx, s.publisher, events.New(events.InvoiceUpdated, inv.BranchID, id, inv))
	return nil
}

// Delete also removes the loyalty transactions that reference the invoice.
func (s *Service) Delete(ctx context.Context, id int64) error {
	inv, err := s.invoices.Delete(ctx, id)
	if err != nil {
		return notFound(err, id)
	}

	events.Emit(ctx, s.publisher, events.New(events.InvoiceDeleted, inv.BranchID, id, nil))
	return nil
}

func notFound(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: invoice %d", ErrNotFound, id)
	}
	return err
}
