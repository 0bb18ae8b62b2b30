package invoice

import (
	"context"

	"petclinic/internal/domain"
	"petclinic/internal/repository"
)

type InvoiceRepository interface {
	CreateWithItems(ctx context.Context, inv *domain.Invoice, lines []repository.NewLine, dedupe bool) (*domain.Invoice, error)
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus) error
	Patch(ctx context.Context, id int64, p repository.InvoicePatch) (*domain.Invoice, error)
	Delete(ctx context.Context, id int64) (*domain.Invoice, error)
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	FirstAtBranch(ctx context.Context, branchID int64) (*domain.Employee, error)
}
