package procedures

import (
	"context"

	"github.com/shopspring/decimal"

	"petclinic/internal/domain"
	"petclinic/internal/repository"
)

type OrderRepository interface {
	CreateWithItems(ctx context.Context, inv *domain.Invoice, lines []repository.NewLine, dedupe bool) (*domain.Invoice, error)
	AddLine(ctx context.Context, invoiceID int64, line repository.NewLine) (*domain.InvoiceItem, *domain.Invoice, error)
	Confirm(ctx context.Context, invoiceID int64, paymentMethod string, pointsFor func(decimal.Decimal) int) (*repository.Receipt, *domain.Invoice, error)
}

type EmployeeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}
