package invoice

import (
	"github.com/shopspring/decimal"

	"petclinic/internal/domain"
	"petclinic/internal/pkg/jsontime"
)

type CreateInvoiceRequest struct {
	BranchID       int64               `json:"branchId"`
	CustomerID     int64               `json:"customerId"`
	EmployeeID     *int64              `json:"employeeId"`
	PetID          *int64              `json:"petId"`
	InvoiceDate    *jsontime.DateTime  `json:"invoiceDate"`
	DiscountAmount decimal.Decimal     `json:"discountAmount"`
	PaymentMethod  string              `json:"paymentMethod"`
	Status         string              `json:"status"`
	Items          []CreateItemRequest `json:"items"`
}

type CreateItemRequest struct {
	ItemType  string           `json:"itemType"`
	ProductID *int64           `json:"productId"`
	ServiceID *int64           `json:"serviceId"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

// UpdateInvoiceRequest is a patch: absent fields stay as they are.
type UpdateInvoiceRequest struct {
	PaymentMethod  *string          `json:"paymentMethod"`
	Status         *string          `json:"status"`
	DiscountAmount *decimal.Decimal `json:"discountAmount"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type StatusResponse struct {
	ID     int64                `json:"id"`
	Status domain.InvoiceStatus `json:"status"`
}
