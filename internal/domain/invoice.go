package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoicePending    InvoiceStatus = "Pending"
	InvoiceProcessing InvoiceStatus = "Processing"
	InvoicePaid       InvoiceStatus = "Paid"
	InvoiceCancelled  InvoiceStatus = "Cancelled"
)

var invoiceStatuses = []InvoiceStatus{
	InvoicePending,
	InvoiceProcessing,
	InvoicePaid,
	InvoiceCancelled,
}

// ParseInvoiceStatus matches s against the closed set of invoice statuses.
// Anything else, including the legacy "Completed" label, is rejected.
func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range invoiceStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

type ItemType string

const (
	ItemProduct ItemType = "PRODUCT"
	ItemService ItemType = "SERVICE"
)

func ParseItemType(s string) (ItemType, bool) {
	switch ItemType(strings.ToUpper(strings.TrimSpace(s))) {
	case ItemProduct:
		return ItemProduct, true
	case ItemService:
		return ItemService, true
	}
	return "", false
}

type Invoice struct {
	ID             int64           `json:"id" gorm:"primaryKey"`
	BranchID       int64           `json:"branchId" gorm:"not null;index"`
	CustomerID     int64           `json:"customerId" gorm:"not null;index"`
	EmployeeID     int64           `json:"employeeId" gorm:"not null;index"`
	PetID          *int64          `json:"petId,omitempty"`
	InvoiceDate    time.Time       `json:"invoiceDate" gorm:"not null"`
	TotalAmount    decimal.Decimal `json:"totalAmount" gorm:"type:decimal(18,2);not null"`
	DiscountAmount decimal.Decimal `json:"discountAmount" gorm:"type:decimal(18,2);not null"`
	FinalAmount    decimal.Decimal `json:"finalAmount" gorm:"type:decimal(18,2);not null"`
	PaymentMethod  string          `json:"paymentMethod" gorm:"size:50"`
	Status         InvoiceStatus   `json:"status" gorm:"size:20;not null;index"`
	Version        int64           `json:"-" gorm:"not null"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`

	Items []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID"`
}

func (Invoice) TableName() string { return "invoices" }

// BeforeSave keeps FinalAmount = TotalAmount - DiscountAmount on every struct write.
func (i *Invoice) BeforeSave(_ *gorm.DB) error {
	i.FinalAmount = i.TotalAmount.Sub(i.DiscountAmount)
	return nil
}

type InvoiceItem struct {
	ID         int64           `json:"id" gorm:"primaryKey"`
	InvoiceID  int64           `json:"invoiceId" gorm:"not null;index"`
	ItemType   ItemType        `json:"itemType" gorm:"size:10;not null"`
	ProductID  *int64          `json:"productId,omitempty" gorm:"index"`
	ServiceID  *int64          `json:"serviceId,omitempty" gorm:"index"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unitPrice" gorm:"type:decimal(18,2);not null"`
	TotalPrice decimal.Decimal `json:"totalPrice" gorm:"type:decimal(18,2);not null"`

	// Resolved from the catalog on read.
	ItemName string `json:"itemName,omitempty" gorm:"-"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// BeforeSave keeps TotalPrice = Quantity * UnitPrice on every struct write.
func (it *InvoiceItem) BeforeSave(_ *gorm.DB) error {
	it.TotalPrice = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	return nil
}

// RefID is the product or service id, depending on the item type.
func (it InvoiceItem) RefID() int64 {
	if it.ItemType == ItemService && it.ServiceID != nil {
		return *it.ServiceID
	}
	if it.ProductID != nil {
		return *it.ProductID
	}
	return 0
}

type LoyaltyTransaction struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	CustomerID int64     `json:"customerId" gorm:"not null;index"`
	InvoiceID  *int64    `json:"invoiceId,omitempty" gorm:"index"`
	Points     int       `json:"points" gorm:"not null"`
	Reason     string    `json:"reason,omitempty" gorm:"size:100"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (LoyaltyTransaction) TableName() string { return "loyalty_transactions" }
