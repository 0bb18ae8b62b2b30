package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petclinic/internal/domain"
)

type InvoiceRepository struct {
	db *gorm.DB

	// beforePatchWrite runs between Patch's read and its versioned write. Tests only.
	beforePatchWrite func(id int64)
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// NewLine is an invoice line to insert. A nil UnitPrice takes the catalog price.
type NewLine struct {
	ItemType  domain.ItemType
	RefID     int64
	Quantity  int
	UnitPrice *decimal.Decimal
}

// InvoicePatch holds the fields a partial invoice update may touch.
type InvoicePatch struct {
	PaymentMethod  *string
	Status         *domain.InvoiceStatus
	DiscountAmount *decimal.Decimal
}

func (p InvoicePatch) Empty() bool {
	return p.PaymentMethod == nil && p.Status == nil && p.DiscountAmount == nil
}

// Receipt summarises a confirmed draft order.
type Receipt struct {
	InvoiceID      int64           `json:"invoiceId"`
	CustomerName   string          `json:"customerName"`
	StaffName      string          `json:"staffName"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	PaymentMethod  string          `json:"paymentMethod"`
	PointsEarned   int             `json:"pointsEarned"`
}

// CreateWithItems writes the header, then each line, then the totals, in one transaction.
// With dedupe set a line identical to one already on the invoice is skipped.
func (r *InvoiceRepository) CreateWithItems(ctx context.Context, inv *domain.Invoice, lines []NewLine, dedupe bool) (*domain.Invoice, error) {
	var out *domain.Invoice

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv.ID = 0
		inv.Items = nil
		inv.TotalAmount = decimal.Zero
		inv.Version = 1
		if err := tx.Omit(clause.Associations).Create(inv).Error; err != nil {
			return err
		}

		// The header goes in before its lines. Drivers that return no generated key
		// leave inv.ID at 0; the id is then read back inside this transaction.
		id := inv.ID
		if id == 0 {
			var err error
			if id, err = latestInvoiceID(tx, inv); err != nil {
				return err
			}
		}

		for _, line := range lines {
			item, err := buildItem(tx, id, line)
			if err != nil {
				return err
			}

			if dedupe {
				dup, err := hasIdenticalItem(tx, item)
				if err != nil {
					return err
				}
				if dup {
					continue
				}
			}

			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}

		if err := recalculate(tx, id); err != nil {
			return err
		}

		loaded, err := loadInvoice(tx, id)
		if err != nil {
			return err
		}
		out = loaded
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	inv, err := loadInvoice(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, translate(err)
	}
	return inv, nil
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  status,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Patch applies p if the invoice still has the version it was read at.
func (r *InvoiceRepository) Patch(ctx context.Context, id int64, p InvoicePatch) (*domain.Invoice, error) {
	db := r.db.WithContext(ctx)

	var cur domain.Invoice
	if err := db.First(&cur, id).Error; err != nil {
		return nil, translate(err)
	}

	updates := map[string]any{"version": gorm.Expr("version + 1")}
	if p.PaymentMethod != nil {
		updates["payment_method"] = *p.PaymentMethod
		cur.PaymentMethod = *p.PaymentMethod
	}
	if p.Status != nil {
		updates["status"] = *p.Status
		cur.Status = *p.Status
	}
	if p.DiscountAmount != nil {
		cur.DiscountAmount = *p.DiscountAmount
		cur.FinalAmount = cur.TotalAmount.Sub(cur.DiscountAmount)
		updates["discount_amount"] = cur.DiscountAmount
		updates["final_amount"] = cur.FinalAmount
	}

	if r.beforePatchWrite != nil {
		r.beforePatchWrite(id)
	}

	res := db.Model(&domain.Invoice{}).
		Where("id = ? AND version = ?", id, cur.Version).
		Updates(updates)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.Model(&domain.Invoice{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return nil, translate(err)
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrStaleWrite
	}

	cur.Version++
	return &cur, nil
}

// Delete removes the invoice together with its lines and the loyalty
// transactions that reference it.
func (r *InvoiceRepository) Delete(ctx context.Context, id int64) (*domain.Invoice, error) {
	var deleted domain.Invoice

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&domain.LoyaltyTransaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&domain.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Invoice{}, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &deleted, nil
}

// AddLine appends one line to a Pending invoice without duplicate suppression.
func (r *InvoiceRepository) AddLine(ctx context.Context, invoiceID int64, line NewLine) (*domain.InvoiceItem, *domain.Invoice, error) {
	var item *domain.InvoiceItem
	var inv *domain.Invoice

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOpenInvoice(tx, invoiceID); err != nil {
			return err
		}

		var err error
		if item, err = buildItem(tx, invoiceID, line); err != nil {
			return err
		}
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		if err := recalculate(tx, invoiceID); err != nil {
			return err
		}

		items := []domain.InvoiceItem{*item}
		if err := attachItemNames(tx, items); err != nil {
			return err
		}
		item.ItemName = items[0].ItemName

		inv, err = loadInvoice(tx, invoiceID)
		return err
	})
	if err != nil {
		return nil, nil, translate(err)
	}
	return item, inv, nil
}

// Confirm marks a Pending invoice with at least one line as Paid and credits the
// customer pointsFor(final amount) loyalty points.
func (r *InvoiceRepository) Confirm(ctx context.Context, invoiceID int64, paymentMethod string, pointsFor func(decimal.Decimal) int) (*Receipt, *domain.Invoice, error) {
	var receipt Receipt
	var inv *domain.Invoice

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOpenInvoice(tx, invoiceID); err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&domain.InvoiceItem{}).Where("invoice_id = ?", invoiceID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrEmptyInvoice
		}

		if err := recalculate(tx, invoiceID); err != nil {
			return err
		}

		updates := map[string]any{
			"status":  domain.InvoicePaid,
			"version": gorm.Expr("version + 1"),
		}
		if paymentMethod != "" {
			updates["payment_method"] = paymentMethod
		}
		if err := tx.Model(&domain.Invoice{}).Where("id = ?", invoiceID).Updates(updates).Error; err != nil {
			return err
		}

		var err error
		if inv, err = loadInvoice(tx, invoiceID); err != nil {
			return err
		}

		points := 0
		if pointsFor != nil {
			points = pointsFor(inv.FinalAmount)
		}
		if points > 0 {
			id := inv.ID
			ltx := domain.LoyaltyTransaction{
				CustomerID: inv.CustomerID,
				InvoiceID:  &id,
				Points:     points,
				Reason:     "invoice payment",
			}
			if err := tx.Create(&ltx).Error; err != nil {
				return err
			}
		}

		var customer domain.Customer
		if err := tx.Select("id, full_name").Limit(1).Find(&customer, inv.CustomerID).Error; err != nil {
			return err
		}
		var staff domain.Employee
		if err := tx.Select("id, full_name").Limit(1).Find(&staff, inv.EmployeeID).Error; err != nil {
			return err
		}

		receipt = Receipt{
			InvoiceID:      inv.ID,
			CustomerName:   customer.FullName,
			StaffName:      staff.FullName,
			TotalAmount:    inv.TotalAmount,
			DiscountAmount: inv.DiscountAmount,
			FinalAmount:    inv.FinalAmount,
			PaymentMethod:  inv.PaymentMethod,
			PointsEarned:   points,
		}
		return nil
	})
	if err != nil {
		return nil, nil, translate(err)
	}
	return &receipt, inv, nil
}

// LoyaltyTransactions lists the loyalty rows that reference an invoice.
func (r *InvoiceRepository) LoyaltyTransactions(ctx context.Context, invoiceID int64) ([]domain.LoyaltyTransaction, error) {
	var rows []domain.LoyaltyTransaction
	if err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func lockOpenInvoice(tx *gorm.DB, id int64) (*domain.Invoice, error) {
	var inv domain.Invoice
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error; err != nil {
		return nil, err
	}
	if inv.Status != domain.InvoicePending {
		return nil, ErrInvoiceNotOpen
	}
	return &inv, nil
}

// latestInvoiceID finds the header just inserted by inv when the driver reported
// no generated key. Headers leave version 1 when their totals are first computed,
// so only headers still inside their creating transaction can match.
func latestInvoiceID(tx *gorm.DB, inv *domain.Invoice) (int64, error) {
	var ids []int64
	err := tx.Model(&domain.Invoice{}).
		Where("branch_id = ? AND customer_id = ? AND employee_id = ? AND version = ?",
			inv.BranchID, inv.CustomerID, inv.EmployeeID, inv.Version).
		Order("id DESC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, errors.New("inserted invoice not found")
	}
	return ids[0], nil
}

func buildItem(tx *gorm.DB, invoiceID int64, line NewLine) (*domain.InvoiceItem, error) {
	ref := line.RefID
	item := &domain.InvoiceItem{
		InvoiceID: invoiceID,
		ItemType:  line.ItemType,
		Quantity:  line.Quantity,
	}
	switch line.ItemType {
	case domain.ItemProduct:
		item.ProductID = &ref
	case domain.ItemService:
		item.ServiceID = &ref
	}

	price, err := catalogPrice(tx, item)
	if err != nil {
		return nil, err
	}
	if line.UnitPrice != nil {
		price = *line.UnitPrice
	}
	item.UnitPrice = price
	item.TotalPrice = price.Mul(decimal.NewFromInt(int64(line.Quantity)))
	return item, nil
}

func hasIdenticalItem(tx *gorm.DB, it *domain.InvoiceItem) (bool, error) {
	q := tx.Model(&domain.InvoiceItem{}).
		Where("invoice_id = ? AND item_type = ? AND quantity = ? AND unit_price = ?",
			it.InvoiceID, it.ItemType, it.Quantity, it.UnitPrice)
	if it.ItemType == domain.ItemService {
		q = q.Where("service_id = ?", it.RefID())
	} else {
		q = q.Where("product_id = ?", it.RefID())
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// recalculate sets total = sum of line totals and final = total - discount.
func recalculate(tx *gorm.DB, invoiceID int64) error {
	var items []domain.InvoiceItem
	if err := tx.Select("id, total_price").Where("invoice_id = ?", invoiceID).Find(&items).Error; err != nil {
		return err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}

	var inv domain.Invoice
	if err := tx.Select("id, discount_amount").First(&inv, invoiceID).Error; err != nil {
		return err
	}

	return tx.Model(&domain.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]any{
			"total_amount": total,
			"final_amount": total.Sub(inv.DiscountAmount),
			"version":      gorm.Expr("version + 1"),
		}).Error
}

func loadInvoice(db *gorm.DB, id int64) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.Preload("Items", func(q *gorm.DB) *gorm.DB {
		return q.Order("id ASC")
	}).First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	if err := attachItemNames(db, inv.Items); err != nil {
		return nil, err
	}
	return &inv, nil
}
