package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"petclinic/internal/database"
	"petclinic/internal/domain"
)

func setupInvoiceRepo(t *testing.T) (*InvoiceRepository, *gorm.DB) {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return NewInvoiceRepository(db), db
}

func openInvoice(t *testing.T, repo *InvoiceRepository) *domain.Invoice {
	t.Helper()
	inv, err := repo.CreateWithItems(context.Background(), &domain.Invoice{
		BranchID:      1,
		CustomerID:    2,
		EmployeeID:    3,
		InvoiceDate:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		PaymentMethod: "Cash",
		Status:        domain.InvoicePending,
	}, nil, true)
	require.NoError(t, err)
	return inv
}

func TestPatch_RowChangedAfterReadIsStaleWrite(t *testing.T) {
	repo, db := setupInvoiceRepo(t)
	inv := openInvoice(t, repo)

	repo.beforePatchWrite = func(id int64) {
		require.NoError(t, db.Exec("UPDATE invoices SET version = version + 1 WHERE id = ?", id).Error)
	}

	card := "Card"
	_, err := repo.Patch(context.Background(), inv.ID, InvoicePatch{PaymentMethod: &card})
	require.ErrorIs(t, err, ErrStaleWrite)

	got, err := repo.GetByID(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cash", got.PaymentMethod)
}

func TestPatch_RowDeletedAfterReadIsNotFound(t *testing.T) {
	repo, db := setupInvoiceRepo(t)
	inv := openInvoice(t, repo)

	repo.beforePatchWrite = func(id int64) {
		require.NoError(t, db.Exec("DELETE FROM invoices WHERE id = ?", id).Error)
	}

	card := "Card"
	_, err := repo.Patch(context.Background(), inv.ID, InvoicePatch{PaymentMethod: &card})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPatch_BumpsVersion(t *testing.T) {
	repo, _ := setupInvoiceRepo(t)
	inv := openInvoice(t, repo)

	card := "Card"
	got, err := repo.Patch(context.Background(), inv.ID, InvoicePatch{PaymentMethod: &card})
	require.NoError(t, err)
	assert.Equal(t, inv.Version+1, got.Version)
	assert.Equal(t, "Card", got.PaymentMethod)
}

func TestLatestInvoiceID_MatchesHeaderStillBeingCreated(t *testing.T) {
	_, db := setupInvoiceRepo(t)
	date := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Totals already computed: no longer version 1.
	done := domain.Invoice{BranchID: 1, CustomerID: 2, EmployeeID: 3, InvoiceDate: date, Status: domain.InvoicePending, Version: 2}
	require.NoError(t, db.Create(&done).Error)

	header := domain.Invoice{BranchID: 1, CustomerID: 2, EmployeeID: 3, InvoiceDate: date, Status: domain.InvoicePending, Version: 1}
	require.NoError(t, db.Create(&header).Error)

	other := domain.Invoice{BranchID: 1, CustomerID: 9, EmployeeID: 3, InvoiceDate: date, Status: domain.InvoicePending, Version: 1}
	require.NoError(t, db.Create(&other).Error)

	id, err := latestInvoiceID(db, &domain.Invoice{BranchID: 1, CustomerID: 2, EmployeeID: 3, Version: 1})
	require.NoError(t, err)
	assert.Equal(t, header.ID, id)

	_, err = latestInvoiceID(db, &domain.Invoice{BranchID: 5, CustomerID: 2, EmployeeID: 3, Version: 1})
	assert.Error(t, err)
}
