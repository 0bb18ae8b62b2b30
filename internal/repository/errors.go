package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStaleWrite means the row changed between read and write.
	ErrStaleWrite = errors.New("row was modified concurrently")
	// ErrUnknownCatalogItem means an invoice line references a missing product or service.
	ErrUnknownCatalogItem = errors.New("unknown product or service")
	ErrInvoiceNotOpen     = errors.New("invoice is not open for changes")
	ErrEmptyInvoice       = errors.New("invoice has no items")
)

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return errors.Join(ErrStaleWrite, err)
		}
	}
	return err
}
