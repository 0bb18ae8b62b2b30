package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petclinic/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// History returns the audit rows of a booking, oldest first.
func (r *BookingRepository) History(ctx context.Context, bookingID int64) ([]domain.BookingHistory, error) {
	var rows []domain.BookingHistory
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// TransitionFunc mutates the locked booking and returns the audit row to append,
// or nil when nothing worth recording changed.
type TransitionFunc func(b *domain.Booking) (*domain.BookingHistory, error)

// Transition loads the booking under a row lock, applies fn, then saves the booking
// and its history row in one transaction.
func (r *BookingRepository) Transition(ctx context.Context, id int64, fn TransitionFunc) (*domain.Booking, error) {
	var out domain.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b domain.Booking
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, id).Error; err != nil {
			return err
		}

		h, err := fn(&b)
		if err != nil {
			return err
		}

		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		if h != nil {
			h.ID = 0
			h.BookingID = b.ID
			if err := tx.Create(h).Error; err != nil {
				return err
			}
		}

		out = b
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}
