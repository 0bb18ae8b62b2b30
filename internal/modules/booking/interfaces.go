package booking

import (
	"context"

	"petclinic/internal/domain"
	"petclinic/internal/repository"
)

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	History(ctx context.Context, bookingID int64) ([]domain.BookingHistory, error)
	Transition(ctx context.Context, id int64, fn repository.TransitionFunc) (*domain.Booking, error)
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetPet(ctx context.Context, id int64) (*domain.Pet, error)
}

type DoctorSelector interface {
	SelectDoctor(ctx context.Context, branchID int64) (doctorID int64, ok bool, err error)
}
