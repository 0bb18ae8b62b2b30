package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"petclinic/internal/domain"
	"petclinic/internal/events"
	"petclinic/internal/modules/assignment"
	"petclinic/internal/repository"
)

type Service struct {
	bookings  BookingRepository
	customers CustomerRepository
	selector  DoctorSelector
	lease     assignment.Lease
	publisher events.Publisher
}

func NewService(
	bookings BookingRepository,
	customers CustomerRepository,
	selector DoctorSelector,
	lease assignment.Lease,
	publisher events.Publisher,
) *Service {
	if lease == nil {
		lease = assignment.NoLease{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		bookings:  bookings,
		customers: customers,
		selector:  selector,
		lease:     lease,
		publisher: publisher,
	}
}

// Create persists a booking with the status given in the request.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if strings.TrimSpace(req.Status) == "" {
		return nil, fmt.Errorf("%w: status is required", ErrValidation)
	}
	return s.create(ctx, req)
}

// CreateByStaff defaults the status to Confirmed.
func (s *Service) CreateByStaff(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if strings.TrimSpace(req.Status) == "" {
		req.Status = string(domain.BookingConfirmed)
	}
	return s.create(ctx, req)
}

// CreateByCustomer always starts the booking as Pending.
func (s *Service) CreateByCustomer(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	req.Status = string(domain.BookingPending)
	return s.create(ctx, req)
}

func (s *Service) create(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	status, ok := domain.ParseBookingStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown booking status %q", ErrValidation, req.Status)
	}
	if strings.TrimSpace(req.BookingType) == "" {
		return nil, fmt.Errorf("%w: bookingType is required", ErrValidation)
	}
	if req.RequestedDateTime == nil {
		return nil, fmt.Errorf("%w: requestedDateTime is required", ErrValidation)
	}
	if err := checkDateRange(req.RequestedDateTime.Time); err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, req.CustomerID, req.PetID); err != nil {
		return nil, err
	}

	b := &domain.Booking{
		CustomerID:  req.CustomerID,
		PetID:       req.PetID,
		BranchID:    req.BranchID,
		BookingType: strings.TrimSpace(req.BookingType),
		RequestedAt: req.RequestedDateTime.Time,
		Status:      status,
		DoctorID:    req.DoctorID,
		Notes:       req.Notes,
	}

	if b.DoctorID == nil && b.BranchID != nil {
		release := s.acquireLease(ctx, *b.BranchID)
		defer release()
		b.DoctorID = s.assignDoctor(ctx, *b.BranchID)
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	events.Emit(ctx, s.publisher, events.New(events.BookingCreated, branchOf(b), b.ID, b))
	return b, nil
}

// acquireLease never blocks creation: without the lease assignment is best-effort.
func (s *Service) acquireLease(ctx context.Context, branchID int64) func() {
	release, err := s.lease.Acquire(ctx, branchID)
	if err != nil {
		log.Warn().Err(err).Int64("branch_id", branchID).Msg("assignment lease unavailable, assigning without it")
		return func() {}
	}
	return release
}

// assignDoctor returns nil when no doctor could be chosen; the booking is still created.
func (s *Service) assignDoctor(ctx context.Context, branchID int64) *int64 {
	if s.selector == nil {
		return nil
	}

	doctorID, ok, err := s.selector.SelectDoctor(ctx, branchID)
	switch {
	case err != nil:
		log.Error().Err(err).Int64("branch_id", branchID).Msg("doctor lookup failed, booking left unassigned")
		return nil
	case !ok:
		log.Info().Int64("branch_id", branchID).Msg("no active doctor in branch, booking left unassigned")
		return nil
	}

	log.Debug().Int64("branch_id", branchID).Int64("doctor_id", doctorID).Msg("doctor assigned")
	return &doctorID
}

func (s *Service) checkOwner(ctx context.Context, customerID, petID int64) error {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: customer %d", ErrNotFound, customerID)
		}
		return err
	}

	pet, err := s.customers.GetPet(ctx, petID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: pet %d", ErrNotFound, petID)
		}
		return err
	}
	if pet.CustomerID != customerID {
		return fmt.Errorf("%w: pet %d does not belong to customer %d", ErrValidation, petID, customerID)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*DetailsResponse, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, id)
	}
	history, err := s.bookings.History(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DetailsResponse{Booking: b, History: history}, nil
}

// UpdateStatus overwrites the status and appends a StatusChanged row. A supplied reason
// takes the row's old_status; the previous status then moves to its notes.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (*domain.Booking, error) {
	b, err := s.bookings.Transition(ctx, id, func(b *domain.Booking) (*domain.BookingHistory, error) {
		if strings.TrimSpace(req.Status) == "" {
			return nil, fmt.Errorf("%w: status is required", ErrValidation)
		}
		next, ok := domain.ParseBookingStatus(req.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown booking status %q", ErrValidation, req.Status)
		}

		h := &domain.BookingHistory{
			Action:    domain.ActionStatusChanged,
			OldStatus: string(b.Status),
			NewStatus: next,
			CreatedAt: time.Now().UTC(),
		}
		if reason := strings.TrimSpace(req.Reason); reason != "" {
			h.OldStatus = reason
			h.Notes = "previous status: " + string(b.Status)
		}
		b.Status = next
		return h, nil
	})
	if err != nil {
		return nil, notFound(err, id)
	}

	events.Emit(ctx, s.publisher, events.New(events.BookingStatusChanged, branchOf(b), b.ID, b))
	return b, nil
}

// CheckIn confirms the booking whatever its current status.
func (s *Service) CheckIn(ctx context.Context, id, employeeID int64) (*domain.Booking, error) {
	b, err := s.bookings.Transition(ctx, id, func(b *domain.Booking) (*domain.BookingHistory, error) {
		h := &domain.BookingHistory{
			Action:    domain.ActionCheckIn,
			OldStatus: string(b.Status),
			NewStatus: domain.BookingConfirmed,
			Notes:     fmt.Sprintf("checked in by employee %d", employeeID),
			CreatedAt: time.Now().UTC(),
		}
		b.Status = domain.BookingConfirmed
		return h, nil
	})
	if err != nil {
		return nil, notFound(err, id)
	}

	events.Emit(ctx, s.publisher, events.New(events.BookingCheckedIn, branchOf(b), b.ID, b))
	return b, nil
}

// Update replaces every editable field. A status or date change is written to history.
func (s *Service) Update(ctx context.Context, id int64, req UpdateBookingRequest) error {
	if req.ID != id {
		return ErrIDMismatch
	}
	status, ok := domain.ParseBookingStatus(req.Status)
	if !ok {
		return fmt.Errorf("%w: unknown booking status %q", ErrValidation, req.Status)
	}
	if req.RequestedDateTime == nil {
		return fmt.Errorf("%w: requestedDateTime is required", ErrValidation)
	}
	if err := checkDateRange(req.RequestedDateTime.Time); err != nil {
		return err
	}
	if err := s.checkOwner(ctx, req.CustomerID, req.PetID); err != nil {
		return err
	}

	b, err := s.bookings.Transition(ctx, id, func(b *domain.Booking) (*domain.BookingHistory, error) {
		oldStatus, oldAt := b.Status, b.RequestedAt

		b.CustomerID = req.CustomerID
		b.PetID = req.PetID
		b.BranchID = req.BranchID
		b.BookingType = strings.TrimSpace(req.BookingType)
		b.RequestedAt = req.RequestedDateTime.Time
		b.Status = status
		b.DoctorID = req.DoctorID
		b.Notes = req.Notes

		if oldStatus == b.Status && oldAt.Equal(b.RequestedAt) {
			return nil, nil
		}
		newAt := b.RequestedAt
		return &domain.BookingHistory{
			Action:      domain.ActionUpdated,
			OldStatus:   string(oldStatus),
			NewStatus:   b.Status,
			OldDateTime: &oldAt,
			NewDateTime: &newAt,
			CreatedAt:   time.Now().UTC(),
		}, nil
	})
	if err != nil {
		return notFound(err, id)
	}

	events.Emit(ctx, s.publisher, events.New(events.BookingUpdated, branchOf(b), b.ID, b))
	return nil
}

func checkDateRange(t time.Time) error {
	if !domain.IsStorableBookingTime(t) {
		return fmt.Errorf("%w: requestedDateTime must be between %s and %s", ErrValidation,
			domain.MinBookingTime.Format(time.DateOnly), domain.MaxBookingTime.Format(time.DateOnly))
	}
	return nil
}

func notFound(err error, id int64) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: booking %d", ErrNotFound, id)
	case errors.Is(err, repository.ErrStaleWrite):
		return fmt.Errorf("%w: booking %d", ErrConflict, id)
	}
	return err
}

func branchOf(b *domain.Booking) int64 {
	if b.BranchID == nil {
		return 0
	}
	return *b.BranchID
}
