package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCompleted BookingStatus = "Completed"
	BookingCancelled BookingStatus = "Cancelled"
)

var bookingStatuses = []BookingStatus{
	BookingPending,
	BookingConfirmed,
	BookingCompleted,
	BookingCancelled,
}

// ParseBookingStatus matches s against the closed set of booking statuses,
// ignoring case and surrounding whitespace.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range bookingStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// ActiveBookingStatuses are the statuses that count towards a doctor's load.
func ActiveBookingStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingConfirmed}
}

// Storage range of the booking date-time column (SQL datetime bounds).
var (
	MinBookingTime = time.Date(1753, time.January, 1, 0, 0, 0, 0, time.UTC)
	MaxBookingTime = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

func IsStorableBookingTime(t time.Time) bool {
	return !t.Before(MinBookingTime) && !t.After(MaxBookingTime)
}

type Booking struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	CustomerID  int64         `json:"customerId" gorm:"not null;index"`
	PetID       int64         `json:"petId" gorm:"not null;index"`
	BranchID    *int64        `json:"branchId,omitempty" gorm:"index"`
	BookingType string        `json:"bookingType" gorm:"size:100;not null"`
	RequestedAt time.Time     `json:"requestedDateTime" gorm:"not null"`
	Status      BookingStatus `json:"status" gorm:"size:20;not null;index"`
	DoctorID    *int64        `json:"doctorId,omitempty" gorm:"index"`
	Notes       string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (Booking) TableName() string { return "bookings" }

type BookingAction string

const (
	ActionStatusChanged BookingAction = "StatusChanged"
	ActionCheckIn       BookingAction = "CheckIn"
	ActionUpdated       BookingAction = "Updated"
)

// BookingHistory is one append-only audit row per booking transition.
type BookingHistory struct {
	ID          int64         `json:"id" gorm:"primaryKey"`
	BookingID   int64         `json:"bookingId" gorm:"not null;index"`
	Action      BookingAction `json:"action" gorm:"size:30;not null"`
	// OldStatus is the previous status, or the caller's reason on a StatusChanged row that carried one.
	OldStatus   string        `json:"oldStatus,omitempty" gorm:"size:255"`
	NewStatus   BookingStatus `json:"newStatus,omitempty" gorm:"size:20"`
	OldDateTime *time.Time    `json:"oldDateTime,omitempty"`
	NewDateTime *time.Time    `json:"newDateTime,omitempty"`
	Notes       string        `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time     `json:"createdAt"`
}

func (BookingHistory) TableName() string { return "booking_history" }
