package booking

import (
	"petclinic/internal/domain"
	"petclinic/internal/pkg/jsontime"
)

type CreateBookingRequest struct {
	CustomerID        int64              `json:"customerId" binding:"gt=0"`
	PetID             int64              `json:"petId" binding:"gt=0"`
	BranchID          *int64             `json:"branchId" binding:"omitempty,gt=0"`
	BookingType       string             `json:"bookingType" binding:"required"`
	RequestedDateTime *jsontime.DateTime `json:"requestedDateTime" binding:"required"`
	Status            string             `json:"status"`
	DoctorID          *int64             `json:"doctorId" binding:"omitempty,gt=0"`
	Notes             string             `json:"notes"`
}

type UpdateBookingRequest struct {
	ID                int64              `json:"id" binding:"gt=0"`
	CustomerID        int64              `json:"customerId" binding:"gt=0"`
	PetID             int64              `json:"petId" binding:"gt=0"`
	BranchID          *int64             `json:"branchId" binding:"omitempty,gt=0"`
	BookingType       string             `json:"bookingType" binding:"required"`
	RequestedDateTime *jsontime.DateTime `json:"requestedDateTime" binding:"required"`
	Status            string             `json:"status" binding:"required"`
	DoctorID          *int64             `json:"doctorId" binding:"omitempty,gt=0"`
	Notes             string             `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type CheckInRequest struct {
	EmployeeID int64 `json:"employeeId"`
}

type CreatedResponse struct {
	NewBookingID int64 `json:"newBookingId"`
}

type DetailsResponse struct {
	Booking *domain.Booking         `json:"booking"`
	History []domain.BookingHistory `json:"history"`
}
