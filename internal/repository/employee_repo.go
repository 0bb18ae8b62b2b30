package repository

import (
	"context"

	"gorm.io/gorm"

	"petclinic/internal/domain"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// DoctorLoad is an active doctor with the number of Pending/Confirmed bookings assigned to them.
type DoctorLoad struct {
	EmployeeID int64 `gorm:"column:employee_id"`
	Load       int64 `gorm:"column:active_load"`
}

// DoctorLoads lists every active doctor of the branch with their current load, by id.
func (r *EmployeeRepository) DoctorLoads(ctx context.Context, branchID int64) ([]DoctorLoad, error) {
	var rows []DoctorLoad
	err := r.db.WithContext(ctx).
		Table("employees AS e").
		Select("e.id AS employee_id, COUNT(b.id) AS active_load").
		Joins("LEFT JOIN bookings b ON b.doctor_id = e.id AND b.status IN ?", domain.ActiveBookingStatuses()).
		Where("e.branch_id = ? AND e.role = ? AND e.active = ?", branchID, domain.RoleDoctor, true).
		Group("e.id").
		Order("e.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	var e domain.Employee
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// FirstAtBranch returns the lowest-id employee of the branch.
func (r *EmployeeRepository) FirstAtBranch(ctx context.Context, branchID int64) (*domain.Employee, error) {
	var e domain.Employee
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("id ASC").
		First(&e).Error
	if err != nil {
		return nil, translate(err)
	}
	return &e, nil
}
