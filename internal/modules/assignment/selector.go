package assignment

import (
	"context"

	"petclinic/internal/repository"
)

type LoadSource interface {
	DoctorLoads(ctx context.Context, branchID int64) ([]repository.DoctorLoad, error)
}

// Selector picks the least-loaded active doctor of a branch.
type Selector struct {
	loads LoadSource
}

func NewSelector(loads LoadSource) *Selector {
	return &Selector{loads: loads}
}

// SelectDoctor returns ok=false when the branch has no active doctor.
// It only reads; two concurrent callers may get the same doctor unless a lease serialises them.
func (s *Selector) SelectDoctor(ctx context.Context, branchID int64) (doctorID int64, ok bool, err error) {
	loads, err := s.loads.DoctorLoads(ctx, branchID)
	if err != nil {
		return 0, false, err
	}
	doctorID, ok = PickLeastLoaded(loads)
	return doctorID, ok, nil
}

// PickLeastLoaded returns the candidate with the smallest load, lowest id on ties.
func PickLeastLoaded(loads []repository.DoctorLoad) (int64, bool) {
	if len(loads) == 0 {
		return 0, false
	}

	best := loads[0]
	for _, l := range loads[1:] {
		if l.Load < best.Load || (l.Load == best.Load && l.EmployeeID < best.EmployeeID) {
			best = l
		}
	}
	return best.EmployeeID, true
}
