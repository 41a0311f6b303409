package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/milestone"
)

// QueryScholarship returns a copy of the scholarship record.
func (s *State) QueryScholarship(id uint64) (database.Scholarship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scholarship(id)
}

// QueryMilestones returns a copy of the milestones of the scholarship.
func (s *State) QueryMilestones(id uint64) (milestone.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.db.Milestones(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("milestones of scholarship %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	return set, nil
}

// QueryBalance returns the deposited balance of the scholarship. An unknown
// scholarship has a balance of 0.
func (s *State) QueryBalance(id uint64) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Balance(id)
}

// QueryCompletionPercentage returns the share of completed milestones as a
// whole percentage rounded down. A scholarship without milestones, or an
// unknown one, is at 0.
func (s *State) QueryCompletionPercentage(id uint64) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.db.Milestones(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return set.Percentage(), nil
}

// QueryStudentScholarships returns the scholarships for the student in
// ascending id order.
func (s *State) QueryStudentScholarships(student database.AccountID) ([]database.Scholarship, error) {
	return s.scan(func(sch database.Scholarship) bool {
		return sameAccount(sch.Student, student)
	})
}

// QueryDonorScholarships returns the scholarships funded by the donor in
// ascending id order.
func (s *State) QueryDonorScholarships(donor database.AccountID) ([]database.Scholarship, error) {
	return s.scan(func(sch database.Scholarship) bool {
		return sameAccount(sch.Donor, donor)
	})
}

// QueryAllScholarships returns every scholarship in ascending id order.
func (s *State) QueryAllScholarships() ([]database.Scholarship, error) {
	return s.scan(func(database.Scholarship) bool {
		return true
	})
}

// QueryScholarshipCount returns the number of ids handed out so far.
func (s *State) QueryScholarshipCount() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Sequence().Current()
}

// =============================================================================

// scan walks every id from 1 to the counter and keeps the records accepted
// by the filter. Ids with no record are skipped.
func (s *State) scan(filter func(database.Scholarship) bool) ([]database.Scholarship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.db.Counter()
	if err != nil {
		return nil, err
	}

	out := []database.Scholarship{}
	for id := uint64(1); id <= count; id++ {
		sch, err := s.db.Scholarship(id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				continue
			}
			return nil, err
		}

		if filter(sch) {
			out = append(out, sch)
		}
	}

	return out, nil
}
