// Package milestone maintains the ordered set of milestones attached to a
// scholarship. Each milestone can be completed exactly once.
package milestone

import (
	"errors"
	"fmt"
	"math/big"
)

// Set of errors returned by the milestone set.
var (
	ErrNotFound         = errors.New("milestone not found")
	ErrAlreadyCompleted = errors.New("milestone already completed")
)

// Proof types used by the student dashboard. The engine treats the proof
// type as a free-form tag and never checks it against this list.
const (
	ProofExam       = "exam"
	ProofAttendance = "attendance"
	ProofProject    = "project"
	ProofVideo      = "video"
)

// Milestone is a named, one-time completable condition carrying a fixed
// reward amount.
type Milestone struct {
	ID               uint32   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	RequiredProgress uint32   `json:"required_progress"`
	RewardAmount     *big.Int `json:"reward_amount"`
	ProofType        string   `json:"proof_type"`
	IsCompleted      bool     `json:"is_completed"`
}

// Clone returns a copy that shares no memory with the original.
func (m Milestone) Clone() Milestone {
	if m.RewardAmount != nil {
		m.RewardAmount = new(big.Int).Set(m.RewardAmount)
	}
	return m
}

// Reward returns a copy of the reward amount, treating a missing reward as 0.
func (m Milestone) Reward() *big.Int {
	if m.RewardAmount == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(m.RewardAmount)
}

// =============================================================================

// Set is the ordered sequence of milestones owned by one scholarship. Ids are
// supplied by the caller and are not checked for uniqueness. Lookups stop at
// the first match, so with duplicate ids only the first one is reachable.
type Set []Milestone

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}

	cpy := make(Set, len(s))
	for i, m := range s {
		cpy[i] = m.Clone()
	}
	return cpy
}

// Find returns the index of the first milestone with the specified id.
func (s Set) Find(id uint32) (int, bool) {
	for i, m := range s {
		if m.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Complete returns a copy of the set with the first milestone matching the
// id marked as completed, along with that milestone. The receiver is never
// modified so a failed release leaves the stored set untouched.
func (s Set) Complete(id uint32) (Set, Milestone, error) {
	idx, found := s.Find(id)
	if !found {
		return nil, Milestone{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	if s[idx].IsCompleted {
		return nil, Milestone{}, fmt.Errorf("%w: id %d", ErrAlreadyCompleted, id)
	}

	updated := s.Clone()
	updated[idx].IsCompleted = true

	return updated, updated[idx].Clone(), nil
}

// Completed returns the number of completed milestones.
func (s Set) Completed() int {
	var n int
	for _, m := range s {
		if m.IsCompleted {
			n++
		}
	}
	return n
}

// Percentage returns floor(100 * completed / count). An empty set is 0.
func (s Set) Percentage() uint32 {
	if len(s) == 0 {
		return 0
	}

	return uint32(s.Completed() * 100 / len(s))
}

// TotalReward returns the sum of every milestone reward in the set.
func (s Set) TotalReward() *big.Int {
	total := big.NewInt(0)
	for _, m := range s {
		if m.RewardAmount != nil {
			total.Add(total, m.RewardAmount)
		}
	}
	return total
}
