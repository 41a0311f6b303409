package state

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/scholarstream/escrow/foundation/escrow/milestone"
	"github.com/scholarstream/escrow/foundation/escrow/signature"
)

// CreateScholarship records a new scholarship for the student funded by the
// donor and returns its id. The milestones are stored exactly as given and
// the balance starts at 0.
func (s *State) CreateScholarship(ctx context.Context, donor database.AccountID, student database.AccountID, totalAmount *big.Int, tokenType string, milestones milestone.Set) (uint64, error) {
	if err := s.oracle.Authorize(ctx, donor); err != nil {
		return 0, fmt.Errorf("create: donor %s: %s: %w", donor, err, ErrUnauthorized)
	}

	donor, err := database.ToAccountID(string(donor))
	if err != nil {
		return 0, fmt.Errorf("create: donor: %s: %w", err, ErrUnauthorized)
	}

	student, err = database.ToAccountID(string(student))
	if err != nil {
		return 0, fmt.Errorf("create: student: %s: %w", err, ErrInvalidAccount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batch := database.NewBatch()

	id, err := s.db.Sequence().Next(batch)
	if err != nil {
		return 0, fmt.Errorf("create: next id: %w", err)
	}

	sch := database.Scholarship{
		ID:             id,
		Donor:          donor,
		Student:        student,
		TotalAmount:    amount(totalAmount),
		ReleasedAmount: big.NewInt(0),
		TokenType:      tokenType,
		IsActive:       true,
		CreatedAt:      uint64(s.now().Unix()),
	}

	if err := batch.PutScholarship(sch); err != nil {
		return 0, fmt.Errorf("create: %w", err)
	}

	if err := batch.PutMilestones(id, milestones.Clone()); err != nil {
		return 0, fmt.Errorf("create: %w", err)
	}

	if err := batch.PutBalance(id, big.NewInt(0)); err != nil {
		return 0, fmt.Errorf("create: %w", err)
	}

	if err := s.db.Commit(batch); err != nil {
		return 0, fmt.Errorf("create: commit: %w", err)
	}

	s.evHandler("escrow: create: id[%d] donor[%s] student[%s] total[%s] token[%s] milestones[%d] rewards[%s]", id, donor, student, sch.TotalAmount, tokenType, len(milestones), milestones.TotalReward())

	return id, nil
}

// DepositFunds adds the amount to the balance held for the scholarship. Only
// the recorded donor may deposit.
func (s *State) DepositFunds(ctx context.Context, donor database.AccountID, id uint64, amt *big.Int) error {
	if err := s.oracle.Authorize(ctx, donor); err != nil {
		return fmt.Errorf("deposit: donor %s: %s: %w", donor, err, ErrForbidden)
	}

	amt = amount(amt)
	if s.policy.RejectNonPositiveDeposits && amt.Sign() <= 0 {
		return fmt.Errorf("deposit: amount %s must be positive: %w", amt, ErrInvalidAmount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sch, err := s.scholarship(id)
	if err != nil {
		return fmt.Errorf("deposit: %w", err)
	}

	if !sameAccount(sch.Donor, donor) {
		return fmt.Errorf("deposit: %s is not the donor of scholarship %d: %w", donor, id, ErrForbidden)
	}

	balance, err := s.db.Balance(id)
	if err != nil {
		return fmt.Errorf("deposit: %w", err)
	}

	newBalance := new(big.Int).Add(balance, amt)

	if s.policy.CapDepositsAtTotal {
		funded := new(big.Int).Add(newBalance, sch.ReleasedAmount)
		if funded.Cmp(sch.TotalAmount) > 0 {
			return fmt.Errorf("deposit: funding %s would exceed total %s: %w", funded, sch.TotalAmount, ErrInvalidAmount)
		}
	}

	batch := database.NewBatch()
	if err := batch.PutBalance(id, newBalance); err != nil {
		return fmt.Errorf("deposit: %w", err)
	}

	if err := s.db.Commit(batch); err != nil {
		return fmt.Errorf("deposit: commit: %w", err)
	}

	s.evHandler("escrow: deposit: id[%d] amount[%s] balance[%s]", id, amt, newBalance)

	return nil
}

// CompleteMilestone marks the milestone complete and releases its reward from
// the deposited balance. The proof is accepted as is. The scholarship record,
// the milestones and the balance are written together or not at all.
func (s *State) CompleteMilestone(ctx context.Context, id uint64, milestoneID uint32, proof []byte) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sch, err := s.scholarship(id)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	if !sch.IsActive {
		return nil, fmt.Errorf("complete: scholarship %d is not active: %w", id, ErrInvalidState)
	}

	set, err := s.db.Milestones(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("complete: milestones of scholarship %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("complete: %w", err)
	}

	set, m, err := set.Complete(milestoneID)
	switch {
	case errors.Is(err, milestone.ErrNotFound):
		return nil, fmt.Errorf("complete: %s: %w", err, ErrNotFound)
	case errors.Is(err, milestone.ErrAlreadyCompleted):
		return nil, fmt.Errorf("complete: %s: %w", err, ErrAlreadyCompleted)
	case err != nil:
		return nil, fmt.Errorf("complete: %w", err)
	}

	reward := m.Reward()

	balance, err := s.db.Balance(id)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	if balance.Cmp(reward) < 0 {
		return nil, fmt.Errorf("complete: balance %s below reward %s: %w", balance, reward, ErrInsufficientFunds)
	}

	sch.ReleasedAmount.Add(sch.ReleasedAmount, reward)
	newBalance := new(big.Int).Sub(balance, reward)

	batch := database.NewBatch()
	if err := batch.PutScholarship(sch); err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	if err := batch.PutMilestones(id, set); err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	if err := batch.PutBalance(id, newBalance); err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	if err := s.db.Commit(batch); err != nil {
		return nil, fmt.Errorf("complete: commit: %w", err)
	}

	s.evHandler("escrow: complete: id[%d] milestone[%d] reward[%s] released[%s] balance[%s] proof[%s]", id, milestoneID, reward, sch.ReleasedAmount, newBalance, signature.Hash(proof))

	return reward, nil
}

// CancelScholarship deactivates the scholarship. It is only allowed before
// anything has been released. The balance stays recorded as is.
func (s *State) CancelScholarship(ctx context.Context, donor database.AccountID, id uint64) error {
	if err := s.oracle.Authorize(ctx, donor); err != nil {
		return fmt.Errorf("cancel: donor %s: %s: %w", donor, err, ErrForbidden)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sch, err := s.scholarship(id)
	if err != nil {
		return fmt.Errorf("cancel: %w", err)
	}

	if !sameAccount(sch.Donor, donor) {
		return fmt.Errorf("cancel: %s is not the donor of scholarship %d: %w", donor, id, ErrForbidden)
	}

	if sch.ReleasedAmount.Sign() > 0 {
		return fmt.Errorf("cancel: scholarship %d has released %s: %w", id, sch.ReleasedAmount, ErrInvalidState)
	}

	sch.IsActive = false

	batch := database.NewBatch()
	if err := batch.PutScholarship(sch); err != nil {
		return fmt.Errorf("cancel: %w", err)
	}

	if err := s.db.Commit(batch); err != nil {
		return fmt.Errorf("cancel: commit: %w", err)
	}

	s.evHandler("escrow: cancel: id[%d]", id)

	return nil
}

// =============================================================================

// scholarship reads the scholarship record, mapping a missing record to
// ErrNotFound. The caller must hold the lock.
func (s *State) scholarship(id uint64) (database.Scholarship, error) {
	sch, err := s.db.Scholarship(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.Scholarship{}, fmt.Errorf("scholarship %d: %w", id, ErrNotFound)
		}
		return database.Scholarship{}, err
	}

	return sch, nil
}

// sameAccount compares two accounts ignoring the hex case.
func sameAccount(a, b database.AccountID) bool {
	na, err := database.ToAccountID(string(a))
	if err != nil {
		return a == b
	}

	nb, err := database.ToAccountID(string(b))
	if err != nil {
		return false
	}

	return na == nb
}

// amount returns a copy of v, treating nil as 0.
func amount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}
