// Package state is the core API for the scholarship escrow and implements
// all the business rules for creating, funding, releasing and cancelling
// scholarships.
package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/scholarstream/escrow/foundation/escrow/auth"
	"github.com/scholarstream/escrow/foundation/escrow/database"
)

// EventHandler defines a function that is called when events occur in the
// processing of escrow operations.
type EventHandler func(v string, args ...any)

// Policy holds the optional deposit checks. Both are off by default which
// accepts any deposit amount from the donor.
type Policy struct {
	RejectNonPositiveDeposits bool
	CapDepositsAtTotal        bool
}

// Config represents the configuration required to start the escrow.
type Config struct {
	Storage   database.Storage
	Oracle    auth.Oracle
	Policy    Policy
	Now       func() time.Time
	EvHandler EventHandler
}

// State manages the scholarship escrow records.
type State struct {
	mu        sync.Mutex
	db        *database.Database
	oracle    auth.Oracle
	policy    Policy
	now       func() time.Time
	evHandler EventHandler
}

// New constructs the escrow over the configured storage.
func New(cfg Config) (*State, error) {
	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	if cfg.Oracle == nil {
		return nil, errors.New("authorization oracle is required")
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	state := State{
		db:        database.New(cfg.Storage),
		oracle:    cfg.Oracle,
		policy:    cfg.Policy,
		now:       now,
		evHandler: ev,
	}

	return &state, nil
}

// Shutdown cleanly closes the underlying storage.
func (s *State) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: shutdown: closing storage")

	return s.db.Close()
}

// Truncate removes every record. The admin reset command uses it to start
// over.
func (s *State) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: truncate: removing all records")

	return s.db.Reset()
}

// ConsumeNonce validates the nonce is larger than the last nonce used by the
// account and records it. Signed requests carry a nonce so a captured request
// can't be replayed.
func (s *State) ConsumeNonce(account database.AccountID, nonce uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.db.Nonce(account)
	if err != nil {
		return err
	}

	if nonce <= last {
		return fmt.Errorf("invalid nonce, got %d, exp > %d: %w", nonce, last, ErrForbidden)
	}

	batch := database.NewBatch()
	if err := batch.PutNonce(account, nonce); err != nil {
		return err
	}

	return s.db.Commit(batch)
}

// QueryNonce returns the last nonce used by the account.
func (s *State) QueryNonce(account database.AccountID) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Nonce(account)
}
