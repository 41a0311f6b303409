// Package database handles the ledger store for the scholarship escrow. It
// maps structured keys to versioned records and hides which storage backend
// holds them.
package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/scholarstream/escrow/foundation/escrow/milestone"
)

// Database manages the scholarship, milestone and balance records.
type Database struct {
	storage Storage
	seq     *Sequence
}

// New constructs a database over the specified storage.
func New(storage Storage) *Database {
	db := Database{
		storage: storage,
	}
	db.seq = &Sequence{db: &db}

	return &db
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Reset removes every record from the underlying storage.
func (db *Database) Reset() error {
	return db.storage.Reset()
}

// Sequence returns the scholarship id generator owned by this database.
func (db *Database) Sequence() *Sequence {
	return db.seq
}

// Commit applies every write staged in the batch. Either all of them are
// applied or none.
func (db *Database) Commit(batch *Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	return db.storage.Write(batch)
}

// =============================================================================

// Scholarship returns the scholarship record for the id.
func (db *Database) Scholarship(id uint64) (Scholarship, error) {
	var s Scholarship
	if err := db.get(KeyScholarship(id), &s); err != nil {
		return Scholarship{}, err
	}

	return s.Clone(), nil
}

// Milestones returns the milestone list for the scholarship id.
func (db *Database) Milestones(id uint64) (milestone.Set, error) {
	var set milestone.Set
	if err := db.get(KeyMilestones(id), &set); err != nil {
		return nil, err
	}

	if set == nil {
		set = milestone.Set{}
	}
	return set, nil
}

// Balance returns the deposited balance for the scholarship id. An absent
// balance is 0.
func (db *Database) Balance(id uint64) (*big.Int, error) {
	var bal big.Int
	if err := db.get(KeyBalance(id), &bal); err != nil {
		if errors.Is(err, ErrNotFound) {
			return big.NewInt(0), nil
		}
		return nil, err
	}

	return &bal, nil
}

// Counter returns the last scholarship id handed out. An absent counter is 0.
func (db *Database) Counter() (uint64, error) {
	return db.uint64(KeyCounter())
}

// Nonce returns the last request nonce used by the account. An absent nonce
// is 0.
func (db *Database) Nonce(account AccountID) (uint64, error) {
	return db.uint64(KeyNonce(account))
}

// Record decodes the named record into value. It returns ErrNotFound when the
// record was never written.
func (db *Database) Record(key Key, value any) error {
	return db.get(key, value)
}

// =============================================================================

func (db *Database) uint64(key Key) (uint64, error) {
	var n uint64
	if err := db.get(key, &n); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return n, nil
}

func (db *Database) get(key Key, value any) error {
	data, err := db.storage.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", key, err)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("%s: decoding: %w", key, err)
	}

	return nil
}
