package database

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/scholarstream/escrow/foundation/escrow/milestone"
)

// ErrNotFound is returned by a Storage implementation when a key is absent.
var ErrNotFound = errors.New("record not found")

// Storage interface represents the behavior required to be implemented by any
// package providing support for persisting the ledger records.
type Storage interface {
	Get(key []byte) ([]byte, error)
	Write(batch *Batch) error
	Close() error
	Reset() error
}

// =============================================================================

// Put is a single staged record write.
type Put struct {
	Key   Key
	Value []byte
}

// Batch collects the record writes of one operation so the Storage can apply
// them all or none.
type Batch struct {
	puts []Put
}

// NewBatch constructs an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Len returns the number of staged writes.
func (b *Batch) Len() int {
	return len(b.puts)
}

// Puts returns the staged writes in the order they were staged.
func (b *Batch) Puts() []Put {
	cpy := make([]Put, len(b.puts))
	copy(cpy, b.puts)
	return cpy
}

// PutScholarship stages the scholarship record.
func (b *Batch) PutScholarship(s Scholarship) error {
	return b.put(KeyScholarship(s.ID), s)
}

// PutMilestones stages the milestone list for the scholarship id.
func (b *Batch) PutMilestones(id uint64, set milestone.Set) error {
	if set == nil {
		set = milestone.Set{}
	}
	return b.put(KeyMilestones(id), set)
}

// PutBalance stages the deposited balance for the scholarship id.
func (b *Batch) PutBalance(id uint64, balance *big.Int) error {
	return b.put(KeyBalance(id), cloneAmount(balance))
}

// PutNonce stages the last request nonce used by the account.
func (b *Batch) PutNonce(account AccountID, nonce uint64) error {
	return b.put(KeyNonce(account), nonce)
}

// PutRecord stages a named record. The value is stored as JSON.
func (b *Batch) PutRecord(key Key, value any) error {
	return b.put(key, value)
}

// putCounter stages the scholarship id counter. Only the Sequence writes it.
func (b *Batch) putCounter(n uint64) error {
	return b.put(KeyCounter(), n)
}

func (b *Batch) put(key Key, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	b.puts = append(b.puts, Put{Key: key, Value: data})
	return nil
}
