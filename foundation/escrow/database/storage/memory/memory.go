// Package memory implements the ability to read and write ledger records to
// memory using a map.
package memory

import (
	"sync"

	"github.com/scholarstream/escrow/foundation/escrow/database"
)

// Memory represents the storage implementation for reading and storing
// records in memory. This implements the database.Storage interface.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{
		records: make(map[string][]byte),
	}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Get returns a copy of the record stored under the key.
func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.records[string(key)]
	if !exists {
		return nil, database.ErrNotFound
	}

	return clone(value), nil
}

// Write applies every staged write of the batch while holding the lock, so
// readers see all of them or none.
func (m *Memory) Write(batch *database.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, put := range batch.Puts() {
		m.records[string(put.Key.Bytes())] = clone(put.Value)
	}

	return nil
}

// Reset will clear out every record.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[string][]byte)
	return nil
}

func clone(b []byte) []byte {
	cpy := make([]byte, len(b))
	copy(cpy, b)
	return cpy
}
