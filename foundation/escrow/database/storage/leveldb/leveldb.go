// Package leveldb implements the ability to read and write ledger records to
// disk using LevelDB.
package leveldb

import (
	"errors"

	"github.com/scholarstream/escrow/foundation/escrow/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDB represents the storage implementation for reading and storing
// records in a LevelDB database on disk. This implements the
// database.Storage interface.
type LevelDB struct {
	db *leveldb.DB
}

// New creates or opens a LevelDB database at the specified path.
func New(dbPath string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDB{db: db}, nil
}

// Close closes the database files.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Get retrieves the record stored under the key.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}

	return value, nil
}

// Write applies the staged writes as a single LevelDB batch, which is atomic
// and synced to disk before returning.
func (l *LevelDB) Write(batch *database.Batch) error {
	var b leveldb.Batch
	for _, put := range batch.Puts() {
		b.Put(put.Key.Bytes(), put.Value)
	}

	return l.db.Write(&b, &opt.WriteOptions{Sync: true})
}

// Reset deletes every record in the database.
func (l *LevelDB) Reset() error {
	var b leveldb.Batch

	iter := l.db.NewIterator(nil, nil)
	for iter.Next() {
		b.Delete(iter.Key())
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return err
	}

	return l.db.Write(&b, &opt.WriteOptions{Sync: true})
}
