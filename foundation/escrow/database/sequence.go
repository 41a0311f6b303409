package database

// Sequence generates scholarship ids. Ids start at 1 and are never reused
// until the ledger is reset.
// Callers must serialize calls to Next through the commit of the batch, the
// engine does this with its operation lock.
type Sequence struct {
	db *Database
}

// Current returns the last id handed out, 0 if none.
func (s *Sequence) Current() (uint64, error) {
	return s.db.Counter()
}

// Next reads the counter, stages the incremented value into the batch and
// returns it. Nothing is persisted until the batch is committed.
func (s *Sequence) Next(batch *Batch) (uint64, error) {
	current, err := s.db.Counter()
	if err != nil {
		return 0, err
	}

	next := current + 1
	if err := batch.putCounter(next); err != nil {
		return 0, err
	}

	return next, nil
}
