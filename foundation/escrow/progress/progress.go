// Package progress accumulates the study progress reported for students.
package progress

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/scholarstream/escrow/foundation/escrow/database"
)

// Set of errors returned by the accumulator.
var (
	ErrNotFound = errors.New("student not found")
	ErrOverflow = errors.New("progress overflow")
)

// Student is the progress recorded for one student.
type Student struct {
	Address       database.AccountID `json:"address"`
	TotalProgress uint32             `json:"total_progress"`
	LastUpdate    uint64             `json:"last_update"`
}

// Config represents the configuration required to construct the accumulator.
type Config struct {
	Storage   database.Storage
	Now       func() time.Time
	EvHandler func(v string, args ...any)
}

// Accumulator records progress reports.
type Accumulator struct {
	mu        sync.RWMutex
	db        *database.Database
	now       func() time.Time
	evHandler func(v string, args ...any)
}

// New constructs an accumulator over the configured storage.
func New(cfg Config) (*Accumulator, error) {
	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	a := Accumulator{
		db:        database.New(cfg.Storage),
		now:       now,
		evHandler: ev,
	}

	return &a, nil
}

// Close closes the underlying storage.
func (a *Accumulator) Close() error {
	return a.db.Close()
}

// UpdateProgress adds the progress to the global total and to the student's
// total, and makes the student the last one to report.
func (a *Accumulator) UpdateProgress(student database.AccountID, progress uint32) error {
	student, err := database.ToAccountID(string(student))
	if err != nil {
		return fmt.Errorf("update: student: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var total uint32
	if err := a.record(keyTotal(), &total); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	info := Student{Address: student}
	if err := a.record(keyStudent(student), &info); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	var all []database.AccountID
	if err := a.record(keyAll(), &all); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if uint64(total)+uint64(progress) > math.MaxUint32 || uint64(info.TotalProgress)+uint64(progress) > math.MaxUint32 {
		return fmt.Errorf("update: adding %d: %w", progress, ErrOverflow)
	}

	total += progress
	info.TotalProgress += progress
	info.LastUpdate = uint64(a.now().Unix())

	batch := database.NewBatch()
	if err := batch.PutRecord(keyTotal(), total); err != nil {
		return err
	}
	if err := batch.PutRecord(keyLast(), student); err != nil {
		return err
	}
	if err := batch.PutRecord(keyStudent(student), info); err != nil {
		return err
	}

	if !contains(all, student) {
		all = append(all, student)
		if err := batch.PutRecord(keyAll(), all); err != nil {
			return err
		}
	}

	if err := a.db.Commit(batch); err != nil {
		return fmt.Errorf("update: commit: %w", err)
	}

	a.evHandler("progress: update: student[%s] progress[%d] student-total[%d] total[%d]", student, progress, info.TotalProgress, total)

	return nil
}

// TotalProgress returns the progress accumulated across every report.
func (a *Accumulator) TotalProgress() (uint32, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var total uint32
	if err := a.record(keyTotal(), &total); err != nil && !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	return total, nil
}

// LastStudent returns the student that reported last. It returns ErrNotFound
// when nothing has been reported.
func (a *Accumulator) LastStudent() (database.AccountID, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var student database.AccountID
	if err := a.record(keyLast(), &student); err != nil {
		return "", err
	}

	return student, nil
}

// StudentInfo returns the progress recorded for the student.
func (a *Accumulator) StudentInfo(student database.AccountID) (Student, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var info Student
	if err := a.record(keyStudent(student), &info); err != nil {
		return Student{}, err
	}

	return info, nil
}

// AllStudents returns every student that reported, in the order they first
// reported.
func (a *Accumulator) AllStudents() ([]database.AccountID, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	all := []database.AccountID{}
	if err := a.record(keyAll(), &all); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return all, nil
}

// =============================================================================

func (a *Accumulator) record(key database.Key, value any) error {
	if err := a.db.Record(key, value); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return err
	}

	return nil
}

func contains(all []database.AccountID, student database.AccountID) bool {
	for _, s := range all {
		if s == student {
			return true
		}
	}
	return false
}

func keyTotal() database.Key {
	return database.KeyRecord("progress", "total")
}

func keyLast() database.Key {
	return database.KeyRecord("progress", "last")
}

func keyAll() database.Key {
	return database.KeyRecord("progress", "students")
}

func keyStudent(student database.AccountID) database.Key {
	return database.KeyRecord("progress", "student", strings.ToLower(string(student)))
}
