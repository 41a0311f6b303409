package database

import (
	"fmt"
	"strings"
)

// KeyKind identifies which record a key addresses.
type KeyKind uint8

// Set of record kinds kept in the ledger store.
const (
	KindCounter KeyKind = iota + 1
	KindScholarship
	KindMilestones
	KindBalance
	KindNonce
	KindRecord
)

// String implements the fmt.Stringer interface.
func (k KeyKind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindScholarship:
		return "scholarship"
	case KindMilestones:
		return "milestones"
	case KindBalance:
		return "balance"
	case KindNonce:
		return "nonce"
	case KindRecord:
		return "record"
	}
	return "unknown"
}

// Key addresses a single record in the ledger store. Only the constructors
// below produce valid keys.
type Key struct {
	kind    KeyKind
	id      uint64
	account AccountID
	path    string
}

// KeyCounter addresses the scholarship id counter.
func KeyCounter() Key {
	return Key{kind: KindCounter}
}

// KeyScholarship addresses the scholarship record for the id.
func KeyScholarship(id uint64) Key {
	return Key{kind: KindScholarship, id: id}
}

// KeyMilestones addresses the milestone list for the scholarship id.
func KeyMilestones(id uint64) Key {
	return Key{kind: KindMilestones, id: id}
}

// KeyBalance addresses the deposited balance for the scholarship id.
func KeyBalance(id uint64) Key {
	return Key{kind: KindBalance, id: id}
}

// KeyNonce addresses the last request nonce used by the account.
func KeyNonce(account AccountID) Key {
	return Key{kind: KindNonce, account: account}
}

// KeyRecord addresses a named record kept by a sibling ledger such as the
// token ledger or the progress accumulator. The parts are joined with a slash.
func KeyRecord(parts ...string) Key {
	return Key{kind: KindRecord, path: strings.Join(parts, "/")}
}

// Bytes returns the storage encoding of the key. Ids are zero padded so the
// keys sort in id order in ordered backends.
func (k Key) Bytes() []byte {
	switch k.kind {
	case KindCounter:
		return []byte(k.kind.String())
	case KindNonce:
		return []byte(fmt.Sprintf("%s/%s", k.kind, strings.ToLower(string(k.account))))
	case KindRecord:
		return []byte(fmt.Sprintf("%s/%s", k.kind, k.path))
	}
	return []byte(fmt.Sprintf("%s/%020d", k.kind, k.id))
}

// String implements the fmt.Stringer interface for logging.
func (k Key) String() string {
	switch k.kind {
	case KindCounter:
		return k.kind.String()
	case KindNonce:
		return fmt.Sprintf("%s(%s)", k.kind, k.account)
	case KindRecord:
		return fmt.Sprintf("%s(%s)", k.kind, k.path)
	}
	return fmt.Sprintf("%s(%d)", k.kind, k.id)
}
