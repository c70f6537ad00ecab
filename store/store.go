package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key doesn't exist in the store.
//
// This error is used consistently across all store implementations to
// indicate that a requested key is not present. Callers should check for
// this specific error (via errors.Is) to distinguish a missing key from
// other store failures.
var ErrKeyNotFound = errors.New("store: key not found")

// KV is a single key/value pair as returned by Scan.
type KV struct {
	Key   []byte
	Value []byte
}

// Store is a handle from which transactions are obtained. Implementations
// must guarantee at least serializable isolation with respect to a single
// logical transaction token (see Transaction.GetForUpdate).
type Store interface {
	// Begin opens a new transaction. The caller must Commit or Rollback it;
	// leaving a transaction open holds its exclusivity slot indefinitely.
	Begin(ctx context.Context) (Transaction, error)
}

// Transaction exposes the operations the reaction engine composes into
// index-maintenance sequences. Every method reports failures through its
// error return; none panics.
type Transaction interface {
	// Get returns the current value for key, or ErrKeyNotFound if absent.
	// Non-blocking: it does not claim the transaction's exclusivity slot
	// unless the transaction already holds it from a prior GetForUpdate,
	// Put, or Delete.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// GetForUpdate is like Get but pins the transaction as the exclusive
	// writer against this store until Commit or Rollback.
	GetForUpdate(ctx context.Context, key []byte) ([]byte, error)

	// Put inserts or overwrites key with value. Claims the exclusivity slot.
	Put(ctx context.Context, key, value []byte) error

	// Delete removes key if present. Succeeds if key is already absent.
	// Claims the exclusivity slot.
	Delete(ctx context.Context, key []byte) error

	// Scan returns up to limit key/value pairs with keys in [start, end),
	// in ascending key order. A nil end means "to the end of the keyspace".
	// limit <= 0 means unlimited.
	Scan(ctx context.Context, start, end []byte, limit int) ([]KV, error)

	// ScanKeys is Scan without the values.
	ScanKeys(ctx context.Context, start, end []byte, limit int) ([][]byte, error)

	// Commit makes the transaction's writes visible and releases its
	// exclusivity slot.
	Commit(ctx context.Context) error

	// Rollback discards the transaction and releases its exclusivity slot.
	// For a write-through backend (MemoryStore) this does not undo writes
	// already applied — callers relying on rollback-as-undo must not issue
	// mutations until they intend to commit in the same scope (see
	// MemoryStore's doc comment).
	Rollback(ctx context.Context) error
}
