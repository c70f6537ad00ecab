package store

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/google/btree"
)

// entry is the unit stored in the ordered tree. Ordering is by Key's raw
// bytes, which is what lets Scan serve half-open ranges directly instead of
// sorting on every call.
type entry struct {
	key   []byte
	value []byte
}

func lessEntry(a, b entry) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// MemoryStore is a single-process, ordered, write-through key-value store.
//
// Isolation:
//   - A transaction-id mutex and condition variable mediate exclusivity.
//     Every operation first waits until the current holder is zero (free)
//     or equals its own transaction id.
//   - GetForUpdate, Put, and Delete claim the holder slot and keep it until
//     Commit or Rollback.
//   - A plain Get or Scan that did not already own the slot releases it
//     immediately after reading, so a reader never keeps the slot past its
//     own read. A reader still waits while another transaction holds the
//     slot.
//
// Write-through: Put and Delete mutate the shared tree immediately, under
// the holder's exclusivity — there is no per-transaction write buffer.
// Rollback therefore does not undo writes already issued; it only releases
// the slot. Callers that need atomicity (the reaction engine does) must
// compute the full set of mutations before opening the transaction and
// issue them only once they intend to Commit in the same scope — see
// engine.Engine.React for the pattern this backend assumes.
//
// Not suitable for:
//   - Multiple processes (no persistence, no WAL)
//   - Workloads where Rollback must discard partial writes
type MemoryStore struct {
	mu     sync.Mutex
	cond   *sync.Cond
	holder uint64 // 0 == free; otherwise the owning transaction's id
	nextID uint64
	tree   *btree.BTreeG[entry]
}

// NewMemoryStore returns an empty, immediately usable store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		tree: btree.NewG(32, lessEntry),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Begin opens a new transaction. Transactions are numbered monotonically
// starting at 1; id 0 is reserved to mean "no holder".
func (s *MemoryStore) Begin(ctx context.Context) (Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.mu.Unlock()
	return &memTx{store: s, id: id}, nil
}

// memTx is MemoryStore's Transaction. It carries no local write buffer —
// see MemoryStore's doc comment on write-through semantics.
type memTx struct {
	store   *MemoryStore
	id      uint64
	claimed bool
	done    bool
}

func (tx *memTx) checkOpen() error {
	if tx.done {
		return fmt.Errorf("store: transaction %d already committed or rolled back", tx.id)
	}
	return nil
}

// acquire waits for the holder slot to be free or already ours, locks
// s.mu, and returns with the lock held. If claim is true the transaction
// takes (or keeps) ownership of the slot.
func (tx *memTx) acquire(claim bool) *MemoryStore {
	s := tx.store
	s.mu.Lock()
	for s.holder != 0 && s.holder != tx.id {
		s.cond.Wait()
	}
	s.holder = tx.id
	if claim {
		tx.claimed = true
	}
	return s
}

// release gives up the holder slot if this transaction never claimed it
// for exclusive use (i.e. it only ever performed reads).
func (tx *memTx) release(s *MemoryStore) {
	if !tx.claimed {
		s.holder = 0
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

func (tx *memTx) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := tx.acquire(false)
	e, ok := s.tree.Get(entry{key: key})
	tx.release(s)
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (tx *memTx) GetForUpdate(ctx context.Context, key []byte) ([]byte, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := tx.acquire(true)
	e, ok := s.tree.Get(entry{key: key})
	s.mu.Unlock()
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

func (tx *memTx) Put(ctx context.Context, key, value []byte) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	storedKey := append([]byte(nil), key...)
	storedValue := append([]byte(nil), value...)
	s := tx.acquire(true)
	s.tree.ReplaceOrInsert(entry{key: storedKey, value: storedValue})
	s.mu.Unlock()
	return nil
}

func (tx *memTx) Delete(ctx context.Context, key []byte) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s := tx.acquire(true)
	s.tree.Delete(entry{key: key})
	s.mu.Unlock()
	return nil
}

func (tx *memTx) Scan(ctx context.Context, start, end []byte, limit int) ([]KV, error) {
	if err := tx.checkOpen(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := tx.acquire(false)
	var out []KV
	iter := func(e entry) bool {
		if end != nil && bytes.Compare(e.key, end) >= 0 {
			return false
		}
		k := append([]byte(nil), e.key...)
		v := append([]byte(nil), e.value...)
		out = append(out, KV{Key: k, Value: v})
		return limit <= 0 || len(out) < limit
	}
	s.tree.AscendGreaterOrEqual(entry{key: start}, iter)
	tx.release(s)
	return out, nil
}

func (tx *memTx) ScanKeys(ctx context.Context, start, end []byte, limit int) ([][]byte, error) {
	kvs, err := tx.Scan(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}
	keys := make([][]byte, len(kvs))
	for i, kv := range kvs {
		keys[i] = kv.Key
	}
	return keys, nil
}

func (tx *memTx) Commit(ctx context.Context) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}
	s := tx.store
	s.mu.Lock()
	if s.holder == tx.id {
		s.holder = 0
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	tx.done = true
	return nil
}

func (tx *memTx) Rollback(ctx context.Context) error {
	if tx.done {
		return nil
	}
	s := tx.store
	s.mu.Lock()
	if s.holder == tx.id {
		s.holder = 0
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	tx.done = true
	return nil
}
