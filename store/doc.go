// Package store defines the abstract transactional key-value interfaces the
// reaction engine runs on, and provides an in-memory reference implementation
// for tests and single-process use.
//
// # Overview
//
// store is the single abstraction boundary between the reaction engine
// (package engine) and whatever durable backend actually holds the bytes.
// The engine never reaches past this boundary: every index it maintains is a
// sequence of get/get_for_update/put/delete/scan calls against a
// Transaction, and every commit is a single Transaction.Commit.
//
// # Architecture
//
//	┌───────────────────────────────┐
//	│            engine             │
//	│   (index maintenance, React)  │
//	└───────────────┬───────────────┘
//	                │ Store / Transaction
//	                ▼
//	┌───────────────────────────────┐
//	│      Store implementations    │
//	│  MemoryStore  │  (LSM, RPC,…) │
//	└───────────────────────────────┘
//
// # Isolation
//
// A Transaction is at least serializable with respect to a single logical
// transaction token. MemoryStore achieves this with a transaction-id mutex
// and condition variable: every operation first waits until the current
// holder is zero or equals its own transaction id. GetForUpdate and the
// mutating operations (Put, Delete) claim the holder slot until Commit or
// Rollback; a plain Get that did not already own the slot releases it
// immediately after reading. Keys are ordered lexicographically by their raw
// bytes, so Scan and ScanKeys can serve half-open ranges directly.
//
// # Error handling
//
// ErrKeyNotFound is the only sentinel this package defines; every other
// failure (a cancelled context, a backend I/O error) is returned
// unwrapped from the underlying operation. No operation panics.
package store
