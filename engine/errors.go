package engine

import (
	"github.com/pkg/errors"

	"github.com/dreamware/rcommunity/model"
)

// ErrNotFound is returned when an expected key is absent: a primary record
// for a given rid, a UserItemToReactionOnceKey for reaction_for, and so on.
var ErrNotFound = errors.New("engine: not found")

// ErrSerialization wraps codec failures: unsupported field types on encode,
// or malformed bytes on decode. Kept distinct from ErrNotFound so callers
// can tell an absent record from a corrupted one.
var ErrSerialization = errors.New("engine: serialization error")

// ErrStore wraps a failure reported by the underlying store.Transaction.
var ErrStore = errors.New("engine: store error")

// ErrConflictingProperty is model.ErrConflictingProperty re-exported so
// callers need only import the engine package to check errors.Is against
// it, even though the check actually happens at registry.Register time.
var ErrConflictingProperty = model.ErrConflictingProperty

// ErrNotImplemented is returned for queries that aren't meaningful for a
// reaction type's property set, e.g. reaction_for on a Multiple type.
var ErrNotImplemented = errors.New("engine: not implemented for this reaction type")
