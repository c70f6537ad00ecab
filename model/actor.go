package model

// Actor is the common shape of anything the engine treats as a user or an
// item: a stable textual ID plus a type name. The engine never asks
// "is X a user?" — it only asks whether a value is being used in the user
// position or the item position of a given React call, which is exactly why
// a single interface serves both roles: a user and item may be the same
// underlying domain type, or even the same concrete value (e.g. a Tag that
// can itself be reacted to).
//
// Actor values are borrowed for the duration of a single engine call; the
// engine never mutates or outlives them.
type Actor interface {
	// TypeName identifies the concrete domain type, e.g. "User" or "Post".
	// Embedded in every index key that references this actor.
	TypeName() string
	// ID is this actor's stable identifier. Must not contain '_' or ':'
	// (see codec.ValidateID) — these are the key grammar's structural
	// separators.
	ID() string
}

// SimpleActor is a minimal Actor implementation. The engine returns values
// of this type from queries that reconstruct a user or item from stored
// (type, id) pairs — it has no way to recover whatever concrete domain type
// the caller originally passed to React, nor any need to: the engine treats
// every Actor as immutable and reference-only.
type SimpleActor struct {
	Type    string
	IDValue string
}

// NewSimpleActor returns a SimpleActor for the given type name and id.
func NewSimpleActor(typeName, id string) SimpleActor {
	return SimpleActor{Type: typeName, IDValue: id}
}

func (a SimpleActor) TypeName() string { return a.Type }
func (a SimpleActor) ID() string       { return a.IDValue }
