package model

// Reaction is a domain value carrying a type name, a set of property
// markers, and whatever payload the concrete type defines (comment text, a
// numeric rating, a tag string, …). Properties() is the Go stand-in for the
// source crate's derive-macro marker traits: the engine asks a value what it
// can do rather than inspecting its shape.
type Reaction interface {
	// TypeName identifies the concrete reaction type, e.g. "Vote", "Tag",
	// "Comment". Shared by every record of that type and embedded in every
	// index key the engine maintains for it.
	TypeName() string
	// Properties reports this type's marker capabilities. Every instance of
	// the same TypeName must report the same Properties — the engine
	// precomputes a type's index set once, at TypeRegistry.Register time,
	// from a representative instance.
	Properties() Properties
}

// ValueKeyer is implemented by Reaction values whose Properties include
// Unique or Enumerable: ValueKey renders the reaction's value as the
// canonical string embedded in the Unique-value and enumeration index keys.
// Two reactions with equal ValueKey results are the same value for Unique
// collapsing and Enumerable grouping purposes.
type ValueKeyer interface {
	ValueKey() string
}

// NumericValuer is implemented by Reaction values whose Properties include
// Numerical: NumericValue is the addable scalar the engine sums for
// sum_received/mean_received.
type NumericValuer interface {
	NumericValue() float64
}
