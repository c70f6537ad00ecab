package model

import "github.com/pkg/errors"

// Property is a single marker capability a reaction type can advertise.
// Reaction types compose properties to determine which index families the
// engine maintains for them (see Properties and engine.Engine.React).
type Property uint8

const (
	// Once: at most one live reaction record of this type per (user,item).
	// A fresh React implicitly dereacts any existing one for the pair.
	Once Property = 1 << iota
	// Multiple: any number of records per (user,item). Mutually exclusive
	// with Once.
	Multiple
	// Unique: the reaction value is identity-bearing — two reactions by the
	// same user on the same item with the same value collapse to one.
	Unique
	// Enumerable: the reaction value ranges over a small, iterable set; the
	// engine maintains a per-value index.
	Enumerable
	// Numerical: the reaction value maps to an addable scalar; the engine
	// supports sum/count/mean queries.
	Numerical
	// WithData: the reaction carries additional payload, stored but not
	// separately indexed.
	WithData
)

// ErrConflictingProperty is returned when a reaction type advertises an
// unsatisfiable combination of properties.
var ErrConflictingProperty = errors.New("model: conflicting reaction properties")

// Properties is the set of markers a single reaction type advertises.
type Properties uint8

// NewProperties composes a Properties set from individual flags.
func NewProperties(flags ...Property) Properties {
	var p Properties
	for _, f := range flags {
		p |= Properties(f)
	}
	return p
}

// Has reports whether flag is set.
func (p Properties) Has(flag Property) bool {
	return Property(p)&flag != 0
}

// Validate checks the marker combination for conflicts that the type system
// would rule out at compile time in a language with trait specialization
// (rcommunity_core's markers/mod.rs). Once and Multiple are mutually
// exclusive: a type must pick exactly one user-item indexing discipline.
func (p Properties) Validate() error {
	if p.Has(Once) && p.Has(Multiple) {
		return errors.Wrap(ErrConflictingProperty, "Once and Multiple are mutually exclusive")
	}
	if !p.Has(Once) && !p.Has(Multiple) {
		return errors.Wrap(ErrConflictingProperty, "exactly one of Once or Multiple must be set")
	}
	return nil
}

// String renders the set as its flag names, for diagnostics.
func (p Properties) String() string {
	names := []struct {
		flag Property
		name string
	}{
		{Once, "Once"},
		{Multiple, "Multiple"},
		{Unique, "Unique"},
		{Enumerable, "Enumerable"},
		{Numerical, "Numerical"},
		{WithData, "WithData"},
	}
	out := ""
	for _, n := range names {
		if p.Has(n.flag) {
			if out != "" {
				out += "+"
			}
			out += n.name
		}
	}
	if out == "" {
		return "(none)"
	}
	return out
}
