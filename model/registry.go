package model

import (
	"sync"

	"github.com/pkg/errors"
)

// Factory produces a fresh, zero-value instance of a registered reaction
// type. It must return a pointer so the engine can decode a stored value
// directly into the returned instance (e.g. func() model.Reaction { return
// new(Vote) }).
type Factory func() Reaction

// typeEntry is the registry's precomputed record for one reaction type:
// everything the engine needs to decide which indexes to maintain, computed
// once at Register time rather than re-derived on every React/Dereact call.
type typeEntry struct {
	properties Properties
	factory    Factory
}

// TypeRegistry holds the set of reaction types an engine.Engine knows how
// to index and decode. Register each reaction type once at startup;
// concurrent Properties/New calls from engine operations are safe.
type TypeRegistry struct {
	mu      sync.RWMutex
	entries map[string]*typeEntry
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{entries: make(map[string]*typeEntry)}
}

// Register adds a reaction type, identified by a representative instance
// from factory. It validates the type's property combination and that the
// type implements the capability interfaces its properties require
// (ValueKeyer for Unique/Enumerable, NumericValuer for Numerical) —
// surfacing ErrConflictingProperty at registration time rather than lazily
// on the first React call.
func (r *TypeRegistry) Register(factory Factory) error {
	sample := factory()
	name := sample.TypeName()
	props := sample.Properties()

	if err := props.Validate(); err != nil {
		return errors.Wrapf(err, "reaction type %q", name)
	}
	if (props.Has(Unique) || props.Has(Enumerable)) {
		if _, ok := sample.(ValueKeyer); !ok {
			return errors.Wrapf(ErrConflictingProperty,
				"reaction type %q advertises Unique or Enumerable but does not implement ValueKeyer", name)
		}
	}
	if props.Has(Numerical) {
		if _, ok := sample.(NumericValuer); !ok {
			return errors.Wrapf(ErrConflictingProperty,
				"reaction type %q advertises Numerical but does not implement NumericValuer", name)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return errors.Errorf("model: reaction type %q already registered", name)
	}
	r.entries[name] = &typeEntry{properties: props, factory: factory}
	return nil
}

// Properties returns the registered type's property set.
func (r *TypeRegistry) Properties(typeName string) (Properties, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[typeName]
	if !ok {
		return 0, false
	}
	return e.properties, true
}

// New returns a fresh, decodable instance of typeName, ready to be passed
// to codec.UnmarshalValue.
func (r *TypeRegistry) New(typeName string) (Reaction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[typeName]
	if !ok {
		return nil, false
	}
	return e.factory(), true
}
