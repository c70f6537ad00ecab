package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vote is a minimal Once+Numerical+Enumerable reaction used to exercise the
// registry without depending on the concrete types a real caller would
// define.
type vote struct {
	Value int `json:"value"`
}

func (v *vote) TypeName() string      { return "Vote" }
func (v *vote) Properties() Properties { return NewProperties(Once, Numerical, Enumerable) }
func (v *vote) ValueKey() string       { return "vote" }
func (v *vote) NumericValue() float64  { return float64(v.Value) }

// comment is a Multiple+WithData reaction with no value-bearing capability.
type comment struct {
	Text string `json:"text"`
}

func (c *comment) TypeName() string      { return "Comment" }
func (c *comment) Properties() Properties { return NewProperties(Multiple, WithData) }

// brokenUnique advertises Unique but never implements ValueKeyer.
type brokenUnique struct{}

func (b *brokenUnique) TypeName() string      { return "Broken" }
func (b *brokenUnique) Properties() Properties { return NewProperties(Once, Unique) }

// brokenProperties advertises an invalid Once+Multiple combination.
type brokenProperties struct{}

func (b *brokenProperties) TypeName() string      { return "BrokenProperties" }
func (b *brokenProperties) Properties() Properties { return NewProperties(Once, Multiple) }

func TestTypeRegistryRegisterAndLookup(t *testing.T) {
	r := NewTypeRegistry()
	require.NoError(t, r.Register(func() Reaction { return new(vote) }))
	require.NoError(t, r.Register(func() Reaction { return new(comment) }))

	props, ok := r.Properties("Vote")
	require.True(t, ok)
	assert.True(t, props.Has(Numerical))
	assert.True(t, props.Has(Enumerable))

	_, ok = r.Properties("Unknown")
	assert.False(t, ok)
}

func TestTypeRegistryNewReturnsDecodableInstance(t *testing.T) {
	r := NewTypeRegistry()
	require.NoError(t, r.Register(func() Reaction { return new(vote) }))

	inst, ok := r.New("Vote")
	require.True(t, ok)
	v, ok := inst.(*vote)
	require.True(t, ok)
	assert.Equal(t, 0, v.Value)

	_, ok = r.New("Unknown")
	assert.False(t, ok)
}

func TestTypeRegistryRejectsDuplicateRegistration(t *testing.T) {
	r := NewTypeRegistry()
	require.NoError(t, r.Register(func() Reaction { return new(vote) }))
	err := r.Register(func() Reaction { return new(vote) })
	require.Error(t, err)
}

func TestTypeRegistryRejectsMissingValueKeyer(t *testing.T) {
	r := NewTypeRegistry()
	err := r.Register(func() Reaction { return new(brokenUnique) })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflictingProperty)
}

func TestTypeRegistryRejectsInvalidProperties(t *testing.T) {
	r := NewTypeRegistry()
	err := r.Register(func() Reaction { return new(brokenProperties) })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflictingProperty)
}
