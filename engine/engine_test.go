package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/rcommunity/model"
	"github.com/dreamware/rcommunity/store"
)

// -- test domain types -------------------------------------------------------

type testUser struct{ id string }

func (u testUser) TypeName() string { return "User" }
func (u testUser) ID() string       { return u.id }

type testPost struct{ id string }

func (p testPost) TypeName() string { return "Post" }
func (p testPost) ID() string       { return p.id }

// vote is Once + Numerical + Enumerable: upvote/downvote that supersedes
// itself per (user, item).
type vote struct {
	Direction string `json:"direction"`
	Weight    int    `json:"weight"`
}

func (v *vote) TypeName() string       { return "Vote" }
func (v *vote) Properties() Properties { return model.NewProperties(model.Once, model.Numerical, model.Enumerable) }
func (v *vote) ValueKey() string       { return v.Direction }
func (v *vote) NumericValue() float64  { return float64(v.Weight) }

func upvote() *vote   { return &vote{Direction: "up", Weight: 1} }
func downvote() *vote { return &vote{Direction: "down", Weight: -1} }

// tag is Unique + Multiple + Enumerable: idempotent per (user, item, value).
type tag struct {
	Label string `json:"label"`
}

func (t *tag) TypeName() string       { return "Tag" }
func (t *tag) Properties() Properties { return model.NewProperties(model.Multiple, model.Unique, model.Enumerable) }
func (t *tag) ValueKey() string       { return t.Label }

// comment is Multiple + WithData: unbounded, unindexed payload.
type comment struct {
	Text string `json:"text"`
}

func (c *comment) TypeName() string       { return "Comment" }
func (c *comment) Properties() Properties { return model.NewProperties(model.Multiple, model.WithData) }

// Properties is a local alias so the test file reads naturally against the
// model package without a verbose qualifier on every Properties() method.
type Properties = model.Properties

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	reg := model.NewTypeRegistry()
	require.NoError(t, reg.Register(func() model.Reaction { return new(vote) }))
	require.NoError(t, reg.Register(func() model.Reaction { return new(tag) }))
	require.NoError(t, reg.Register(func() model.Reaction { return new(comment) }))
	return New(store.NewMemoryStore(), reg, opts...)
}

func TestReactSwitchesLiveOnceRecord(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, WithItemIndex("Vote"))
	u1, p1 := testUser{"u1"}, testPost{"p1"}

	r1, err := e.React(ctx, u1, p1, upvote())
	require.NoError(t, err)

	_, reaction, err := e.ReactionFor(ctx, "Vote", u1, p1)
	require.NoError(t, err)
	assert.Equal(t, "up", reaction.(*vote).Direction)

	sum, err := e.SumReceived(ctx, "Vote", p1)
	require.NoError(t, err)
	assert.Equal(t, float64(1), sum)

	r2, err := e.React(ctx, u1, p1, downvote())
	require.NoError(t, err)

	_, reaction, err = e.ReactionFor(ctx, "Vote", u1, p1)
	require.NoError(t, err)
	assert.Equal(t, "down", reaction.(*vote).Direction)

	sum, err = e.SumReceived(ctx, "Vote", p1)
	require.NoError(t, err)
	assert.Equal(t, float64(-1), sum)

	_, _, _, err = e.ReactionByRID(ctx, "Vote", r1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, _, err = e.ReactionByRID(ctx, "Vote", r2)
	require.NoError(t, err)
}

func TestUniqueMultipleTagCountsDistinctUsers(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	p1 := testPost{"p1"}

	_, err := e.React(ctx, testUser{"u1"}, p1, &tag{Label: "news"})
	require.NoError(t, err)
	_, err = e.React(ctx, testUser{"u2"}, p1, &tag{Label: "news"})
	require.NoError(t, err)

	count, err := e.CountReceivedForValue(ctx, "Tag", p1, &tag{Label: "news"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, _, err = e.ReactionFor(ctx, "Tag", testUser{"u1"}, p1)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestTagValueKeyRejectsReservedSeparator(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	u1, p1 := testUser{"u1"}, testPost{"p1"}

	_, err := e.React(ctx, u1, p1, &tag{Label: "breaking_news"})
	assert.ErrorIs(t, err, ErrSerialization, "a value key containing '_' must be rejected, not silently embedded")
}

func TestCountReceivedForValueDoesNotMatchUnrelatedValueSharingAPrefix(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	u1, u2, p1 := testUser{"u1"}, testUser{"u2"}, testPost{"p1"}

	_, err := e.React(ctx, u1, p1, &tag{Label: "news"})
	require.NoError(t, err)
	_, err = e.React(ctx, u2, p1, &tag{Label: "newsworthy"})
	require.NoError(t, err)

	count, err := e.CountReceivedForValue(ctx, "Tag", p1, &tag{Label: "news"})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "a tag value must not match another value it is merely a prefix of")
}

func TestReactionsWithValueScopesToUserItemAndValue(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	u1, u2, p1 := testUser{"u1"}, testUser{"u2"}, testPost{"p1"}

	rid1, err := e.React(ctx, u1, p1, &tag{Label: "news"})
	require.NoError(t, err)
	_, err = e.React(ctx, u1, p1, &tag{Label: "sports"})
	require.NoError(t, err)
	_, err = e.React(ctx, u2, p1, &tag{Label: "news"})
	require.NoError(t, err)

	rids, err := e.ReactionsWithValue(ctx, "Tag", u1, p1, &tag{Label: "news"})
	require.NoError(t, err)
	assert.Equal(t, []string{rid1}, rids)
}

func TestDuplicateUniqueValueCollapsesToOneRecord(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	u1, p1 := testUser{"u1"}, testPost{"p1"}

	_, err := e.React(ctx, u1, p1, &tag{Label: "news"})
	require.NoError(t, err)
	_, err = e.React(ctx, u1, p1, &tag{Label: "news"})
	require.NoError(t, err)

	count, err := e.CountReceivedForValue(ctx, "Tag", p1, &tag{Label: "news"})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "same (user,item,value) tag must collapse to one UniqueKey entry")
}

func TestMultipleWithDataCommentsAllRemainLive(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	u1, p1 := testUser{"u1"}, testPost{"p1"}

	c1, err := e.React(ctx, u1, p1, &comment{Text: "hi"})
	require.NoError(t, err)
	c2, err := e.React(ctx, u1, p1, &comment{Text: "hello"})
	require.NoError(t, err)

	rids, err := e.ReactionsFor(ctx, "Comment", u1, p1, ListOptions{})
	require.NoError(t, err)
	require.Len(t, rids, 2)
	assert.Contains(t, rids, c1)
	assert.Contains(t, rids, c2)
}

func TestDereactRemovesPrimaryAndIndexRecords(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	u1, p1 := testUser{"u1"}, testPost{"p1"}

	_, err := e.React(ctx, u1, p1, upvote())
	require.NoError(t, err)
	r2, err := e.React(ctx, u1, p1, downvote())
	require.NoError(t, err)

	require.NoError(t, e.Dereact(ctx, "Vote", r2))

	_, _, err = e.ReactionFor(ctx, "Vote", u1, p1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, _, err = e.ReactionByRID(ctx, "Vote", r2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDereactUnknownRIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	err := e.Dereact(ctx, "Vote", "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReactUnregisteredTypeIsNotImplemented(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	_, err := e.React(ctx, testUser{"u1"}, testPost{"p1"}, &unregisteredReaction{})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

type unregisteredReaction struct{}

func (u *unregisteredReaction) TypeName() string       { return "Ghost" }
func (u *unregisteredReaction) Properties() Properties { return model.NewProperties(model.Once) }

func TestCountReceivedRequiresItemIndex(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t) // Vote registered without WithItemIndex
	_, err := e.CountReceived(ctx, "Vote", testPost{"p1"})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestCommentCountReceivedViaItemIndex(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, WithItemIndex("Comment"))
	u1, p1 := testUser{"u1"}, testPost{"p1"}

	_, err := e.React(ctx, u1, p1, &comment{Text: "hi"})
	require.NoError(t, err)
	_, err = e.React(ctx, testUser{"u2"}, p1, &comment{Text: "hello"})
	require.NoError(t, err)

	count, err := e.CountReceived(ctx, "Comment", p1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
