package engine

import (
	"bytes"
	"context"

	"github.com/pkg/errors"

	"github.com/dreamware/rcommunity/internal/codec"
	"github.com/dreamware/rcommunity/model"
	"github.com/dreamware/rcommunity/store"
)

// lastKeyField returns the bytes after the final field separator in key.
// Safe because no field we encode (type names, "Type:id" actor tags, rids)
// ever contains '_' itself — codec.ValidateID rejects it at the boundary.
func lastKeyField(key []byte) []byte {
	i := bytes.LastIndexByte(key, '_')
	if i < 0 {
		return key
	}
	return key[i+1:]
}

// ListOptions configures a range-listing query. Cursor, when non-empty, is
// base64 text (URL alphabet) of an encoded key of the index being listed;
// the scan starts at that key, inclusive. It is not a primary key, and no
// query returns a cursor for the next page. Limit <= 0 means unlimited.
type ListOptions struct {
	Descending bool
	Cursor     string
	Limit      int
}

// ReactionByRID decodes the primary record for rid. Returns ErrNotFound if
// no live record has that rid, or ErrSerialization if the stored value
// fails to decode.
func (e *Engine) ReactionByRID(ctx context.Context, typeName, rid string) (model.Actor, model.Actor, model.Reaction, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, nil, nil, errors.Wrap(ErrStore, err.Error())
	}
	defer tx.Rollback(ctx)

	raw, err := tx.Get(ctx, primaryKey(typeName, rid))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, nil, nil, errors.Wrapf(ErrNotFound, "reaction %s/%s", typeName, rid)
		}
		return nil, nil, nil, errors.Wrap(ErrStore, err.Error())
	}
	var primary primaryRecordValue
	if err := codec.UnmarshalValue(raw, &primary); err != nil {
		return nil, nil, nil, errors.Wrap(ErrSerialization, err.Error())
	}
	reaction, err := e.decodeReactionPayload(primary.Reaction)
	if err != nil {
		return nil, nil, nil, err
	}
	return primary.User.toActor(), primary.Item.toActor(), reaction, nil
}

// ReactionFor returns the rid and reaction for the live (user, item) pair.
// Only meaningful for Once-typed reactions; returns ErrNotImplemented
// otherwise.
func (e *Engine) ReactionFor(ctx context.Context, typeName string, user, item model.Actor) (string, model.Reaction, error) {
	props, ok := e.registry.Properties(typeName)
	if !ok {
		return "", nil, errors.Wrapf(ErrNotImplemented, "reaction type %q is not registered", typeName)
	}
	if !props.Has(model.Once) {
		return "", nil, errors.Wrapf(ErrNotImplemented, "reaction_for is not defined for non-Once type %q", typeName)
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return "", nil, errors.Wrap(ErrStore, err.Error())
	}
	defer tx.Rollback(ctx)

	raw, err := tx.Get(ctx, userItemOnceKey(typeName, user, item))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return "", nil, errors.Wrapf(ErrNotFound, "no live %s for %s/%s", typeName, user.ID(), item.ID())
		}
		return "", nil, errors.Wrap(ErrStore, err.Error())
	}
	var ov onceValue
	if err := codec.UnmarshalValue(raw, &ov); err != nil {
		return "", nil, errors.Wrap(ErrSerialization, err.Error())
	}

	_, _, reaction, err := e.ReactionByRID(ctx, typeName, ov.RID)
	if err != nil {
		return "", nil, err
	}
	return ov.RID, reaction, nil
}

// ReactionsFor streams the rids of every live reaction by user on item, in
// ascending key order (commit order, for lexicographically sortable rids).
// Not meaningful for Once types, which have at most one live rid reachable
// through ReactionFor instead.
func (e *Engine) ReactionsFor(ctx context.Context, typeName string, user, item model.Actor, opts ListOptions) ([]string, error) {
	props, ok := e.registry.Properties(typeName)
	if !ok {
		return nil, errors.Wrapf(ErrNotImplemented, "reaction type %q is not registered", typeName)
	}
	if props.Has(model.Once) {
		return nil, errors.Wrapf(ErrNotImplemented, "reactions_for is not defined for Once type %q", typeName)
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(ErrStore, err.Error())
	}
	defer tx.Rollback(ctx)

	prefix := userItemPrefix(typeName, user, item)
	start := prefix
	if opts.Cursor != "" {
		cursor, err := decodeCursor(opts.Cursor)
		if err != nil {
			return nil, errors.Wrap(ErrSerialization, err.Error())
		}
		start = cursor
	}
	end := codec.PrefixRangeEnd(prefix)

	keys, err := tx.ScanKeys(ctx, start, end, opts.Limit)
	if err != nil {
		return nil, errors.Wrap(ErrStore, err.Error())
	}
	rids := make([]string, len(keys))
	for i, k := range keys {
		rids[i] = string(lastKeyField(k))
	}
	if opts.Descending {
		reverseStrings(rids)
	}
	return rids, nil
}

// CountReceived counts every live reaction of typeName received by item.
// Requires the item-keyed mirror (engine.WithItemIndex(typeName)).
func (e *Engine) CountReceived(ctx context.Context, typeName string, item model.Actor) (int, error) {
	rids, err := e.ridsReceivedByItem(ctx, typeName, item)
	if err != nil {
		return 0, err
	}
	return len(rids), nil
}

// CountReceivedForValue counts live reactions of typeName on item whose
// value equals reaction's. Requires Enumerable.
func (e *Engine) CountReceivedForValue(ctx context.Context, typeName string, item model.Actor, reaction model.Reaction) (int, error) {
	props, ok := e.registry.Properties(typeName)
	if !ok {
		return 0, errors.Wrapf(ErrNotImplemented, "reaction type %q is not registered", typeName)
	}
	if !props.Has(model.Enumerable) {
		return 0, errors.Wrapf(ErrNotImplemented, "count_received_for_value requires Enumerable, type %q is not", typeName)
	}
	r, err := encodeReactionValue(reaction)
	if err != nil {
		return 0, errors.Wrap(ErrSerialization, err.Error())
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return 0, errors.Wrap(ErrStore, err.Error())
	}
	defer tx.Rollback(ctx)

	prefix := itemEnumPrefix(typeName, item, r)
	keys, err := tx.ScanKeys(ctx, prefix, codec.PrefixRangeEnd(prefix), 0)
	if err != nil {
		return 0, errors.Wrap(ErrStore, err.Error())
	}
	return len(keys), nil
}

// ReactionsWithValue returns the rids of every live reaction by user on item
// whose value equals reaction's, scanning the canonical per-(user,item)
// EnumKey prefix. Unlike ReactionsFor, which returns every rid regardless of
// value, this narrows to one value — useful for a Multiple+Enumerable type
// where the same user can apply the same value to the same item more than
// once (e.g. repeated identical tags before a Unique constraint collapses
// them). Requires Enumerable.
func (e *Engine) ReactionsWithValue(ctx context.Context, typeName string, user, item model.Actor, reaction model.Reaction) ([]string, error) {
	props, ok := e.registry.Properties(typeName)
	if !ok {
		return nil, errors.Wrapf(ErrNotImplemented, "reaction type %q is not registered", typeName)
	}
	if !props.Has(model.Enumerable) {
		return nil, errors.Wrapf(ErrNotImplemented, "reactions_with_value requires Enumerable, type %q is not", typeName)
	}
	r, err := encodeReactionValue(reaction)
	if err != nil {
		return nil, errors.Wrap(ErrSerialization, err.Error())
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(ErrStore, err.Error())
	}
	defer tx.Rollback(ctx)

	prefix := enumPrefix(typeName, user, item, r)
	keys, err := tx.ScanKeys(ctx, prefix, codec.PrefixRangeEnd(prefix), 0)
	if err != nil {
		return nil, errors.Wrap(ErrStore, err.Error())
	}
	rids := make([]string, len(keys))
	for i, k := range keys {
		rids[i] = string(lastKeyField(k))
	}
	return rids, nil
}

// SumReceived sums NumericValue() over every live reaction of typeName
// received by item. Requires Numerical and engine.WithItemIndex(typeName).
func (e *Engine) SumReceived(ctx context.Context, typeName string, item model.Actor) (float64, error) {
	props, ok := e.registry.Properties(typeName)
	if !ok {
		return 0, errors.Wrapf(ErrNotImplemented, "reaction type %q is not registered", typeName)
	}
	if !props.Has(model.Numerical) {
		return 0, errors.Wrapf(ErrNotImplemented, "sum_received requires Numerical, type %q is not", typeName)
	}

	rids, err := e.ridsReceivedByItem(ctx, typeName, item)
	if err != nil {
		return 0, err
	}

	values := make([]float64, 0, len(rids))
	for _, rid := range rids {
		_, _, reaction, err := e.ReactionByRID(ctx, typeName, rid)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Superseded between the index scan and this read; skip.
				continue
			}
			return 0, err
		}
		nv, ok := reaction.(model.NumericValuer)
		if !ok {
			return 0, errors.Wrapf(ErrSerialization, "reaction type %q advertises Numerical but decoded value has no NumericValue", typeName)
		}
		values = append(values, nv.NumericValue())
	}
	return sum(values), nil
}

// MeanReceived is SumReceived divided by the live reaction count. Returns 0
// (not NaN) when no reactions are live, matching an empty-sum convention
// callers don't need to special-case.
func (e *Engine) MeanReceived(ctx context.Context, typeName string, item model.Actor) (float64, error) {
	rids, err := e.ridsReceivedByItem(ctx, typeName, item)
	if err != nil {
		return 0, err
	}
	if len(rids) == 0 {
		return 0, nil
	}
	sum, err := e.SumReceived(ctx, typeName, item)
	if err != nil {
		return 0, err
	}
	return sum / float64(len(rids)), nil
}

// ridsReceivedByItem enumerates the live rids received by item, using the
// opt-in ItemUser mirror. Requires engine.WithItemIndex(typeName); the
// always-on ItemEnum mirror backs CountReceivedForValue only, not this, so a
// merely-Enumerable type without WithItemIndex still reports
// ErrNotImplemented here.
func (e *Engine) ridsReceivedByItem(ctx context.Context, typeName string, item model.Actor) ([]string, error) {
	props, ok := e.registry.Properties(typeName)
	if !ok {
		return nil, errors.Wrapf(ErrNotImplemented, "reaction type %q is not registered", typeName)
	}
	if !e.itemIndexed[typeName] {
		return nil, errors.Wrapf(ErrNotImplemented, "counting by item requires engine.WithItemIndex(%q)", typeName)
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(ErrStore, err.Error())
	}
	defer tx.Rollback(ctx)

	if props.Has(model.Once) {
		prefix := itemUserOncePrefix(typeName, item)
		kvs, err := tx.Scan(ctx, prefix, codec.PrefixRangeEnd(prefix), 0)
		if err != nil {
			return nil, errors.Wrap(ErrStore, err.Error())
		}
		rids := make([]string, 0, len(kvs))
		for _, kv := range kvs {
			var ov onceValue
			if err := codec.UnmarshalValue(kv.Value, &ov); err != nil {
				return nil, errors.Wrap(ErrSerialization, err.Error())
			}
			rids = append(rids, ov.RID)
		}
		return rids, nil
	}

	prefix := itemUserPrefix(typeName, item)
	keys, err := tx.ScanKeys(ctx, prefix, codec.PrefixRangeEnd(prefix), 0)
	if err != nil {
		return nil, errors.Wrap(ErrStore, err.Error())
	}
	rids := make([]string, len(keys))
	for i, k := range keys {
		rids[i] = string(lastKeyField(k))
	}
	return rids, nil
}

func reverseStrings(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
