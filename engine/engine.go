package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dreamware/rcommunity/internal/codec"
	"github.com/dreamware/rcommunity/model"
	"github.com/dreamware/rcommunity/store"
)

// Engine is the reaction indexing engine: it orchestrates React and Dereact
// against a store.Store, maintaining the index families each reaction type's
// property composition calls for. An Engine is safe for concurrent use; all
// mutable state lives in the store.
type Engine struct {
	store       store.Store
	registry    *model.TypeRegistry
	log         *logrus.Logger
	itemIndexed map[string]bool
}

// New returns an Engine backed by s, decoding/encoding reaction values
// through registry. Register every reaction type with registry before
// passing it here — React and Dereact reject unregistered type names.
func New(s store.Store, registry *model.TypeRegistry, opts ...Option) *Engine {
	e := &Engine{
		store:       s,
		registry:    registry,
		log:         logrus.StandardLogger(),
		itemIndexed: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// React records a fresh reaction by user on item, writing the primary
// record plus every index family the reaction type's properties call for,
// atomically. It returns the freshly generated rid.
//
// Order of operations: before_store (the Once/Unique implicit dereact of
// whatever record this one supersedes), primary record, user-item index,
// unique-value index, enum index, commit.
func (e *Engine) React(ctx context.Context, user, item model.Actor, reaction model.Reaction) (string, error) {
	typeName := reaction.TypeName()
	props, ok := e.registry.Properties(typeName)
	if !ok {
		return "", errors.Wrapf(ErrNotImplemented, "reaction type %q is not registered", typeName)
	}
	if err := validateActor(user); err != nil {
		return "", err
	}
	if err := validateActor(item); err != nil {
		return "", err
	}
	if err := codec.ValidateID(typeName); err != nil {
		return "", errors.Wrap(ErrSerialization, err.Error())
	}

	var r []byte
	if props.Has(model.Unique) || props.Has(model.Enumerable) {
		encoded, err := encodeReactionValue(reaction)
		if err != nil {
			return "", errors.Wrap(ErrSerialization, err.Error())
		}
		r = encoded
	}

	rid := uuid.New().String()

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return "", errors.Wrap(ErrStore, err.Error())
	}

	// react issues every Put/Delete directly against tx (store.MemoryStore is
	// write-through, with no per-transaction buffer — see its doc comment).
	// Rollback below only releases the transaction's exclusivity slot; it
	// cannot undo a partial sequence of writes. This is safe only because
	// every mutation here is a pure function of (typeName, props, user, item,
	// reaction, r, rid) with no data-dependent branch that can fail
	// mid-sequence on this backend.
	if err := e.react(ctx, tx, typeName, props, user, item, reaction, r, rid); err != nil {
		_ = tx.Rollback(ctx)
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", errors.Wrap(ErrStore, err.Error())
	}

	e.log.WithFields(logrus.Fields{
		"type": typeName, "rid": rid, "user": user.ID(), "item": item.ID(),
	}).Debug("engine: react committed")
	return rid, nil
}

func (e *Engine) react(ctx context.Context, tx store.Transaction, typeName string, props model.Properties, user, item model.Actor, reaction model.Reaction, r []byte, rid string) error {
	// 1. before_store: Once implicitly supersedes any existing record.
	if props.Has(model.Once) {
		onceKey := userItemOnceKey(typeName, user, item)
		raw, err := tx.GetForUpdate(ctx, onceKey)
		switch {
		case err == nil:
			var ov onceValue
			if err := codec.UnmarshalValue(raw, &ov); err != nil {
				return errors.Wrap(ErrSerialization, err.Error())
			}
			if err := e.dereact(ctx, tx, typeName, ov.RID); err != nil {
				return err
			}
		case errors.Is(err, store.ErrKeyNotFound):
			// nothing live for this (type,user,item); proceed.
		default:
			return errors.Wrap(ErrStore, err.Error())
		}
	}

	// Unique collapsing: at most one live record may exist per
	// (type,user,item,value). The Once case above only covers types that are
	// also Once; a Unique type that isn't Once (e.g. Tag) needs the same
	// implicit-supersession applied here, keyed on the unique-value index
	// instead. A no-op when Once already collapsed the same rid above, since
	// that already cleared this UniqueKey.
	if props.Has(model.Unique) {
		uKey := uniqueKey(typeName, user, item, r)
		raw, err := tx.GetForUpdate(ctx, uKey)
		switch {
		case err == nil:
			var uv uniqueValue
			if err := codec.UnmarshalValue(raw, &uv); err != nil {
				return errors.Wrap(ErrSerialization, err.Error())
			}
			if err := e.dereact(ctx, tx, typeName, uv.RID); err != nil {
				return err
			}
		case errors.Is(err, store.ErrKeyNotFound):
			// no existing record with this (type,user,item,value); proceed.
		default:
			return errors.Wrap(ErrStore, err.Error())
		}
	}

	// 2. Primary record.
	reactionPayload, err := encodeReactionPayload(reaction)
	if err != nil {
		return err
	}
	primary := primaryRecordValue{
		User:     encodeActorValue(user),
		Item:     encodeActorValue(item),
		Reaction: reactionPayload,
	}
	primaryBytes, err := codec.MarshalValue(primary)
	if err != nil {
		return errors.Wrap(ErrSerialization, err.Error())
	}
	if err := tx.Put(ctx, primaryKey(typeName, rid), primaryBytes); err != nil {
		return errors.Wrap(ErrStore, err.Error())
	}

	// 3. User-item index (once or default), plus its item-user mirror when
	// enabled for this type.
	if props.Has(model.Once) {
		onceBytes, err := codec.MarshalValue(onceValue{RID: rid})
		if err != nil {
			return errors.Wrap(ErrSerialization, err.Error())
		}
		if err := tx.Put(ctx, userItemOnceKey(typeName, user, item), onceBytes); err != nil {
			return errors.Wrap(ErrStore, err.Error())
		}
		if e.itemIndexed[typeName] {
			if err := tx.Put(ctx, itemUserOnceKey(typeName, item, user), onceBytes); err != nil {
				return errors.Wrap(ErrStore, err.Error())
			}
		}
	} else {
		uiBytes, err := codec.MarshalValue(userItemValue{Reaction: reactionPayload})
		if err != nil {
			return errors.Wrap(ErrSerialization, err.Error())
		}
		if err := tx.Put(ctx, userItemKey(typeName, user, item, rid), uiBytes); err != nil {
			return errors.Wrap(ErrStore, err.Error())
		}
		if e.itemIndexed[typeName] {
			if err := tx.Put(ctx, itemUserKey(typeName, item, user, rid), uiBytes); err != nil {
				return errors.Wrap(ErrStore, err.Error())
			}
		}
	}

	// 4. Unique-value index.
	if props.Has(model.Unique) {
		uvBytes, err := codec.MarshalValue(uniqueValue{RID: rid})
		if err != nil {
			return errors.Wrap(ErrSerialization, err.Error())
		}
		if err := tx.Put(ctx, uniqueKey(typeName, user, item, r), uvBytes); err != nil {
			return errors.Wrap(ErrStore, err.Error())
		}
	}

	// 5. Enum index, plus its by-item mirror (always maintained for
	// Enumerable types: count_received_for_value needs to fix item before
	// user, which the canonical EnumKey order does not allow).
	if props.Has(model.Enumerable) {
		if err := tx.Put(ctx, enumKey(typeName, user, item, r, rid), []byte{}); err != nil {
			return errors.Wrap(ErrStore, err.Error())
		}
		if err := tx.Put(ctx, itemEnumKey(typeName, item, r, rid), []byte{}); err != nil {
			return errors.Wrap(ErrStore, err.Error())
		}
	}

	return nil
}

// Dereact removes every index key a prior React wrote for rid, leaving the
// store as if that reaction had never occurred. The caller supplies
// typeName because rid alone does not identify which reaction type's
// indexes to clean up.
func (e *Engine) Dereact(ctx context.Context, typeName, rid string) error {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return errors.Wrap(ErrStore, err.Error())
	}
	if err := e.dereact(ctx, tx, typeName, rid); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(ErrStore, err.Error())
	}
	e.log.WithFields(logrus.Fields{"type": typeName, "rid": rid}).Debug("engine: dereact committed")
	return nil
}

// dereact implements the operation within an already-open transaction, so
// React's implicit Once-supersession can call it without nesting
// transactions.
func (e *Engine) dereact(ctx context.Context, tx store.Transaction, typeName, rid string) error {
	props, ok := e.registry.Properties(typeName)
	if !ok {
		return errors.Wrapf(ErrNotImplemented, "reaction type %q is not registered", typeName)
	}

	// 1. Read the primary record to recover (user, item, reaction).
	raw, err := tx.GetForUpdate(ctx, primaryKey(typeName, rid))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return errors.Wrapf(ErrNotFound, "reaction %s/%s", typeName, rid)
		}
		return errors.Wrap(ErrStore, err.Error())
	}
	var primary primaryRecordValue
	if err := codec.UnmarshalValue(raw, &primary); err != nil {
		return errors.Wrap(ErrSerialization, err.Error())
	}
	user := primary.User.toActor()
	item := primary.Item.toActor()

	var r []byte
	if props.Has(model.Unique) || props.Has(model.Enumerable) {
		reaction, err := e.decodeReactionPayload(primary.Reaction)
		if err != nil {
			return err
		}
		r, err = encodeReactionValue(reaction)
		if err != nil {
			return errors.Wrap(ErrSerialization, err.Error())
		}
	}

	// 2. Delete the enum index entry and its by-item mirror.
	if props.Has(model.Enumerable) {
		if err := tx.Delete(ctx, enumKey(typeName, user, item, r, rid)); err != nil {
			return errors.Wrap(ErrStore, err.Error())
		}
		if err := tx.Delete(ctx, itemEnumKey(typeName, item, r, rid)); err != nil {
			return errors.Wrap(ErrStore, err.Error())
		}
	}

	// 3. Delete the unique-value entry.
	if props.Has(model.Unique) {
		if err := tx.Delete(ctx, uniqueKey(typeName, user, item, r)); err != nil {
			return errors.Wrap(ErrStore, err.Error())
		}
	}

	// 4. Delete the user-item entry (once or default), and its mirror.
	if props.Has(model.Once) {
		if err := tx.Delete(ctx, userItemOnceKey(typeName, user, item)); err != nil {
			return errors.Wrap(ErrStore, err.Error())
		}
		if e.itemIndexed[typeName] {
			if err := tx.Delete(ctx, itemUserOnceKey(typeName, item, user)); err != nil {
				return errors.Wrap(ErrStore, err.Error())
			}
		}
	} else {
		if err := tx.Delete(ctx, userItemKey(typeName, user, item, rid)); err != nil {
			return errors.Wrap(ErrStore, err.Error())
		}
		if e.itemIndexed[typeName] {
			if err := tx.Delete(ctx, itemUserKey(typeName, item, user, rid)); err != nil {
				return errors.Wrap(ErrStore, err.Error())
			}
		}
	}

	// 5. Delete the primary record.
	if err := tx.Delete(ctx, primaryKey(typeName, rid)); err != nil {
		return errors.Wrap(ErrStore, err.Error())
	}

	return nil
}

func validateActor(a model.Actor) error {
	if err := codec.ValidateID(a.TypeName()); err != nil {
		return errors.Wrap(ErrSerialization, err.Error())
	}
	if err := codec.ValidateID(a.ID()); err != nil {
		return errors.Wrap(ErrSerialization, err.Error())
	}
	return nil
}
