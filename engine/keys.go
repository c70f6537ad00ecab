package engine

import (
	"github.com/pkg/errors"

	"github.com/dreamware/rcommunity/internal/codec"
	"github.com/dreamware/rcommunity/model"
)

// encodeActor renders a user or item as a key field: "TypeName:id".
func encodeActor(a model.Actor) []byte {
	return codec.EncodeTag(a.TypeName(), []byte(a.ID()))
}

// encodeReactionValue renders a reaction's value as a key field. Only
// reaction types carrying Unique or Enumerable need this — registry.Register
// already refused any such type that doesn't implement ValueKeyer. ValueKey()
// is domain data, not a pre-validated ID, so it's checked against the same
// reserved-separator rule as actor IDs before being embedded in a key.
func encodeReactionValue(r model.Reaction) ([]byte, error) {
	vk, ok := r.(model.ValueKeyer)
	if !ok {
		return nil, errors.Errorf("engine: reaction type %q has no value key (not Unique or Enumerable)", r.TypeName())
	}
	value := vk.ValueKey()
	if err := codec.ValidateID(value); err != nil {
		return nil, errors.Wrapf(err, "reaction type %q value key", r.TypeName())
	}
	return codec.EncodeTag(r.TypeName(), []byte(value)), nil
}

// -- Primary record --------------------------------------------------------

func primaryKey(typeName, rid string) []byte {
	return codec.NewKey("ReactionInfoKey").
		Field([]byte(typeName)).
		Field([]byte(rid)).
		Bytes()
}

// -- User-item index --------------------------------------------------------

func userItemKey(typeName string, user, item model.Actor, rid string) []byte {
	return codec.NewKey("UserItemToReactionKey").
		Field([]byte(typeName)).
		Field(encodeActor(user)).
		Field(encodeActor(item)).
		Field([]byte(rid)).
		Bytes()
}

func userItemPrefix(typeName string, user, item model.Actor) []byte {
	return codec.NewKey("UserItemToReactionKey").
		Field([]byte(typeName)).
		Field(encodeActor(user)).
		Field(encodeActor(item)).
		Field(nil).
		Bytes()
}

func userItemOnceKey(typeName string, user, item model.Actor) []byte {
	return codec.NewKey("UserItemToReactionOnceKey").
		Field([]byte(typeName)).
		Field(encodeActor(user)).
		Field(encodeActor(item)).
		Bytes()
}

// -- Item-user mirror (opt-in, enables counting received reactions by item) --

func itemUserKey(typeName string, item, user model.Actor, rid string) []byte {
	return codec.NewKey("ItemUserToReactionKey").
		Field([]byte(typeName)).
		Field(encodeActor(item)).
		Field(encodeActor(user)).
		Field([]byte(rid)).
		Bytes()
}

func itemUserPrefix(typeName string, item model.Actor) []byte {
	return codec.NewKey("ItemUserToReactionKey").
		Field([]byte(typeName)).
		Field(encodeActor(item)).
		Field(nil).
		Bytes()
}

func itemUserOnceKey(typeName string, item, user model.Actor) []byte {
	return codec.NewKey("ItemUserToReactionOnceKey").
		Field([]byte(typeName)).
		Field(encodeActor(item)).
		Field(encodeActor(user)).
		Bytes()
}

func itemUserOncePrefix(typeName string, item model.Actor) []byte {
	return codec.NewKey("ItemUserToReactionOnceKey").
		Field([]byte(typeName)).
		Field(encodeActor(item)).
		Field(nil).
		Bytes()
}

// -- Unique-value index ------------------------------------------------------

func uniqueKey(typeName string, user, item model.Actor, r []byte) []byte {
	return codec.NewKey("UniqueKey").
		Field([]byte(typeName)).
		Field(encodeActor(user)).
		Field(encodeActor(item)).
		Field(r).
		Bytes()
}

// -- Enumeration index --------------------------------------------------------

func enumKey(typeName string, user, item model.Actor, r []byte, rid string) []byte {
	return codec.NewKey("EnumKey").
		Field([]byte(typeName)).
		Field(encodeActor(user)).
		Field(encodeActor(item)).
		Field(r).
		Field([]byte(rid)).
		Bytes()
}

func enumPrefix(typeName string, user, item model.Actor, r []byte) []byte {
	return codec.NewKey("EnumKey").
		Field([]byte(typeName)).
		Field(encodeActor(user)).
		Field(encodeActor(item)).
		Field(r).
		Field(nil).
		Bytes()
}

// itemEnumKey is the by-item mirror of EnumKey: it drops the user field so
// count_received_for_value(TN, i, r) can scan a prefix instead of filtering
// a user-space scan. Resolves the same open design question as the
// ItemUserToReaction mirror, extended to the enumerable case.
func itemEnumKey(typeName string, item model.Actor, r []byte, rid string) []byte {
	return codec.NewKey("ItemEnumKey").
		Field([]byte(typeName)).
		Field(encodeActor(item)).
		Field(r).
		Field([]byte(rid)).
		Bytes()
}

func itemEnumPrefix(typeName string, item model.Actor, r []byte) []byte {
	return codec.NewKey("ItemEnumKey").
		Field([]byte(typeName)).
		Field(encodeActor(item)).
		Field(r).
		Field(nil).
		Bytes()
}

