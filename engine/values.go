package engine

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/dreamware/rcommunity/internal/codec"
	"github.com/dreamware/rcommunity/model"
)

// actorValue is the JSON shape an Actor is stored as. The engine decodes it
// back into a model.SimpleActor — see SimpleActor's doc comment for why it
// does not attempt to recover the caller's original concrete type.
type actorValue struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func encodeActorValue(a model.Actor) actorValue {
	return actorValue{Type: a.TypeName(), ID: a.ID()}
}

func (v actorValue) toActor() model.SimpleActor {
	return model.NewSimpleActor(v.Type, v.ID)
}

// reactionValue is how a reaction's full payload is stored: its type name
// (so the registry can look up a decode target) plus the type's own JSON
// encoding.
type reactionValue struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func encodeReactionPayload(r model.Reaction) (reactionValue, error) {
	data, err := codec.MarshalValue(r)
	if err != nil {
		return reactionValue{}, errors.Wrapf(ErrSerialization, "marshal reaction %q: %v", r.TypeName(), err)
	}
	return reactionValue{Type: r.TypeName(), Data: json.RawMessage(data)}, nil
}

func (e *Engine) decodeReactionPayload(v reactionValue) (model.Reaction, error) {
	inst, ok := e.registry.New(v.Type)
	if !ok {
		return nil, errors.Wrapf(ErrNotImplemented, "reaction type %q is not registered", v.Type)
	}
	if err := codec.UnmarshalValue(v.Data, inst); err != nil {
		return nil, errors.Wrapf(ErrSerialization, "unmarshal reaction %q: %v", v.Type, err)
	}
	return inst, nil
}

// primaryRecordValue is the value stored at ReactionInfoKey{TN,rid}: the
// full (user, item, reaction) triple.
type primaryRecordValue struct {
	User     actorValue    `json:"user"`
	Item     actorValue    `json:"item"`
	Reaction reactionValue `json:"reaction"`
}

// userItemValue is the value stored at UserItemToReactionKey: just the
// reaction payload.
type userItemValue struct {
	Reaction reactionValue `json:"reaction"`
}

// onceValue is the value stored at UserItemToReactionOnceKey: the rid of
// the single live record for that (type, user, item).
type onceValue struct {
	RID string `json:"rid"`
}

// uniqueValue is the value stored at UniqueKey: the rid it points to.
type uniqueValue struct {
	RID string `json:"rid"`
}
