package codec

import "github.com/goccy/go-json"

// MarshalValue encodes v as a JSON-compatible value. Values don't need order
// preservation, only a schema-preserving round trip, so this is a thin
// wrapper over goccy/go-json rather than the hand-rolled scheme key.go uses.
func MarshalValue(v any) ([]byte, error) {
	return json.Marshal(v)
}

// UnmarshalValue decodes data into v, as produced by MarshalValue.
func UnmarshalValue(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
