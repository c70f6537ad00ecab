package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

const (
	fieldSep byte = '_'
	tagSep   byte = ':'
)

// ValidateID reports an error if s cannot be safely embedded in a key: the
// structural separators '_' and ':' are reserved, so domain type names and
// IDs must not contain them — rejecting them up front keeps the codec
// allocation-free instead of escaping at encode time.
func ValidateID(s string) error {
	if strings.ContainsAny(s, "_:") {
		return fmt.Errorf("codec: id %q contains a reserved separator ('_' or ':')", s)
	}
	return nil
}

// EncodeInt64 encodes v as 8 big-endian bytes with the sign bit flipped, so
// that byte-lexicographic order over the result equals numeric order over
// int64.
func EncodeInt64(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v)^(1<<63))
	return buf
}

// DecodeInt64 reverses EncodeInt64.
func DecodeInt64(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("codec: invalid int64 encoding length %d", len(b))
	}
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63)), nil
}

// EncodeUint64 encodes v as 8 raw big-endian bytes. Unlike EncodeInt64, no
// sign-bit flip is needed: the entire uint64 domain is already non-negative,
// so raw big-endian byte order already equals numeric order. (A literal
// reuse of EncodeInt64's XOR here would reverse the relative order of the
// two halves of the uint64 range at the 2^63 boundary, which would violate
// the codec's monotonicity invariant.)
func EncodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

// DecodeUint64 reverses EncodeUint64.
func DecodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("codec: invalid uint64 encoding length %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// EncodeFloat64 encodes f as 8 bytes such that byte-lexicographic order
// equals numeric order over float64, excluding NaN (which has no total
// order and is rejected).
//
// Negative numbers have every bit of their IEEE-754 representation
// inverted; non-negative numbers have only the sign bit flipped. This maps
// the full range of (non-NaN) floats onto a contiguous monotone range of
// uint64, with all negatives sorting before all non-negatives.
func EncodeFloat64(f float64) ([]byte, error) {
	if math.IsNaN(f) {
		return nil, fmt.Errorf("codec: NaN has no total order and cannot be key-encoded")
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	return buf, nil
}

// DecodeFloat64 reverses EncodeFloat64.
func DecodeFloat64(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("codec: invalid float64 encoding length %d", len(b))
	}
	bits := binary.BigEndian.Uint64(b)
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}

// EncodeTag encodes a newtype-style field "TypeTag:payload": tag identifies
// the domain type, payload is that type's already-encoded value. This is
// how Actor and Reaction values are embedded in keys: TypeName() supplies
// tag, and ID() (or a Reaction's value encoding) supplies payload.
func EncodeTag(tag string, payload []byte) []byte {
	buf := make([]byte, 0, len(tag)+1+len(payload))
	buf = append(buf, tag...)
	buf = append(buf, tagSep)
	buf = append(buf, payload...)
	return buf
}

// EncodePlaceholder encodes a Placeholder<T> field: "TypeName:" with no
// payload. Used as the trailing field of a key to build a prefix that
// fixes every field before it while leaving this one open for a range scan.
func EncodePlaceholder(tag string) []byte {
	return EncodeTag(tag, nil)
}

// Key incrementally builds a tagged composite key: a struct name followed
// by '_'-separated field encodings.
type Key struct {
	buf []byte
}

// NewKey starts a key with the given struct name (e.g. "ReactionInfoKey").
func NewKey(structName string) *Key {
	return &Key{buf: append([]byte(nil), structName...)}
}

// Field appends an already-encoded field, preceded by the structural
// separator.
func (k *Key) Field(encoded []byte) *Key {
	k.buf = append(k.buf, fieldSep)
	k.buf = append(k.buf, encoded...)
	return k
}

// Bytes returns the assembled key. The Key must not be reused afterward.
func (k *Key) Bytes() []byte {
	return k.buf
}

// PrefixRangeEnd returns the exclusive upper bound of the half-open range
// covering every key with the given prefix: the smallest key that is
// lexicographically greater than all of them. Returns nil (meaning "no
// upper bound, scan to the end of the keyspace") if prefix consists
// entirely of 0xFF bytes or is empty.
func PrefixRangeEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
