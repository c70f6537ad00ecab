// Package codec implements the reaction engine's wire format: order-preserving
// composite key encoding and a JSON-compatible value encoding.
//
// Keys are tagged structs: a struct name, then a '_'-separated sequence of
// field encodings, each either a primitive (order-preserving) or a newtype
// "TypeTag:payload" pair. The encoding is designed so that encoding a key
// and comparing the resulting bytes lexicographically gives the same answer
// as comparing the key's logical (typed) fields — this is what lets
// engine's Scan-based queries fix a key's leading fields and range over the
// rest.
//
// This package is an implementation detail of engine; it is not part of the
// public API.
package codec
