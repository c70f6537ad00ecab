package engine

import "encoding/base64"

// encodeCursor wraps raw index-key bytes as an opaque pagination
// cursor: base64 text, so it survives a round trip through a client
// boundary without depending on key bytes being valid UTF-8.
func encodeCursor(key []byte) string {
	return base64.URLEncoding.EncodeToString(key)
}

func decodeCursor(cursor string) ([]byte, error) {
	return base64.URLEncoding.DecodeString(cursor)
}
