// Package hmacauth implements the HMAC-SHA1 command authenticator:
// a keyed MAC over the length-prefixed command bytes, attached to the
// outer message and verified on every response.
package hmacauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
)

// Size is the HMAC-SHA1 digest length in bytes.
const Size = sha1.Size

// Sign computes HMAC-SHA1 of BE32(len(commandBytes)) || commandBytes,
// keyed by key.
func Sign(key, commandBytes []byte) []byte {
	mac := hmac.New(sha1.New, key)
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(commandBytes)))
	mac.Write(lenPrefix[:])
	mac.Write(commandBytes)
	return mac.Sum(nil)
}

// Verify reports whether digest is the correct HMAC-SHA1 of
// commandBytes under key, using a constant-time comparison.
func Verify(key, commandBytes, digest []byte) bool {
	want := Sign(key, commandBytes)
	return hmac.Equal(want, digest)
}
