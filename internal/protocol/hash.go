package protocol

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken is the one-way hash applied to shared secrets. The client
// hashes its token before sending AuthUser; the server hashes the
// received value again to derive the identity key.
func HashToken(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
