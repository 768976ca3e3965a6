// Package sha256 provides the content hasher used for page records.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher hashes content with SHA-256 and encodes the digest as hex.
type Hasher struct{}

// Hash returns the hex-encoded SHA-256 digest of data.
func (Hasher) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
