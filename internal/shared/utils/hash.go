package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
)

// ValueHashLength is the number of hex characters kept for value diagnostics
const ValueHashLength = 16

// Hasher computes digests of field values. Raw values never leave the
// engine in log events; only these digests do.
type Hasher struct {
	algorithm HashAlgorithm
	salt      string
}

// NewHasher creates a new hasher with the specified algorithm and salt
func NewHasher(algorithm HashAlgorithm, salt string) *Hasher {
	return &Hasher{algorithm: algorithm, salt: salt}
}

// DefaultHasher returns an unsalted SHA256 hasher
func DefaultHasher() *Hasher {
	return NewHasher(SHA256, "")
}

// Hash computes a hex digest of the input data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case SHA256:
		fallthrough
	default:
		sum := sha256.Sum256(append([]byte(h.salt), data...))
		return hex.EncodeToString(sum[:])
	}
}

// HashString computes a hex digest of a string
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// HashValue returns a shortened digest of a normalized field value. Empty
// values hash to the empty string so "nothing to fill" stays distinguishable.
func (h *Hasher) HashValue(value string) string {
	normalized := NormalizeForMatch(value)
	if normalized == "" {
		return ""
	}
	return h.HashString(normalized)[:ValueHashLength]
}
