package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
)

// Hasher produces hex content digests
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{algorithm: algorithm}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// Hash computes a hash of the input data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case SHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
}

// HashFields hashes fields independent of their order
func (h *Hasher) HashFields(fields ...string) string {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	return h.Hash([]byte(strings.Join(sorted, "|")))
}

// ETag returns a strong entity tag for data, prefixed with name
func (h *Hasher) ETag(name string, data []byte) string {
	return `"` + name + "-" + Short(h.Hash(data)) + `"`
}

// Short truncates a digest to 12 characters for display
func Short(digest string) string {
	if len(digest) < 12 {
		return digest
	}
	return digest[:12]
}
