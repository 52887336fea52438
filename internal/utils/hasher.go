package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// MarkerKey hashes a namespaced identifier, e.g. MarkerKey("article", slug).
// The value is trimmed and lowercased so cosmetic differences map to the same
// key.
func MarkerKey(kind, value string) string {
	return Hash(kind + ":" + strings.ToLower(strings.TrimSpace(value)))
}
