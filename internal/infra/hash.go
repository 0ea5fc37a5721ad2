package infra

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashPII normalizes (trim + lower-case) and SHA-256 hashes a value, the
// format both ad platforms require for e-mail and phone matching.
func HashPII(v string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(v))))
	return hex.EncodeToString(sum[:])
}
