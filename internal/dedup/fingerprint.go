// Package dedup identifies job postings and remembers which ones were
// already ingested.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// FingerprintLength is the number of hex characters kept from the digest.
// Collisions in the truncated digest are accepted, not detected.
const FingerprintLength = 16

const delimiter = "|"

// Fingerprint returns the Job id for a posting: the lower-cased key fields
// joined by "|", hashed with SHA-256 and truncated to 16 hex characters.
func Fingerprint(url, company, title, location string) string {
	key := strings.ToLower(strings.Join([]string{url, company, title, location}, delimiter))
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:FingerprintLength]
}
