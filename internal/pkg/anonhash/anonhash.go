package anonhash

import (
	"crypto/sha256"
	"encoding/hex"
)

// reporterHashLen is the number of hex characters kept from the digest
const reporterHashLen = 16

// Reporter returns a one-way anonymized identifier for a raw reporter ID:
// the first 16 hex characters of its SHA-256 digest.
func Reporter(reporterID string) string {
	sum := sha256.Sum256([]byte(reporterID))
	return hex.EncodeToString(sum[:])[:reporterHashLen]
}
