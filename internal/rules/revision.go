package rules

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Revision returns a content digest of a rules document.
// Two documents with the same revision parse to identical RuleSets.
func Revision(document string) string {
	sum := blake2b.Sum256([]byte(document))
	return hex.EncodeToString(sum[:])
}
