// Package fingerprint derives stable content hashes for imported
// flashcard notes, so re-importing a source never duplicates notes and
// edited notes are detected as new content.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// normalize lowercases, trims, and unifies line endings so cosmetic
// edits do not change the fingerprint.
func normalize(part string) string {
	p := strings.ToLower(part)
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, "\r\n", "\n")
	return p
}

// Note returns the hex SHA-256 fingerprint of a flashcard note's
// content, derived from the front, back and context joined in that
// order.
func Note(front, back, context string) string {
	joined := strings.Join([]string{
		normalize(front),
		normalize(back),
		normalize(context),
	}, "\n")
	sum := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("%x", sum)
}
