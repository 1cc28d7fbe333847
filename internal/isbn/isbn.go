// Package isbn validates and normalizes ISBN input before it reaches the
// lookup client or the catalog store.
package isbn

import (
	"strings"

	domainerrors "github.com/bookwormapp/bookworm-server/internal/errors"
)

// Normalize strips hyphens from raw ISBN input and validates the result.
// Accepts only digit strings of exactly 10 or 13 characters; ISBNs are often
// copied from the web with hyphens in them, so those are tolerated.
// Pure function, no side effects.
func Normalize(raw string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "-", "")

	if s == "" {
		return "", domainerrors.InvalidISBN("ISBN is empty")
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return "", domainerrors.InvalidISBN("ISBN may only contain digits")
		}
	}

	if len(s) != 10 && len(s) != 13 {
		return "", domainerrors.InvalidISBN("ISBN must be 10 or 13 digits")
	}

	return s, nil
}
