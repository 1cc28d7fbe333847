// Package id generates prefixed unique identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	size     = 16
)

// Generate returns a new identifier of the form "prefix-xxxxxxxxxxxxxxxx".
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.Generate(alphabet, size)
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return fmt.Sprintf("%s-%s", prefix, nid), nil
}

// MustGenerate is like Generate but panics on failure. Generation only fails
// when the OS entropy source does, so this is safe for non-critical ids.
func MustGenerate(prefix string) string {
	nid, err := Generate(prefix)
	if err != nil {
		panic(err)
	}
	return nid
}
