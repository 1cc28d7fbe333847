package domain

import (
	"fmt"
	"strings"
	"time"
)

// Shelf names one of the two catalog partitions.
type Shelf string

const (
	// ShelfLibrary holds books the user owns.
	ShelfLibrary Shelf = "library"
	// ShelfWishlist holds books the user wants.
	ShelfWishlist Shelf = "wishlist"
)

// ParseShelf converts client input to a Shelf, case-insensitively.
func ParseShelf(s string) (Shelf, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ShelfLibrary):
		return ShelfLibrary, nil
	case string(ShelfWishlist):
		return ShelfWishlist, nil
	default:
		return "", fmt.Errorf("unknown shelf %q", s)
	}
}

// CatalogEntry is a book persisted on one of the two shelves.
//
// An ISBN appears in at most one entry across both shelves; the entry itself
// carries its shelf tag, so a book structurally cannot be on two shelves at
// once. ReadFlag only carries meaning while Shelf is ShelfLibrary.
type CatalogEntry struct {
	BookMetadata

	Shelf    Shelf `json:"shelf"`
	ReadFlag bool  `json:"read_flag"`

	// CoverImage holds the downloaded cover bytes, or a generated placeholder
	// when no cover could be fetched.
	CoverImage    []byte `json:"cover_image,omitempty"`
	CoverBlurHash string `json:"cover_blur_hash,omitempty"`

	AddedAt time.Time `json:"added_at"`

	// Seq orders entries by insertion; the store assigns it.
	Seq uint64 `json:"seq"`
}

// MatchesQuery reports whether the entry matches a case-insensitive substring
// query against its title or any author name. An empty query matches everything.
func (e *CatalogEntry) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(e.Title), q) {
		return true
	}
	for _, a := range e.Authors {
		if strings.Contains(strings.ToLower(a.Name), q) {
			return true
		}
	}
	return false
}
