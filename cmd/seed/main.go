// Package main provides a tool to seed the catalog with sample books.
//
// This writes a handful of well-known titles directly through the store so
// shelf listings, search, and the inspection tool have data to work with.
//
// Usage:
//
//	DB_PATH=~/Bookworm/data/db go run ./cmd/seed
//	DB_PATH=~/Bookworm/data/db go run ./cmd/seed --wishlist-only
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/bookwormapp/bookworm-server/internal/domain"
	"github.com/bookwormapp/bookworm-server/internal/store"
)

var wishlistOnly = flag.Bool("wishlist-only", false, "Seed only wishlist entries")

type seedBook struct {
	isbn    string
	title   string
	author  string
	pages   int
	shelf   domain.Shelf
	read    bool
	publish string
}

// seedBooks are real ISBNs so lookups against the live API resolve too.
var seedBooks = []seedBook{
	{"9780140328721", "Matilda", "Roald Dahl", 240, domain.ShelfLibrary, true, "1988"},
	{"9780261103573", "The Fellowship of the Ring", "J. R. R. Tolkien", 531, domain.ShelfLibrary, true, "1954"},
	{"9780441013593", "Dune", "Frank Herbert", 604, domain.ShelfLibrary, false, "1965"},
	{"9780553382563", "A Game of Thrones", "George R. R. Martin", 835, domain.ShelfWishlist, false, "1996"},
	{"9781250318541", "This Is How You Lose the Time War", "Amal El-Mohtar", 209, domain.ShelfWishlist, false, "2019"},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Bookworm/data/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	added := 0

	for _, b := range seedBooks {
		if *wishlistOnly && b.shelf != domain.ShelfWishlist {
			continue
		}

		pages := b.pages
		entry := &domain.CatalogEntry{
			BookMetadata: domain.BookMetadata{
				ISBN:        b.isbn,
				Title:       b.title,
				Authors:     []domain.Author{{Name: b.author}},
				PublishDate: b.publish,
				PageCount:   &pages,
			},
			Shelf:    b.shelf,
			ReadFlag: b.read && b.shelf == domain.ShelfLibrary,
			AddedAt:  time.Now().UTC(),
		}

		if err := s.Catalog.Add(ctx, entry); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				fmt.Printf("  %s already cataloged, skipping\n", b.isbn)
				continue
			}
			log.Printf("Failed to add %s: %v", b.isbn, err)
			continue
		}

		fmt.Printf("  Added %q to %s\n", b.title, b.shelf)
		added++
	}

	fmt.Printf("\nSeeding complete: %d books added\n", added)
}
