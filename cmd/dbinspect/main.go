package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookwormapp/bookworm-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Bookworm/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Catalog Inspection ===")
	fmt.Println()

	total := 0
	perShelf := map[domain.Shelf]int{}
	readCount := 0
	withCovers := 0
	shown := map[domain.Shelf]int{}

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("book:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte("book:")); it.ValidForPrefix([]byte("book:")); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(val []byte) error {
				var entry domain.CatalogEntry
				if err := json.Unmarshal(val, &entry); err != nil {
					return err
				}

				total++
				perShelf[entry.Shelf]++
				if entry.ReadFlag {
					readCount++
				}
				if len(entry.CoverImage) > 0 {
					withCovers++
				}

				// Show first few entries per shelf
				if shown[entry.Shelf] < 3 {
					shown[entry.Shelf]++
					fmt.Printf("Book: %s\n", entry.Title)
					fmt.Printf("  ISBN: %s\n", entry.ISBN)
					fmt.Printf("  Shelf: %s\n", entry.Shelf)
					fmt.Printf("  Author: %s\n", entry.PrimaryAuthor())
					fmt.Printf("  Read: %v\n", entry.ReadFlag)
					fmt.Printf("  Cover: %d bytes (blurhash %q)\n",
						len(entry.CoverImage), entry.CoverBlurHash)
					fmt.Printf("  Added: %s (seq %d)\n",
						entry.AddedAt.Format("2006-01-02 15:04"), entry.Seq)
					fmt.Println()
				}

				return nil
			})
			if err != nil {
				log.Printf("Error reading entry %s: %v", key, err)
			}
		}
		return nil
	})

	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total books: %d\n", total)
	fmt.Printf("Library: %d\n", perShelf[domain.ShelfLibrary])
	fmt.Printf("Wishlist: %d\n", perShelf[domain.ShelfWishlist])
	fmt.Printf("Marked read: %d\n", readCount)
	fmt.Printf("With covers: %d\n", withCovers)
}
