package store

import (
	"context"
	"encoding/binary"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookwormapp/bookworm-server/internal/domain"
	"github.com/bookwormapp/bookworm-server/internal/sse"
)

const (
	// entryPrefix keys one record per ISBN. The record carries its shelf tag,
	// so an ISBN structurally cannot appear on both shelves.
	entryPrefix = "book:"

	// seqKey holds the insertion counter for stable listing order.
	seqKey = "seq:catalog"
)

// Catalog provides transactional access to the two-shelf book catalog.
type Catalog struct {
	store *Store
}

func entryKey(isbn string) []byte {
	return []byte(entryPrefix + isbn)
}

// nextSeq increments and returns the insertion counter inside txn.
func nextSeq(txn *badger.Txn) (uint64, error) {
	var seq uint64

	item, err := txn.Get([]byte(seqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		seq = 0
	case err != nil:
		return 0, fmt.Errorf("failed to read sequence counter: %w", err)
	default:
		if err := item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence counter: %d bytes", len(val))
			}
			seq = binary.BigEndian.Uint64(val)
			return nil
		}); err != nil {
			return 0, err
		}
	}

	seq++
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	if err := txn.Set([]byte(seqKey), buf); err != nil {
		return 0, fmt.Errorf("failed to write sequence counter: %w", err)
	}
	return seq, nil
}

func getEntry(txn *badger.Txn, isbn string) (*domain.CatalogEntry, error) {
	item, err := txn.Get(entryKey(isbn))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entry domain.CatalogEntry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}

func setEntry(txn *badger.Txn, entry *domain.CatalogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	return txn.Set(entryKey(entry.ISBN), data)
}

// Add inserts a new entry on the shelf it carries.
// Returns ErrAlreadyExists if the ISBN is already cataloged on either shelf.
// The duplicate check and the insert run in one transaction, so two concurrent
// adds of the same ISBN cannot both succeed.
func (c *Catalog) Add(ctx context.Context, entry *domain.CatalogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now()
	}

	err := c.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(entryKey(entry.ISBN))
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		seq, err := nextSeq(txn)
		if err != nil {
			return err
		}
		entry.Seq = seq

		return setEntry(txn, entry)
	})
	if err != nil {
		return err
	}

	c.store.emit(sse.NewBookAddedEvent(entry))
	return nil
}

// Get retrieves an entry by ISBN regardless of shelf.
// Returns ErrNotFound if the ISBN is not cataloged.
func (c *Catalog) Get(ctx context.Context, isbn string) (*domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *domain.CatalogEntry
	err := c.store.db.View(func(txn *badger.Txn) error {
		var err error
		entry, err = getEntry(txn, isbn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Contains reports whether the ISBN is cataloged on either shelf.
func (c *Catalog) Contains(ctx context.Context, isbn string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := c.store.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(entryKey(isbn))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes an entry and returns its last state.
// Returns ErrNotFound if the ISBN is not cataloged.
func (c *Catalog) Remove(ctx context.Context, isbn string) (*domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var removed *domain.CatalogEntry
	err := c.store.db.Update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, isbn)
		if err != nil {
			return err
		}
		removed = entry
		return txn.Delete(entryKey(isbn))
	})
	if err != nil {
		return nil, err
	}

	c.store.emit(sse.NewBookRemovedEvent(isbn, removed.Shelf, time.Now()))
	return removed, nil
}

// Update applies mutate to the stored entry in a single transaction.
// Returns ErrNotFound if the ISBN is not cataloged.
func (c *Catalog) Update(ctx context.Context, isbn string, mutate func(*domain.CatalogEntry) error) (*domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var updated *domain.CatalogEntry
	err := c.store.db.Update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, isbn)
		if err != nil {
			return err
		}
		if err := mutate(entry); err != nil {
			return err
		}
		// The key is derived from the ISBN; mutators must not change it.
		entry.ISBN = isbn
		updated = entry
		return setEntry(txn, entry)
	})
	if err != nil {
		return nil, err
	}

	c.store.emit(sse.NewBookUpdatedEvent(updated))
	return updated, nil
}

// Move re-shelves an entry in a single transaction, preserving every field
// except the shelf tag and a fresh insertion sequence on the destination.
// ReadFlag is reset when the destination is the wishlist, where read state
// carries no meaning. Moving to the current shelf is a no-op.
// Returns ErrNotFound if the ISBN is not cataloged.
func (c *Catalog) Move(ctx context.Context, isbn string, to domain.Shelf) (*domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var moved *domain.CatalogEntry
	var from domain.Shelf
	err := c.store.db.Update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, isbn)
		if err != nil {
			return err
		}
		from = entry.Shelf
		if entry.Shelf == to {
			moved = entry
			return nil
		}

		entry.Shelf = to
		if to == domain.ShelfWishlist {
			entry.ReadFlag = false
		}

		// The entry joins the destination shelf at the end of its listing.
		seq, err := nextSeq(txn)
		if err != nil {
			return err
		}
		entry.Seq = seq

		moved = entry
		return setEntry(txn, entry)
	})
	if err != nil {
		return nil, err
	}

	if from != to {
		c.store.emit(sse.NewBookMovedEvent(moved, from))
	}
	return moved, nil
}

// List returns every entry on the shelf in insertion order.
func (c *Catalog) List(ctx context.Context, shelf domain.Shelf) ([]*domain.CatalogEntry, error) {
	return c.collect(ctx, func(e *domain.CatalogEntry) bool {
		return e.Shelf == shelf
	})
}

// Search returns the shelf's entries matching a case-insensitive substring
// query against title or author name, in insertion order. An empty query
// returns the full shelf listing.
func (c *Catalog) Search(ctx context.Context, shelf domain.Shelf, query string) ([]*domain.CatalogEntry, error) {
	return c.collect(ctx, func(e *domain.CatalogEntry) bool {
		return e.Shelf == shelf && e.MatchesQuery(query)
	})
}

// collect scans the entry prefix and returns matching entries ordered by Seq.
func (c *Catalog) collect(ctx context.Context, keep func(*domain.CatalogEntry) bool) ([]*domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []*domain.CatalogEntry
	err := c.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var entry domain.CatalogEntry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("failed to unmarshal entry: %w", err)
			}
			if keep(&entry) {
				entries = append(entries, &entry)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Keys iterate in ISBN order; restore insertion order.
	slices.SortFunc(entries, func(a, b *domain.CatalogEntry) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})
	return entries, nil
}
