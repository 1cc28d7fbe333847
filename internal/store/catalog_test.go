package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwormapp/bookworm-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil, NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func entry(isbn, title, author string, shelf domain.Shelf) *domain.CatalogEntry {
	return &domain.CatalogEntry{
		BookMetadata: domain.BookMetadata{
			ISBN:    isbn,
			Title:   title,
			Authors: []domain.Author{{Name: author}},
		},
		Shelf: shelf,
	}
}

func TestCatalog_AddAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := entry("9780547928227", "The Hobbit", "J.R.R. Tolkien", domain.ShelfLibrary)
	require.NoError(t, s.Catalog.Add(ctx, e))
	assert.NotZero(t, e.Seq)
	assert.False(t, e.AddedAt.IsZero())

	got, err := s.Catalog.Get(ctx, "9780547928227")
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", got.Title)
	assert.Equal(t, domain.ShelfLibrary, got.Shelf)
	assert.False(t, got.ReadFlag)

	_, err = s.Catalog.Get(ctx, "0000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_AddRejectsDuplicateAcrossShelves(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Catalog.Add(ctx, entry("9780547928227", "The Hobbit", "J.R.R. Tolkien", domain.ShelfLibrary)))

	// Same ISBN on the other shelf is still a duplicate.
	err := s.Catalog.Add(ctx, entry("9780547928227", "The Hobbit", "J.R.R. Tolkien", domain.ShelfWishlist))
	assert.ErrorIs(t, err, ErrAlreadyExists)

	ok, err := s.Catalog.Contains(ctx, "9780547928227")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Catalog.Contains(ctx, "0140328726")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalog_ListInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// ISBNs deliberately out of lexicographic order.
	require.NoError(t, s.Catalog.Add(ctx, entry("9780547928227", "The Hobbit", "J.R.R. Tolkien", domain.ShelfLibrary)))
	require.NoError(t, s.Catalog.Add(ctx, entry("0140328726", "Fantastic Mr Fox", "Roald Dahl", domain.ShelfLibrary)))
	require.NoError(t, s.Catalog.Add(ctx, entry("9780261102217", "The Fellowship of the Ring", "J.R.R. Tolkien", domain.ShelfWishlist)))

	library, err := s.Catalog.List(ctx, domain.ShelfLibrary)
	require.NoError(t, err)
	require.Len(t, library, 2)
	assert.Equal(t, "9780547928227", library[0].ISBN)
	assert.Equal(t, "0140328726", library[1].ISBN)

	wishlist, err := s.Catalog.List(ctx, domain.ShelfWishlist)
	require.NoError(t, err)
	require.Len(t, wishlist, 1)
	assert.Equal(t, "9780261102217", wishlist[0].ISBN)
}

func TestCatalog_MovePreservesFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	pages := 208
	e := entry("0140328726", "Fantastic Mr Fox", "Roald Dahl", domain.ShelfWishlist)
	e.Publisher = "Puffin"
	e.PageCount = &pages
	require.NoError(t, s.Catalog.Add(ctx, e))

	moved, err := s.Catalog.Move(ctx, "0140328726", domain.ShelfLibrary)
	require.NoError(t, err)
	assert.Equal(t, domain.ShelfLibrary, moved.Shelf)
	assert.False(t, moved.ReadFlag)
	assert.Equal(t, "Puffin", moved.Publisher)
	require.NotNil(t, moved.PageCount)
	assert.Equal(t, 208, *moved.PageCount)

	// Gone from the source shelf, present on the destination.
	wishlist, err := s.Catalog.List(ctx, domain.ShelfWishlist)
	require.NoError(t, err)
	assert.Empty(t, wishlist)

	library, err := s.Catalog.List(ctx, domain.ShelfLibrary)
	require.NoError(t, err)
	require.Len(t, library, 1)
	assert.Equal(t, "0140328726", library[0].ISBN)
}

func TestCatalog_MoveToWishlistResetsReadFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Catalog.Add(ctx, entry("9780547928227", "The Hobbit", "J.R.R. Tolkien", domain.ShelfLibrary)))

	_, err := s.Catalog.Update(ctx, "9780547928227", func(e *domain.CatalogEntry) error {
		e.ReadFlag = true
		return nil
	})
	require.NoError(t, err)

	moved, err := s.Catalog.Move(ctx, "9780547928227", domain.ShelfWishlist)
	require.NoError(t, err)
	assert.False(t, moved.ReadFlag, "read state is meaningless off the library shelf")
}

func TestCatalog_MoveSameShelfIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := entry("9780547928227", "The Hobbit", "J.R.R. Tolkien", domain.ShelfLibrary)
	require.NoError(t, s.Catalog.Add(ctx, e))
	originalSeq := e.Seq

	moved, err := s.Catalog.Move(ctx, "9780547928227", domain.ShelfLibrary)
	require.NoError(t, err)
	assert.Equal(t, originalSeq, moved.Seq)
}

func TestCatalog_MoveMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Catalog.Move(context.Background(), "0000000000", domain.ShelfLibrary)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_Remove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Catalog.Add(ctx, entry("9780547928227", "The Hobbit", "J.R.R. Tolkien", domain.ShelfLibrary)))

	removed, err := s.Catalog.Remove(ctx, "9780547928227")
	require.NoError(t, err)
	assert.Equal(t, domain.ShelfLibrary, removed.Shelf)

	_, err = s.Catalog.Get(ctx, "9780547928227")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Catalog.Remove(ctx, "9780547928227")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_UpdateMutatorError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Catalog.Add(ctx, entry("9780547928227", "The Hobbit", "J.R.R. Tolkien", domain.ShelfLibrary)))

	wantErr := assert.AnError
	_, err := s.Catalog.Update(ctx, "9780547928227", func(*domain.CatalogEntry) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// Failed mutation leaves the entry untouched.
	got, err := s.Catalog.Get(ctx, "9780547928227")
	require.NoError(t, err)
	assert.False(t, got.ReadFlag)
}

func TestCatalog_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Catalog.Add(ctx, entry("9780547928227", "The Hobbit", "J.R.R. Tolkien", domain.ShelfLibrary)))
	require.NoError(t, s.Catalog.Add(ctx, entry("0140328726", "Fantastic Mr Fox", "Roald Dahl", domain.ShelfLibrary)))
	require.NoError(t, s.Catalog.Add(ctx, entry("9780261102217", "The Fellowship of the Ring", "J.R.R. Tolkien", domain.ShelfWishlist)))

	// Case-insensitive substring on author.
	results, err := s.Catalog.Search(ctx, domain.ShelfLibrary, "tolk")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "The Hobbit", results[0].Title)

	// Substring on title.
	results, err = s.Catalog.Search(ctx, domain.ShelfLibrary, "FOX")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Fantastic Mr Fox", results[0].Title)

	// Empty query returns the full shelf in insertion order.
	results, err = s.Catalog.Search(ctx, domain.ShelfLibrary, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "9780547928227", results[0].ISBN)

	// Search is scoped to the requested shelf.
	results, err = s.Catalog.Search(ctx, domain.ShelfWishlist, "tolk")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "The Fellowship of the Ring", results[0].Title)
}

func TestCatalog_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := New(dir, nil, NewNoopEmitter())
	require.NoError(t, err)
	require.NoError(t, s.Catalog.Add(ctx, entry("9780547928227", "The Hobbit", "J.R.R. Tolkien", domain.ShelfLibrary)))
	require.NoError(t, s.Close())

	s, err = New(dir, nil, NewNoopEmitter())
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Catalog.Get(ctx, "9780547928227")
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", got.Title)
}
