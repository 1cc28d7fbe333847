package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwormapp/bookworm-server/internal/domain"
	domainerrors "github.com/bookwormapp/bookworm-server/internal/errors"
	"github.com/bookwormapp/bookworm-server/internal/logger"
	"github.com/bookwormapp/bookworm-server/internal/media/covers"
	"github.com/bookwormapp/bookworm-server/internal/metadata/openlibrary"
	"github.com/bookwormapp/bookworm-server/internal/store"
)

type fakeResolver struct {
	books map[string]*domain.BookMetadata
	err   error
	calls int
}

func (f *fakeResolver) Resolve(_ context.Context, isbn string) (*domain.BookMetadata, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	meta, ok := f.books[isbn]
	if !ok {
		return nil, &openlibrary.Error{Op: "resolve", ISBN: isbn, Err: openlibrary.ErrNotFound}
	}
	return meta, nil
}

type fakeCoverFetcher struct {
	data []byte
	err  error
}

func (f *fakeCoverFetcher) Download(_ context.Context, _, _ string) (*covers.DownloadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &covers.DownloadResult{Data: f.data, Size: int64(len(f.data))}, nil
}

func hobbitMetadata() *domain.BookMetadata {
	pages := 366
	return &domain.BookMetadata{
		ISBN:      "9780547928227",
		Title:     "The Hobbit",
		Authors:   []domain.Author{{Name: "J.R.R. Tolkien"}},
		PageCount: &pages,
	}
}

func newTestService(t *testing.T, resolver *fakeResolver) *CatalogService {
	t.Helper()

	st, err := store.New(t.TempDir(), nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := logger.New(logger.Config{Writer: io.Discard, Environment: "production"})
	return NewCatalogService(st, resolver, &fakeCoverFetcher{}, false, log)
}

func TestLookupAndAdd(t *testing.T) {
	resolver := &fakeResolver{books: map[string]*domain.BookMetadata{
		"9780547928227": hobbitMetadata(),
	}}
	svc := newTestService(t, resolver)
	ctx := context.Background()

	// Hyphenated input normalizes before lookup.
	entry, err := svc.LookupAndAdd(ctx, "978-0-547-92822-7", domain.ShelfLibrary)
	require.NoError(t, err)
	assert.Equal(t, "9780547928227", entry.ISBN)
	assert.Equal(t, "The Hobbit", entry.Title)
	assert.Equal(t, domain.ShelfLibrary, entry.Shelf)
	assert.False(t, entry.ReadFlag)
	assert.NotEmpty(t, entry.CoverImage, "placeholder cover when downloads are disabled")
	assert.NotEmpty(t, entry.CoverBlurHash)

	list, err := svc.List(ctx, domain.ShelfLibrary)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "9780547928227", list[0].ISBN)
}

func TestLookupAndAdd_InvalidISBN(t *testing.T) {
	svc := newTestService(t, &fakeResolver{})

	_, err := svc.LookupAndAdd(context.Background(), "not-an-isbn", domain.ShelfLibrary)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidISBN)
}

func TestLookupAndAdd_Duplicate(t *testing.T) {
	resolver := &fakeResolver{books: map[string]*domain.BookMetadata{
		"9780547928227": hobbitMetadata(),
	}}
	svc := newTestService(t, resolver)
	ctx := context.Background()

	_, err := svc.LookupAndAdd(ctx, "9780547928227", domain.ShelfLibrary)
	require.NoError(t, err)

	// Second add fails regardless of target shelf, without a network call.
	callsBefore := resolver.calls
	_, err = svc.LookupAndAdd(ctx, "9780547928227", domain.ShelfWishlist)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.Equal(t, callsBefore, resolver.calls)
}

func TestLookupAndAdd_NotFound(t *testing.T) {
	svc := newTestService(t, &fakeResolver{books: map[string]*domain.BookMetadata{}})
	ctx := context.Background()

	_, err := svc.LookupAndAdd(ctx, "0000000000", domain.ShelfLibrary)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Store is unchanged.
	list, err := svc.List(ctx, domain.ShelfLibrary)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLookupAndAdd_NetworkError(t *testing.T) {
	svc := newTestService(t, &fakeResolver{err: openlibrary.ErrServer})

	_, err := svc.LookupAndAdd(context.Background(), "9780547928227", domain.ShelfLibrary)
	assert.ErrorIs(t, err, domainerrors.ErrNetwork)
}

func TestAddManual(t *testing.T) {
	svc := newTestService(t, &fakeResolver{})
	ctx := context.Background()

	pages := 208
	entry, err := svc.AddManual(ctx, ManualAddInput{
		ISBN:      "0140328726",
		Title:     "Fantastic Mr Fox",
		Author:    "Roald Dahl",
		Publisher: "Puffin",
		PageCount: &pages,
		Shelf:     "library",
		MarkRead:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fantastic Mr Fox", entry.Title)
	assert.Equal(t, "Roald Dahl", entry.PrimaryAuthor())
	assert.True(t, entry.ReadFlag)
	assert.NotEmpty(t, entry.CoverImage)
}

func TestAddManual_MarkReadIgnoredOnWishlist(t *testing.T) {
	svc := newTestService(t, &fakeResolver{})

	entry, err := svc.AddManual(context.Background(), ManualAddInput{
		ISBN:     "0140328726",
		Title:    "Fantastic Mr Fox",
		Shelf:    "wishlist",
		MarkRead: true,
	})
	require.NoError(t, err)
	assert.False(t, entry.ReadFlag, "read state is a library-only concept")
}

func TestMove(t *testing.T) {
	svc := newTestService(t, &fakeResolver{})
	ctx := context.Background()

	_, err := svc.AddManual(ctx, ManualAddInput{ISBN: "0140328726", Title: "Fantastic Mr Fox", Shelf: "wishlist"})
	require.NoError(t, err)

	moved, err := svc.Move(ctx, "0140328726", domain.ShelfLibrary)
	require.NoError(t, err)
	assert.Equal(t, domain.ShelfLibrary, moved.Shelf)
	assert.False(t, moved.ReadFlag)

	wishlist, err := svc.List(ctx, domain.ShelfWishlist)
	require.NoError(t, err)
	assert.Empty(t, wishlist)

	_, err = svc.Move(ctx, "9780547928227", domain.ShelfLibrary)
	assert.ErrorIs(t, err, domainerrors.ErrNotInCatalog)
}

func TestSetReadFlag(t *testing.T) {
	svc := newTestService(t, &fakeResolver{})
	ctx := context.Background()

	_, err := svc.AddManual(ctx, ManualAddInput{ISBN: "9780547928227", Title: "The Hobbit", Shelf: "library"})
	require.NoError(t, err)

	entry, err := svc.SetReadFlag(ctx, "9780547928227", true)
	require.NoError(t, err)
	assert.True(t, entry.ReadFlag)

	got, err := svc.Get(ctx, "9780547928227")
	require.NoError(t, err)
	assert.True(t, got.ReadFlag)
}

func TestSetReadFlag_WrongShelf(t *testing.T) {
	svc := newTestService(t, &fakeResolver{})
	ctx := context.Background()

	_, err := svc.AddManual(ctx, ManualAddInput{ISBN: "0140328726", Title: "Fantastic Mr Fox", Shelf: "wishlist"})
	require.NoError(t, err)

	_, err = svc.SetReadFlag(ctx, "0140328726", true)
	assert.ErrorIs(t, err, domainerrors.ErrWrongShelf)

	// The failed update leaves the entry untouched.
	got, err := svc.Get(ctx, "0140328726")
	require.NoError(t, err)
	assert.False(t, got.ReadFlag)
}

func TestSetReadFlag_NotInCatalog(t *testing.T) {
	svc := newTestService(t, &fakeResolver{})

	_, err := svc.SetReadFlag(context.Background(), "9780547928227", true)
	assert.ErrorIs(t, err, domainerrors.ErrNotInCatalog)
}

func TestRemove(t *testing.T) {
	svc := newTestService(t, &fakeResolver{})
	ctx := context.Background()

	_, err := svc.AddManual(ctx, ManualAddInput{ISBN: "9780547928227", Title: "The Hobbit", Shelf: "library"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "9780547928227"))
	assert.ErrorIs(t, svc.Remove(ctx, "9780547928227"), domainerrors.ErrNotInCatalog)
}

func TestSearch(t *testing.T) {
	svc := newTestService(t, &fakeResolver{})
	ctx := context.Background()

	_, err := svc.AddManual(ctx, ManualAddInput{ISBN: "9780547928227", Title: "The Hobbit", Author: "J.R.R. Tolkien", Shelf: "library"})
	require.NoError(t, err)
	_, err = svc.AddManual(ctx, ManualAddInput{ISBN: "0140328726", Title: "Fantastic Mr Fox", Author: "Roald Dahl", Shelf: "library"})
	require.NoError(t, err)

	results, err := svc.Search(ctx, domain.ShelfLibrary, "tolk")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "The Hobbit", results[0].Title)

	all, err := svc.Search(ctx, domain.ShelfLibrary, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetCover(t *testing.T) {
	svc := newTestService(t, &fakeResolver{})
	ctx := context.Background()

	_, err := svc.AddManual(ctx, ManualAddInput{ISBN: "9780547928227", Title: "The Hobbit", Shelf: "library"})
	require.NoError(t, err)

	data, err := svc.GetCover(ctx, "9780547928227")
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = svc.GetCover(ctx, "0140328726")
	assert.ErrorIs(t, err, domainerrors.ErrNotInCatalog)
}
