// Package service contains the business logic orchestrating the catalog.
package service

import (
	"context"
	"sync"

	"github.com/bookwormapp/bookworm-server/internal/domain"
	domainerrors "github.com/bookwormapp/bookworm-server/internal/errors"
	"github.com/bookwormapp/bookworm-server/internal/isbn"
	"github.com/bookwormapp/bookworm-server/internal/logger"
	"github.com/bookwormapp/bookworm-server/internal/media/covers"
	"github.com/bookwormapp/bookworm-server/internal/metadata/openlibrary"
	"github.com/bookwormapp/bookworm-server/internal/store"
)

// MetadataResolver resolves a normalized ISBN into book metadata.
type MetadataResolver interface {
	Resolve(ctx context.Context, isbn string) (*domain.BookMetadata, error)
}

// CoverFetcher downloads a cover image from the lookup service's cover host.
type CoverFetcher interface {
	Download(ctx context.Context, isbn, url string) (*covers.DownloadResult, error)
}

// CatalogService orchestrates ISBN resolution, dedup, shelf moves, read-flag
// changes, and search over the two-shelf catalog.
type CatalogService struct {
	store         *store.Store
	resolver      MetadataResolver
	coverFetcher  CoverFetcher
	coversEnabled bool
	logger        *logger.Logger

	// inflight serializes lookupAndAdd per ISBN so two concurrent scans of the
	// same barcode produce one network round trip and one entry.
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	st *store.Store,
	resolver MetadataResolver,
	coverFetcher CoverFetcher,
	coversEnabled bool,
	log *logger.Logger,
) *CatalogService {
	return &CatalogService{
		store:         st,
		resolver:      resolver,
		coverFetcher:  coverFetcher,
		coversEnabled: coversEnabled,
		logger:        log,
		inflight:      make(map[string]struct{}),
	}
}

// ManualAddInput carries user-entered book details for addManual.
type ManualAddInput struct {
	ISBN        string `json:"isbn" validate:"required"`
	Title       string `json:"title" validate:"required,min=1"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	PublishDate string `json:"publish_date"`
	PageCount   *int   `json:"page_count"`
	Shelf       string `json:"shelf" validate:"required,oneof=library wishlist"`
	MarkRead    bool   `json:"mark_read"`
}

// LookupAndAdd resolves the ISBN against the lookup service and adds the
// result to the given shelf. The dedup check and insert are atomic in the
// store; the pre-check here exists only to fail fast before the network call.
func (s *CatalogService) LookupAndAdd(ctx context.Context, rawISBN string, shelf domain.Shelf) (*domain.CatalogEntry, error) {
	normalized, err := isbn.Normalize(rawISBN)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Catalog.Contains(ctx, normalized)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodePersistence, "failed to check catalog")
	}
	if exists {
		return nil, domainerrors.AlreadyExistsf("ISBN %s is already in the catalog", normalized)
	}

	if !s.beginLookup(normalized) {
		return nil, domainerrors.AlreadyExistsf("a lookup for ISBN %s is already in progress", normalized)
	}
	defer s.endLookup(normalized)

	meta, err := s.resolver.Resolve(ctx, normalized)
	if err != nil {
		return nil, mapResolveError(normalized, err)
	}

	entry := &domain.CatalogEntry{
		BookMetadata: *meta,
		Shelf:        shelf,
	}
	s.attachCover(ctx, entry)

	if err := s.addEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("book added via lookup",
		"isbn", normalized,
		"title", entry.Title,
		"shelf", shelf,
	)
	return entry, nil
}

// AddManual adds a book from user-entered details, bypassing the lookup
// service. MarkRead only sticks when the destination is the library shelf.
func (s *CatalogService) AddManual(ctx context.Context, input ManualAddInput) (*domain.CatalogEntry, error) {
	normalized, err := isbn.Normalize(input.ISBN)
	if err != nil {
		return nil, err
	}

	shelf, err := domain.ParseShelf(input.Shelf)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	var authors []domain.Author
	if input.Author != "" {
		authors = []domain.Author{{Name: input.Author}}
	}

	entry := &domain.CatalogEntry{
		BookMetadata: domain.BookMetadata{
			ISBN:        normalized,
			Title:       input.Title,
			Authors:     authors,
			Publisher:   input.Publisher,
			PublishDate: input.PublishDate,
			PageCount:   input.PageCount,
		},
		Shelf:    shelf,
		ReadFlag: input.MarkRead && shelf == domain.ShelfLibrary,
	}
	s.attachCover(ctx, entry)

	if err := s.addEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("book added manually",
		"isbn", normalized,
		"title", entry.Title,
		"shelf", shelf,
	)
	return entry, nil
}

// Get returns the catalog entry for the ISBN, wherever it is shelved.
func (s *CatalogService) Get(ctx context.Context, rawISBN string) (*domain.CatalogEntry, error) {
	normalized, err := isbn.Normalize(rawISBN)
	if err != nil {
		return nil, err
	}

	entry, err := s.store.Catalog.Get(ctx, normalized)
	if err != nil {
		return nil, mapStoreError(normalized, err)
	}
	return entry, nil
}

// GetCover returns the stored cover bytes for the ISBN.
func (s *CatalogService) GetCover(ctx context.Context, rawISBN string) ([]byte, error) {
	entry, err := s.Get(ctx, rawISBN)
	if err != nil {
		return nil, err
	}
	if len(entry.CoverImage) == 0 {
		return nil, domainerrors.NotFoundf("no cover stored for ISBN %s", entry.ISBN)
	}
	return entry.CoverImage, nil
}

// Move re-shelves an entry atomically. Works in either direction.
func (s *CatalogService) Move(ctx context.Context, rawISBN string, to domain.Shelf) (*domain.CatalogEntry, error) {
	normalized, err := isbn.Normalize(rawISBN)
	if err != nil {
		return nil, err
	}

	entry, err := s.store.Catalog.Move(ctx, normalized, to)
	if err != nil {
		return nil, mapStoreError(normalized, err)
	}

	s.logger.Info("book moved", "isbn", normalized, "shelf", to)
	return entry, nil
}

// SetReadFlag flips the read marker on a library entry.
// Fails with a wrong-shelf error for wishlist entries, where read state is
// not a meaningful concept.
func (s *CatalogService) SetReadFlag(ctx context.Context, rawISBN string, read bool) (*domain.CatalogEntry, error) {
	normalized, err := isbn.Normalize(rawISBN)
	if err != nil {
		return nil, err
	}

	entry, err := s.store.Catalog.Update(ctx, normalized, func(e *domain.CatalogEntry) error {
		if e.Shelf != domain.ShelfLibrary {
			return domainerrors.WrongShelf("read state only applies to library books")
		}
		e.ReadFlag = read
		return nil
	})
	if err != nil {
		return nil, mapStoreError(normalized, err)
	}

	s.logger.Info("read flag changed", "isbn", normalized, "read", read)
	return entry, nil
}

// Remove deletes an entry from whichever shelf holds it.
func (s *CatalogService) Remove(ctx context.Context, rawISBN string) error {
	normalized, err := isbn.Normalize(rawISBN)
	if err != nil {
		return err
	}

	if _, err := s.store.Catalog.Remove(ctx, normalized); err != nil {
		return mapStoreError(normalized, err)
	}

	s.logger.Info("book removed", "isbn", normalized)
	return nil
}

// List returns the shelf's entries in insertion order.
func (s *CatalogService) List(ctx context.Context, shelf domain.Shelf) ([]*domain.CatalogEntry, error) {
	entries, err := s.store.Catalog.List(ctx, shelf)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodePersistence, "failed to list shelf")
	}
	return entries, nil
}

// Search filters the shelf by a case-insensitive substring query on title or
// author name. An empty query returns the full shelf listing.
func (s *CatalogService) Search(ctx context.Context, shelf domain.Shelf, query string) ([]*domain.CatalogEntry, error) {
	entries, err := s.store.Catalog.Search(ctx, shelf, query)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodePersistence, "failed to search shelf")
	}
	return entries, nil
}

// addEntry persists the entry, mapping store sentinels to domain errors.
func (s *CatalogService) addEntry(ctx context.Context, entry *domain.CatalogEntry) error {
	if err := s.store.Catalog.Add(ctx, entry); err != nil {
		if domainerrors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.AlreadyExistsf("ISBN %s is already in the catalog", entry.ISBN)
		}
		return domainerrors.Wrap(err, domainerrors.CodePersistence, "failed to add entry")
	}
	return nil
}

// attachCover fills CoverImage and CoverBlurHash, downloading the real cover
// when available and falling back to a generated placeholder. Cover handling
// is best-effort and never fails the add.
func (s *CatalogService) attachCover(ctx context.Context, entry *domain.CatalogEntry) {
	if s.coversEnabled && s.coverFetcher != nil {
		if url := entry.Cover.BestURL(); url != "" {
			result, err := s.coverFetcher.Download(ctx, entry.ISBN, url)
			if err == nil {
				entry.CoverImage = result.Data
				if hash, err := covers.ComputeBlurHash(result.Data); err == nil {
					entry.CoverBlurHash = hash
				}
				return
			}
			s.logger.Warn("cover download failed, using placeholder",
				"isbn", entry.ISBN,
				"url", url,
				"error", err,
			)
		}
	}

	placeholder, err := covers.GeneratePlaceholder(entry.ISBN)
	if err != nil {
		s.logger.Warn("failed to generate cover placeholder", "isbn", entry.ISBN, "error", err)
		return
	}
	entry.CoverImage = placeholder
	if hash, err := covers.ComputeBlurHash(placeholder); err == nil {
		entry.CoverBlurHash = hash
	}
}

// beginLookup marks the ISBN as having a lookup in flight.
// Returns false if one is already running.
func (s *CatalogService) beginLookup(isbn string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[isbn]; busy {
		return false
	}
	s.inflight[isbn] = struct{}{}
	return true
}

func (s *CatalogService) endLookup(isbn string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, isbn)
}

// mapResolveError converts lookup client errors to domain errors.
func mapResolveError(isbn string, err error) error {
	switch {
	case domainerrors.Is(err, openlibrary.ErrNotFound):
		return domainerrors.NotFoundf("no record found for ISBN %s", isbn)
	case domainerrors.Is(err, openlibrary.ErrRateLimited),
		domainerrors.Is(err, openlibrary.ErrServer),
		domainerrors.Is(err, context.DeadlineExceeded):
		return domainerrors.ErrNetwork.WithCause(err)
	default:
		// Transport failures (DNS, refused connections, timeouts) land here.
		return domainerrors.Network("lookup service unreachable").WithCause(err)
	}
}

// mapStoreError converts store sentinels to domain errors.
func mapStoreError(isbn string, err error) error {
	switch {
	case domainerrors.Is(err, store.ErrNotFound):
		return domainerrors.NotInCatalogf("ISBN %s is not in the catalog", isbn)
	case domainerrors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExistsf("ISBN %s is already in the catalog", isbn)
	default:
		var derr *domainerrors.Error
		if domainerrors.As(err, &derr) {
			return derr
		}
		return domainerrors.Wrap(err, domainerrors.CodePersistence, "catalog operation failed")
	}
}
