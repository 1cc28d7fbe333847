package api

import (
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bookwormapp/bookworm-server/internal/domain"
	domainerrors "github.com/bookwormapp/bookworm-server/internal/errors"
	"github.com/bookwormapp/bookworm-server/internal/http/response"
	"github.com/bookwormapp/bookworm-server/internal/service"
)

// === DTOs ===

// LookupAndAddRequest is the request body for adding a book by ISBN lookup.
type LookupAndAddRequest struct {
	ISBN  string `json:"isbn" validate:"required"`
	Shelf string `json:"shelf" validate:"required,oneof=library wishlist"`
}

// MoveRequest is the request body for moving a book between shelves.
type MoveRequest struct {
	Shelf string `json:"shelf" validate:"required,oneof=library wishlist"`
}

// ReadFlagRequest is the request body for flipping the read marker.
type ReadFlagRequest struct {
	Read bool `json:"read"`
}

// BookResponse is the catalog entry view returned by the API.
// Cover bytes are not inlined; CoverURL points at the cover endpoint.
type BookResponse struct {
	ISBN          string          `json:"isbn"`
	Title         string          `json:"title"`
	Authors       []domain.Author `json:"authors"`
	Publisher     string          `json:"publisher,omitempty"`
	PublishDate   string          `json:"publish_date,omitempty"`
	PageCount     *int            `json:"page_count,omitempty"`
	EbookFormats  []string        `json:"ebook_formats,omitempty"`
	Shelf         domain.Shelf    `json:"shelf"`
	ReadFlag      bool            `json:"read_flag"`
	CoverURL      string          `json:"cover_url,omitempty"`
	CoverBlurHash string          `json:"cover_blur_hash,omitempty"`
	AddedAt       time.Time       `json:"added_at"`
}

// ShelfResponse is a shelf listing in insertion order.
type ShelfResponse struct {
	Shelf domain.Shelf   `json:"shelf"`
	Books []BookResponse `json:"books"`
	Total int            `json:"total"`
}

// === Handlers ===

// handleLookupAndAdd resolves an ISBN against the lookup service and files the
// result on the requested shelf.
func (s *Server) handleLookupAndAdd(w http.ResponseWriter, r *http.Request) {
	var req LookupAndAddRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}
	if details := s.validator.Struct(req); details != nil {
		response.HandleError(w, domainerrors.ValidationWithDetails("validation failed", details), s.logger)
		return
	}

	shelf, err := domain.ParseShelf(req.Shelf)
	if err != nil {
		response.BadRequest(w, err.Error(), s.logger)
		return
	}

	entry, err := s.catalogService.LookupAndAdd(r.Context(), req.ISBN, shelf)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, mapBookResponse(entry), s.logger)
}

// handleAddManual files a user-entered book without consulting the lookup
// service.
func (s *Server) handleAddManual(w http.ResponseWriter, r *http.Request) {
	var req service.ManualAddInput
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}
	if details := s.validator.Struct(req); details != nil {
		response.HandleError(w, domainerrors.ValidationWithDetails("validation failed", details), s.logger)
		return
	}

	entry, err := s.catalogService.AddManual(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, mapBookResponse(entry), s.logger)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	entry, err := s.catalogService.Get(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, mapBookResponse(entry), s.logger)
}

func (s *Server) handleRemoveBook(w http.ResponseWriter, r *http.Request) {
	if err := s.catalogService.Remove(r.Context(), chi.URLParam(r, "isbn")); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

func (s *Server) handleMoveBook(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	shelf, err := domain.ParseShelf(req.Shelf)
	if err != nil {
		response.BadRequest(w, err.Error(), s.logger)
		return
	}

	entry, err := s.catalogService.Move(r.Context(), chi.URLParam(r, "isbn"), shelf)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, mapBookResponse(entry), s.logger)
}

func (s *Server) handleSetReadFlag(w http.ResponseWriter, r *http.Request) {
	var req ReadFlagRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "invalid request body", s.logger)
		return
	}

	entry, err := s.catalogService.SetReadFlag(r.Context(), chi.URLParam(r, "isbn"), req.Read)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, mapBookResponse(entry), s.logger)
}

// handleGetCover streams the stored cover image.
func (s *Server) handleGetCover(w http.ResponseWriter, r *http.Request) {
	data, err := s.catalogService.GetCover(r.Context(), chi.URLParam(r, "isbn"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write cover response", "error", err)
	}
}

// handleListShelf lists a shelf, optionally filtered by a substring query on
// title or author name.
func (s *Server) handleListShelf(w http.ResponseWriter, r *http.Request) {
	shelf, err := domain.ParseShelf(chi.URLParam(r, "shelf"))
	if err != nil {
		response.BadRequest(w, err.Error(), s.logger)
		return
	}

	entries, err := s.catalogService.Search(r.Context(), shelf, r.URL.Query().Get("query"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	books := make([]BookResponse, len(entries))
	for i, entry := range entries {
		books[i] = mapBookResponse(entry)
	}

	response.Success(w, ShelfResponse{
		Shelf: shelf,
		Books: books,
		Total: len(books),
	}, s.logger)
}

// === Mappers ===

// mapBookResponse converts a catalog entry to an API response.
func mapBookResponse(entry *domain.CatalogEntry) BookResponse {
	resp := BookResponse{
		ISBN:          entry.ISBN,
		Title:         entry.Title,
		Authors:       entry.Authors,
		Publisher:     entry.Publisher,
		PublishDate:   entry.PublishDate,
		PageCount:     entry.PageCount,
		EbookFormats:  entry.EbookFormats,
		Shelf:         entry.Shelf,
		ReadFlag:      entry.ReadFlag,
		CoverBlurHash: entry.CoverBlurHash,
		AddedAt:       entry.AddedAt,
	}
	if resp.Authors == nil {
		resp.Authors = []domain.Author{}
	}
	if len(entry.CoverImage) > 0 {
		resp.CoverURL = "/api/v1/catalog/books/" + entry.ISBN + "/cover"
	}
	return resp
}
