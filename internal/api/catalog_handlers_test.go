package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwormapp/bookworm-server/internal/domain"
	"github.com/bookwormapp/bookworm-server/internal/logger"
	"github.com/bookwormapp/bookworm-server/internal/metadata/openlibrary"
	"github.com/bookwormapp/bookworm-server/internal/service"
	"github.com/bookwormapp/bookworm-server/internal/sse"
	"github.com/bookwormapp/bookworm-server/internal/store"
)

type stubResolver struct {
	books map[string]*domain.BookMetadata
}

func (r *stubResolver) Resolve(_ context.Context, isbn string) (*domain.BookMetadata, error) {
	meta, ok := r.books[isbn]
	if !ok {
		return nil, &openlibrary.Error{Op: "resolve", ISBN: isbn, Err: openlibrary.ErrNotFound}
	}
	return meta, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	log := logger.New(logger.Config{Writer: io.Discard, Environment: "production"})

	st, err := store.New(t.TempDir(), nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	pages := 366
	resolver := &stubResolver{books: map[string]*domain.BookMetadata{
		"9780547928227": {
			ISBN:      "9780547928227",
			Title:     "The Hobbit",
			Authors:   []domain.Author{{Name: "J.R.R. Tolkien"}},
			PageCount: &pages,
		},
	}}

	svc := service.NewCatalogService(st, resolver, nil, false, log)
	sseHandler := sse.NewHandler(sse.NewManager(log.Logger), log.Logger)

	return NewServer(svc, sseHandler, log.Logger)
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLookupAndAddEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/catalog/books", map[string]string{
		"isbn":  "978-0-547-92822-7",
		"shelf": "library",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "9780547928227", data["isbn"])
	assert.Equal(t, "The Hobbit", data["title"])
	assert.Equal(t, "library", data["shelf"])
	assert.Equal(t, false, data["read_flag"])
	assert.Equal(t, "/api/v1/catalog/books/9780547928227/cover", data["cover_url"])

	// Duplicate add conflicts.
	rec = doRequest(t, s, http.MethodPost, "/api/v1/catalog/books", map[string]string{
		"isbn":  "9780547928227",
		"shelf": "wishlist",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeEnvelope(t, rec)["code"])
}

func TestLookupAndAddEndpoint_Errors(t *testing.T) {
	s := newTestServer(t)

	// Missing fields fail validation.
	rec := doRequest(t, s, http.MethodPost, "/api/v1/catalog/books", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed ISBN.
	rec = doRequest(t, s, http.MethodPost, "/api/v1/catalog/books", map[string]string{
		"isbn":  "abc",
		"shelf": "library",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ISBN", decodeEnvelope(t, rec)["code"])

	// Unknown ISBN resolves to 404 and leaves the catalog unchanged.
	rec = doRequest(t, s, http.MethodPost, "/api/v1/catalog/books", map[string]string{
		"isbn":  "0000000000",
		"shelf": "library",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/catalog/shelves/library/books", nil)
	envelope := decodeEnvelope(t, rec)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, float64(0), data["total"])
}

func TestAddManualEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/catalog/books/manual", map[string]any{
		"isbn":      "0140328726",
		"title":     "Fantastic Mr Fox",
		"author":    "Roald Dahl",
		"shelf":     "library",
		"mark_read": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Fantastic Mr Fox", data["title"])
	assert.Equal(t, true, data["read_flag"])
}

func TestAddManualEndpoint_ValidationFailure(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/catalog/books/manual", map[string]any{
		"isbn":  "0140328726",
		"shelf": "attic",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "VALIDATION", envelope["code"])
	details := envelope["details"].(map[string]any)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "shelf")
}

func TestGetAndRemoveBook(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/catalog/books", map[string]string{
		"isbn":  "9780547928227",
		"shelf": "library",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/catalog/books/9780547928227", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/catalog/books/9780547928227", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/catalog/books/9780547928227", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_IN_CATALOG", decodeEnvelope(t, rec)["code"])
}

func TestMoveEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/catalog/books/manual", map[string]any{
		"isbn":  "0140328726",
		"title": "Fantastic Mr Fox",
		"shelf": "wishlist",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/api/v1/catalog/books/0140328726/move", map[string]string{
		"shelf": "library",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, "library", data["shelf"])
	assert.Equal(t, false, data["read_flag"])

	// Source shelf is empty now.
	rec = doRequest(t, s, http.MethodGet, "/api/v1/catalog/shelves/wishlist/books", nil)
	shelfData := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(0), shelfData["total"])
}

func TestReadFlagEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/catalog/books/manual", map[string]any{
		"isbn":  "9780547928227",
		"title": "The Hobbit",
		"shelf": "library",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPatch, "/api/v1/catalog/books/9780547928227/read", map[string]bool{
		"read": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, true, data["read_flag"])
}

func TestReadFlagEndpoint_WrongShelf(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/catalog/books/manual", map[string]any{
		"isbn":  "0140328726",
		"title": "Fantastic Mr Fox",
		"shelf": "wishlist",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodPatch, "/api/v1/catalog/books/0140328726/read", map[string]bool{
		"read": true,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "WRONG_SHELF", decodeEnvelope(t, rec)["code"])
}

func TestListShelfEndpoint_Search(t *testing.T) {
	s := newTestServer(t)

	for _, book := range []map[string]any{
		{"isbn": "9780547928227", "title": "The Hobbit", "author": "J.R.R. Tolkien", "shelf": "library"},
		{"isbn": "0140328726", "title": "Fantastic Mr Fox", "author": "Roald Dahl", "shelf": "library"},
	} {
		rec := doRequest(t, s, http.MethodPost, "/api/v1/catalog/books/manual", book)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/catalog/shelves/library/books?query=tolk", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total"])
	books := data["books"].([]any)
	assert.Equal(t, "The Hobbit", books[0].(map[string]any)["title"])

	// Insertion order without a query.
	rec = doRequest(t, s, http.MethodGet, "/api/v1/catalog/shelves/library/books", nil)
	data = decodeEnvelope(t, rec)["data"].(map[string]any)
	books = data["books"].([]any)
	require.Len(t, books, 2)
	assert.Equal(t, "9780547928227", books[0].(map[string]any)["isbn"])

	// Unknown shelf names reject.
	rec = doRequest(t, s, http.MethodGet, "/api/v1/catalog/shelves/attic/books", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCoverEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/catalog/books/manual", map[string]any{
		"isbn":  "9780547928227",
		"title": "The Hobbit",
		"shelf": "library",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/v1/catalog/books/9780547928227/cover", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}
