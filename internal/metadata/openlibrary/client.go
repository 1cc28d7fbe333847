// Package openlibrary implements a rate-limited client for the Open Library
// books API, used to resolve ISBNs into book metadata.
package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bookwormapp/bookworm-server/internal/domain"
	"github.com/bookwormapp/bookworm-server/internal/ratelimit"
)

const (
	defaultBaseURL = "https://openlibrary.org"

	// Rate limit: 1 request per second, burst of 3.
	defaultRPS   = 1.0
	defaultBurst = 3

	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "Bookworm/1.0"

	// limiterKey partitions the shared rate limiter; the books API is a single
	// upstream so one bucket suffices.
	limiterKey = "books"
)

// Client is a rate-limited Open Library API client.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *ratelimit.KeyedRateLimiter
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithRateLimit overrides the outbound request rate.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = ratelimit.NewKeyed(rps, burst)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new Open Library client.
func New(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		userAgent: defaultUserAgent,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: ratelimit.NewKeyed(defaultRPS, defaultBurst),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve looks up a normalized ISBN and returns its metadata.
// Returns ErrNotFound (wrapped) when the service has no record for the ISBN
// or the record carries no title.
func (c *Client) Resolve(ctx context.Context, isbn string) (*domain.BookMetadata, error) {
	bibkey := fmt.Sprintf("ISBN:%s", isbn)

	query := url.Values{}
	query.Set("bibkeys", bibkey)
	query.Set("format", "json")
	query.Set("jscmd", "data")

	body, err := c.doRequest(ctx, "/api/books", query)
	if err != nil {
		return nil, wrapError("resolve", isbn, err)
	}

	// The response is keyed by bibkey; a missing key means no record.
	var resp map[string]rawRecord
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("resolve", isbn, fmt.Errorf("parse response: %w", err))
	}

	record, ok := resp[bibkey]
	if !ok {
		return nil, wrapError("resolve", isbn, ErrNotFound)
	}
	// Records without a title are unusable; treat them as misses.
	if record.Title == "" {
		return nil, wrapError("resolve", isbn, ErrNotFound)
	}

	return rawRecordToMetadata(isbn, &record), nil
}

// doRequest executes an HTTP request with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	fullURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("openlibrary request", "path", path, "bibkeys", query.Get("bibkeys"))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		if resp.StatusCode >= 500 {
			return nil, ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}

// rawRecordToMetadata converts a raw API record to BookMetadata.
func rawRecordToMetadata(isbn string, r *rawRecord) *domain.BookMetadata {
	var authors []domain.Author
	for _, a := range r.Authors {
		if a.Name == "" {
			continue
		}
		authors = append(authors, domain.Author{
			Name: a.Name,
			URL:  a.URL,
		})
	}

	var publisher string
	if len(r.Publishers) > 0 {
		publisher = r.Publishers[0].Name
	}

	var cover *domain.CoverRef
	if r.Cover != nil {
		cover = &domain.CoverRef{
			Small:  r.Cover.Small,
			Medium: r.Cover.Medium,
			Large:  r.Cover.Large,
		}
	}

	var formats []string
	seen := make(map[string]bool)
	for _, e := range r.Ebooks {
		for _, f := range e.Formats {
			if f != "" && !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}

	return &domain.BookMetadata{
		ISBN:         isbn,
		Title:        r.Title,
		Authors:      authors,
		Publisher:    publisher,
		PublishDate:  r.PublishDate,
		PageCount:    r.NumberOfPages,
		Cover:        cover,
		EbookFormats: formats,
	}
}
