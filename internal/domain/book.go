// Package domain contains the core business entities for the Bookworm catalog.
package domain

// Author is a contributor as reported by the lookup service.
// URL points at the author's Open Library profile page when known.
type Author struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// CoverRef holds cover image URLs in the sizes the lookup service offers.
// Any subset may be empty.
type CoverRef struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
}

// BestURL returns the largest available cover URL, or "" if none.
func (c *CoverRef) BestURL() string {
	if c == nil {
		return ""
	}
	for _, u := range []string{c.Large, c.Medium, c.Small} {
		if u != "" {
			return u
		}
	}
	return ""
}

// BookMetadata is the canonical result of resolving an ISBN.
// Title is the only required field; everything else is best-effort because the
// lookup service returns loosely populated records.
type BookMetadata struct {
	ISBN         string    `json:"isbn"`
	Title        string    `json:"title"`
	Authors      []Author  `json:"authors"`
	Publisher    string    `json:"publisher,omitempty"`
	PublishDate  string    `json:"publish_date,omitempty"` // free-form, as supplied by the source
	PageCount    *int      `json:"page_count,omitempty"`
	Cover        *CoverRef `json:"cover,omitempty"`
	EbookFormats []string  `json:"ebook_formats,omitempty"` // informational only
}

// PrimaryAuthor returns the display author name, or "" when no authors are known.
func (m *BookMetadata) PrimaryAuthor() string {
	if len(m.Authors) == 0 {
		return ""
	}
	return m.Authors[0].Name
}
