package openlibrary

// Raw API response types (internal).
//
// The books API is loose: nearly every field can be absent, and clients must
// tolerate records that carry only a title. Everything here is optional except
// where noted in mapping.

type rawRecord struct {
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle"`
	Authors       []rawAuthor    `json:"authors"`
	Publishers    []rawPublisher `json:"publishers"`
	PublishDate   string         `json:"publish_date"`
	NumberOfPages *int           `json:"number_of_pages"`
	Cover         *rawCover      `json:"cover"`
	Identifiers   rawIdentifiers `json:"identifiers"`
	Ebooks        []rawEbook     `json:"ebooks"`
	URL           string         `json:"url"`
}

type rawAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type rawPublisher struct {
	Name string `json:"name"`
}

type rawCover struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

type rawIdentifiers struct {
	ISBN10 []string `json:"isbn_10"`
	ISBN13 []string `json:"isbn_13"`
}

type rawEbook struct {
	Formats      []string `json:"formats"`
	Availability string   `json:"availability"`
}
