// Package sse implements Server-Sent Events for real-time catalog updates and event broadcasting.
package sse

import (
	"time"

	"github.com/bookwormapp/bookworm-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventBookAdded represents a book being added to a shelf.
	EventBookAdded EventType = "book.added"
	// EventBookMoved represents a book moving between shelves.
	EventBookMoved EventType = "book.moved"
	// EventBookUpdated represents a change to an existing entry, such as the read flag flipping.
	EventBookUpdated EventType = "book.updated"
	// EventBookRemoved represents a book being removed from the catalog.
	EventBookRemoved EventType = "book.removed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`
}

// EntrySummary is the catalog entry view carried in events. Cover bytes are
// deliberately left out; clients fetch covers over HTTP when they need them.
type EntrySummary struct {
	ISBN          string       `json:"isbn"`
	Title         string       `json:"title"`
	Author        string       `json:"author,omitempty"`
	Shelf         domain.Shelf `json:"shelf"`
	ReadFlag      bool         `json:"read_flag"`
	CoverBlurHash string       `json:"cover_blur_hash,omitempty"`
}

// BookEventData is the data payload for book added/moved/updated events.
type BookEventData struct {
	Entry EntrySummary `json:"entry"`
}

// BookMovedEventData is the data payload for book.moved events.
type BookMovedEventData struct {
	Entry EntrySummary `json:"entry"`
	From  domain.Shelf `json:"from"`
}

// BookRemovedEventData is the data payload for book.removed events.
type BookRemovedEventData struct {
	RemovedAt time.Time    `json:"removed_at"`
	ISBN      string       `json:"isbn"`
	Shelf     domain.Shelf `json:"shelf"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

func summarize(entry *domain.CatalogEntry) EntrySummary {
	return EntrySummary{
		ISBN:          entry.ISBN,
		Title:         entry.Title,
		Author:        entry.PrimaryAuthor(),
		Shelf:         entry.Shelf,
		ReadFlag:      entry.ReadFlag,
		CoverBlurHash: entry.CoverBlurHash,
	}
}

// NewBookAddedEvent creates a book.added event.
func NewBookAddedEvent(entry *domain.CatalogEntry) Event {
	return Event{
		Type:      EventBookAdded,
		Data:      BookEventData{Entry: summarize(entry)},
		Timestamp: time.Now(),
	}
}

// NewBookMovedEvent creates a book.moved event.
func NewBookMovedEvent(entry *domain.CatalogEntry, from domain.Shelf) Event {
	return Event{
		Type: EventBookMoved,
		Data: BookMovedEventData{
			Entry: summarize(entry),
			From:  from,
		},
		Timestamp: time.Now(),
	}
}

// NewBookUpdatedEvent creates a book.updated event.
func NewBookUpdatedEvent(entry *domain.CatalogEntry) Event {
	return Event{
		Type:      EventBookUpdated,
		Data:      BookEventData{Entry: summarize(entry)},
		Timestamp: time.Now(),
	}
}

// NewBookRemovedEvent creates a book.removed event.
func NewBookRemovedEvent(isbn string, shelf domain.Shelf, removedAt time.Time) Event {
	return Event{
		Type: EventBookRemoved,
		Data: BookRemovedEventData{
			ISBN:      isbn,
			Shelf:     shelf,
			RemovedAt: removedAt,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}
