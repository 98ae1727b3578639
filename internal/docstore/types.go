// Package docstore is the document-store client used by quotegen: an ordered,
// append-only collection of generation records plus a singleton stats
// document, both of which can be watched for live changes.
package docstore

import (
	"context"
	"errors"
	"time"
)

// Collection and document names, kept from the hosted store the service
// replaced so exported data stays recognisable.
const (
	CollectionHistory = "generation_history"
	CollectionStats   = "site_stats"

	// StatsGeneral is the singleton stats document holding the visitor count.
	StatsGeneral = "general"
)

var (
	// ErrCursorNotFound is returned when a page cursor names a record that
	// does not exist in the history collection.
	ErrCursorNotFound = errors.New("docstore: cursor record not found")

	// ErrInvalidLimit is returned for non-positive query limits.
	ErrInvalidLimit = errors.New("docstore: limit must be positive")
)

// Record is one quote generation. Records are immutable once written.
type Record struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Language  string    `json:"language"`
	Tone      string    `json:"tone"`
	Quote     string    `json:"quote"`
	Timestamp time.Time `json:"timestamp"`
}

// Cursor marks the last record of a previously returned page. The zero
// value starts from the newest record. A cursor is only meaningful for the
// timestamp-descending order it was produced from.
type Cursor string

// CursorFor returns the cursor positioned after r.
func CursorFor(r Record) Cursor { return Cursor(r.ID) }

// IsZero reports whether c starts from the top of the collection.
func (c Cursor) IsZero() bool { return c == "" }

// Stats is the shared site counter document.
type Stats struct {
	ID           string `json:"id"`
	VisitorCount int64  `json:"visitor_count"`
	Exists       bool   `json:"exists"`
}

// Store is the narrow contract the pager, trending feed and visitor counter
// are written against. History is ordered by timestamp descending with ties
// broken by id descending.
type Store interface {
	// QueryDescending returns up to limit records strictly after the cursor.
	QueryDescending(ctx context.Context, limit int, after Cursor) ([]Record, error)
	// AddRecord writes a single record, assigning an ID when empty.
	AddRecord(ctx context.Context, r Record) (Record, error)
	// Increment atomically adds delta to the visitor count of docID.
	Increment(ctx context.Context, docID string, delta int64) error
	// Stats reads the stats document docID.
	Stats(ctx context.Context, docID string) (Stats, error)
	// WatchRecent delivers the newest limit records now and after every write.
	WatchRecent(limit int, fn func([]Record), opts ...WatchOption) *Subscription
	// WatchStats delivers docID now and after every increment.
	WatchStats(docID string, fn func(Stats), opts ...WatchOption) *Subscription
}

// statsTopic is the broker topic for a single stats document.
func statsTopic(docID string) string {
	return CollectionStats + "/" + docID
}

var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
)
