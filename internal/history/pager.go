// Package history pages through generation records newest first and keeps
// the accumulated view shown behind the admin gate.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ziadkadry99/quotegen/internal/docstore"
)

// DefaultPageSize is the number of records fetched per page.
const DefaultPageSize = 12

var (
	// ErrBusy is returned when a load is requested while another is in flight.
	ErrBusy = errors.New("history: load already in progress")

	// ErrNotDisplayed is returned for exports of records the pager does not hold.
	ErrNotDisplayed = errors.New("history: record not displayed")
)

// Source is the part of the document store the pager reads from.
type Source interface {
	QueryDescending(ctx context.Context, limit int, after docstore.Cursor) ([]docstore.Record, error)
}

// Page is the result of a single load.
type Page struct {
	Records []docstore.Record `json:"records"`
	HasMore bool              `json:"has_more"`
}

// Fetch loads up to n records after the cursor. It returns the page, the
// cursor for the following page and whether a full page came back. A short
// page is taken to mean the end of history; when the total is an exact
// multiple of n one extra empty fetch is needed to find that out.
func Fetch(ctx context.Context, src Source, n int, after docstore.Cursor) ([]docstore.Record, docstore.Cursor, bool, error) {
	records, err := src.QueryDescending(ctx, n, after)
	if err != nil {
		return nil, after, false, err
	}
	if len(records) == 0 {
		return nil, after, false, nil
	}
	next := docstore.CursorFor(records[len(records)-1])
	return records, next, len(records) == n, nil
}

// Pager accumulates history pages. It is safe for concurrent use; at most
// one load runs at a time and overlapping requests get ErrBusy.
type Pager struct {
	src      Source
	pageSize int

	mu      sync.Mutex
	records []docstore.Record
	cursor  docstore.Cursor
	hasMore bool
	loading bool
	// epoch is bumped by LoadInitial and Reset so that a LoadMore started
	// before them drops its result.
	epoch uint64
}

// NewPager creates a pager reading pageSize records per load. A
// non-positive pageSize uses DefaultPageSize.
func NewPager(src Source, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{src: src, pageSize: pageSize}
}

// PageSize returns the number of records fetched per load.
func (p *Pager) PageSize() int { return p.pageSize }

// LoadInitial replaces the accumulated state with the newest page. It takes
// precedence over an in-flight LoadMore, whose result is discarded.
func (p *Pager) LoadInitial(ctx context.Context) (Page, error) {
	p.mu.Lock()
	p.epoch++
	epoch := p.epoch
	p.loading = true
	p.mu.Unlock()

	records, next, more, err := Fetch(ctx, p.src, p.pageSize, "")

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.epoch != epoch {
		// A later LoadInitial or Reset owns the state now.
		return Page{}, ErrBusy
	}
	p.loading = false
	if err != nil {
		return Page{}, fmt.Errorf("loading history: %w", err)
	}

	p.records = append([]docstore.Record(nil), records...)
	p.cursor = next
	p.hasMore = more
	return Page{Records: records, HasMore: more}, nil
}

// LoadMore appends the page following the current cursor. It does nothing
// when the previous page was short. On failure the accumulated records,
// cursor and HasMore are left as they were.
func (p *Pager) LoadMore(ctx context.Context) (Page, error) {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return Page{}, ErrBusy
	}
	if !p.hasMore {
		p.mu.Unlock()
		return Page{}, nil
	}
	p.loading = true
	epoch := p.epoch
	cursor := p.cursor
	p.mu.Unlock()

	records, next, more, err := Fetch(ctx, p.src, p.pageSize, cursor)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.epoch != epoch {
		return Page{}, ErrBusy
	}
	p.loading = false
	if err != nil {
		return Page{}, fmt.Errorf("loading more history: %w", err)
	}

	p.records = append(p.records, records...)
	p.cursor = next
	p.hasMore = more
	return Page{Records: records, HasMore: more}, nil
}

// Reset discards the accumulated records. Loads in flight are abandoned.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.epoch++
	p.records = nil
	p.cursor = ""
	p.hasMore = false
	p.loading = false
}

// Records returns a copy of the accumulated records, newest first.
func (p *Pager) Records() []docstore.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]docstore.Record(nil), p.records...)
}

// HasMore reports whether another page may exist.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Loading reports whether a load is in flight.
func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Record returns the displayed record with the given id.
func (p *Pager) Record(id string) (docstore.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.records {
		if r.ID == id {
			return r, nil
		}
	}
	return docstore.Record{}, fmt.Errorf("%w: %s", ErrNotDisplayed, id)
}

// Text returns the copy payload of a displayed record: the full quote.
func (p *Pager) Text(id string) (string, error) {
	r, err := p.Record(id)
	if err != nil {
		return "", err
	}
	return r.Quote, nil
}
