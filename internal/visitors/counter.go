// Package visitors counts distinct browser sessions in the shared site
// stats document and exposes the live total.
package visitors

import (
	"context"
	"log"

	"github.com/ziadkadry99/quotegen/internal/docstore"
)

// Store is the part of the document store the counter uses.
type Store interface {
	Increment(ctx context.Context, docID string, delta int64) error
	WatchStats(docID string, fn func(docstore.Stats), opts ...docstore.WatchOption) *docstore.Subscription
}

// Counter increments the visitor total once per session.
type Counter struct {
	store Store
	flags Flags
	docID string
}

// NewCounter creates a counter on the general stats document.
func NewCounter(store Store, flags Flags) *Counter {
	return &Counter{store: store, flags: flags, docID: docstore.StatsGeneral}
}

// Activate counts session if it has not been counted yet. It reports
// whether this call incremented the total. A failed increment is logged
// and the session's flag is released so the next activation retries; the
// failure is not returned since nothing the caller shows depends on it.
func (c *Counter) Activate(ctx context.Context, session string) bool {
	if !c.flags.Claim(session) {
		return false
	}
	if err := c.store.Increment(ctx, c.docID, 1); err != nil {
		log.Printf("visitors: recording visit: %v", err)
		c.flags.Release(session)
		return false
	}
	return true
}

// Recorded reports whether session has been counted.
func (c *Counter) Recorded(session string) bool {
	return c.flags.Recorded(session)
}

// Watch delivers the live visitor total, starting with the current value.
func (c *Counter) Watch(fn func(int64), opts ...docstore.WatchOption) *docstore.Subscription {
	return c.store.WatchStats(c.docID, func(s docstore.Stats) {
		fn(s.VisitorCount)
	}, opts...)
}
